package ports

import (
	"time"
)

// Metrics defines the interface for pipeline instrumentation
type Metrics interface {
	RecordParse(strategy string, events int, duration time.Duration)
	RecordValidation(domain string, valid bool)
	RecordToolCall(tool string, success bool, duration time.Duration)
	RecordAgentRun(outcome string, iterations int)
	RecordProviderCall(provider string, success bool, duration time.Duration)
	RecordCacheLookup(hit bool)
	RecordDomainLog(domain string, outcome string)
	RecordQuery(query string, success bool, duration time.Duration)
}

// NopMetrics discards all measurements
type NopMetrics struct{}

func (NopMetrics) RecordParse(string, int, time.Duration) {}
func (NopMetrics) RecordValidation(string, bool) {}
func (NopMetrics) RecordToolCall(string, bool, time.Duration) {}
func (NopMetrics) RecordAgentRun(string, int) {}
func (NopMetrics) RecordProviderCall(string, bool, time.Duration) {}
func (NopMetrics) RecordCacheLookup(bool) {}
func (NopMetrics) RecordDomainLog(string, string) {}
func (NopMetrics) RecordQuery(string, bool, time.Duration) {}
