package observability

import (
	"strconv"
	"time"

	"lifelog/application/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements ports.Metrics with Prometheus collectors
type PrometheusMetrics struct {
	parses          *prometheus.CounterVec
	parseDuration   *prometheus.HistogramVec
	parsedEvents    *prometheus.HistogramVec
	validations     *prometheus.CounterVec
	toolCalls       *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	agentRuns       *prometheus.CounterVec
	agentIterations prometheus.Histogram
	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	domainLogs      *prometheus.CounterVec
	queries         *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
}

var _ ports.Metrics = (*PrometheusMetrics)(nil)

var latencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// NewPrometheusMetrics registers the pipeline collectors with reg
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	f := promauto.With(reg)
	return &PrometheusMetrics{
		parses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelog_parses_total",
			Help: "Utterances parsed, labelled by the strategy that produced the result.",
		}, []string{"strategy"}),
		parseDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifelog_parse_duration_ms",
			Help:    "End-to-end parse latency in milliseconds.",
			Buckets: latencyBuckets,
		}, []string{"strategy"}),
		parsedEvents: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifelog_parse_events",
			Help:    "Events accepted per parse.",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		}, []string{"strategy"}),
		validations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelog_validations_total",
			Help: "Validation gate decisions, labelled by domain and outcome.",
		}, []string{"domain", "valid"}),
		toolCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelog_tool_calls_total",
			Help: "Agent tool invocations, labelled by tool and status.",
		}, []string{"tool", "status"}),
		toolDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifelog_tool_duration_ms",
			Help:    "Agent tool latency in milliseconds.",
			Buckets: latencyBuckets,
		}, []string{"tool"}),
		agentRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelog_agent_runs_total",
			Help: "Agent loop runs, labelled by how they ended.",
		}, []string{"outcome"}),
		agentIterations: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lifelog_agent_iterations",
			Help:    "Model round trips per agent run.",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
		providerCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelog_provider_calls_total",
			Help: "Language model calls, labelled by provider and status.",
		}, []string{"provider", "status"}),
		providerLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifelog_provider_latency_ms",
			Help:    "Language model latency in milliseconds.",
			Buckets: latencyBuckets,
		}, []string{"provider"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelog_cache_lookups_total",
			Help: "Domain knowledge cache lookups, labelled by result.",
		}, []string{"result"}),
		domainLogs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelog_domain_logs_total",
			Help: "Domain log dispatch results, labelled by domain and outcome.",
		}, []string{"domain", "outcome"}),
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelog_queries_total",
			Help: "Read queries, labelled by query and status.",
		}, []string{"query", "status"}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifelog_query_duration_ms",
			Help:    "Read query latency in milliseconds.",
			Buckets: latencyBuckets,
		}, []string{"query"}),
	}
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func (m *PrometheusMetrics) RecordParse(strategy string, events int, duration time.Duration) {
	m.parses.WithLabelValues(strategy).Inc()
	m.parseDuration.WithLabelValues(strategy).Observe(ms(duration))
	m.parsedEvents.WithLabelValues(strategy).Observe(float64(events))
}

func (m *PrometheusMetrics) RecordValidation(domain string, valid bool) {
	m.validations.WithLabelValues(domain, strconv.FormatBool(valid)).Inc()
}

func (m *PrometheusMetrics) RecordToolCall(tool string, success bool, duration time.Duration) {
	m.toolCalls.WithLabelValues(tool, status(success)).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(ms(duration))
}

func (m *PrometheusMetrics) RecordAgentRun(outcome string, iterations int) {
	m.agentRuns.WithLabelValues(outcome).Inc()
	m.agentIterations.Observe(float64(iterations))
}

func (m *PrometheusMetrics) RecordProviderCall(provider string, success bool, duration time.Duration) {
	m.providerCalls.WithLabelValues(provider, status(success)).Inc()
	m.providerLatency.WithLabelValues(provider).Observe(ms(duration))
}

func (m *PrometheusMetrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) RecordDomainLog(domain string, outcome string) {
	m.domainLogs.WithLabelValues(domain, outcome).Inc()
}

func (m *PrometheusMetrics) RecordQuery(query string, success bool, duration time.Duration) {
	m.queries.WithLabelValues(query, status(success)).Inc()
	m.queryDuration.WithLabelValues(query).Observe(ms(duration))
}

// MultiMetrics fans every observation out to several sinks
type MultiMetrics []ports.Metrics

var _ ports.Metrics = MultiMetrics(nil)

func (mm MultiMetrics) RecordParse(strategy string, events int, duration time.Duration) {
	for _, m := range mm {
		m.RecordParse(strategy, events, duration)
	}
}

func (mm MultiMetrics) RecordValidation(domain string, valid bool) {
	for _, m := range mm {
		m.RecordValidation(domain, valid)
	}
}

func (mm MultiMetrics) RecordToolCall(tool string, success bool, duration time.Duration) {
	for _, m := range mm {
		m.RecordToolCall(tool, success, duration)
	}
}

func (mm MultiMetrics) RecordAgentRun(outcome string, iterations int) {
	for _, m := range mm {
		m.RecordAgentRun(outcome, iterations)
	}
}

func (mm MultiMetrics) RecordProviderCall(provider string, success bool, duration time.Duration) {
	for _, m := range mm {
		m.RecordProviderCall(provider, success, duration)
	}
}

func (mm MultiMetrics) RecordCacheLookup(hit bool) {
	for _, m := range mm {
		m.RecordCacheLookup(hit)
	}
}

func (mm MultiMetrics) RecordDomainLog(domain string, outcome string) {
	for _, m := range mm {
		m.RecordDomainLog(domain, outcome)
	}
}

func (mm MultiMetrics) RecordQuery(query string, success bool, duration time.Duration) {
	for _, m := range mm {
		m.RecordQuery(query, success, duration)
	}
}
