package observability

import (
	"context"
	"strconv"
	"sync"
	"time"

	"lifelog/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// maxDatums is CloudWatch's limit per PutMetricData call
const maxDatums = 1000

// PutMetricDataAPI is the subset of the CloudWatch client the sink uses
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics buffers pipeline outcomes and ships them on Flush.
// Lambda handlers flush once per invocation.
type CloudWatchMetrics struct {
	namespace string
	client    PutMetricDataAPI
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending []types.MetricDatum
}

var _ ports.Metrics = (*CloudWatchMetrics)(nil)

// NewCloudWatchMetrics creates a new CloudWatch sink
func NewCloudWatchMetrics(namespace string, client PutMetricDataAPI, logger *zap.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
		now:       time.Now,
	}
}

func dims(kv ...string) []types.Dimension {
	out := make([]types.Dimension, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, types.Dimension{Name: aws.String(kv[i]), Value: aws.String(kv[i+1])})
	}
	return out
}

func (m *CloudWatchMetrics) add(name string, value float64, unit types.StandardUnit, dimensions []types.Dimension) {
	if m.client == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: dimensions,
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(m.now()),
	})
}

func (m *CloudWatchMetrics) RecordParse(strategy string, events int, duration time.Duration) {
	d := dims("Strategy", strategy)
	m.add("ParseLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, d)
	m.add("ParsedEvents", float64(events), types.StandardUnitCount, d)
}

func (m *CloudWatchMetrics) RecordValidation(domain string, valid bool) {
	m.add("Validation", 1, types.StandardUnitCount, dims("Domain", domain, "Valid", strconv.FormatBool(valid)))
}

func (m *CloudWatchMetrics) RecordToolCall(tool string, success bool, duration time.Duration) {
	m.add("ToolLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dims("Tool", tool, "Status", status(success)))
}

func (m *CloudWatchMetrics) RecordAgentRun(outcome string, iterations int) {
	m.add("AgentIterations", float64(iterations), types.StandardUnitCount, dims("Outcome", outcome))
}

func (m *CloudWatchMetrics) RecordProviderCall(provider string, success bool, duration time.Duration) {
	m.add("ProviderLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dims("Provider", provider, "Status", status(success)))
}

// RecordCacheLookup is not shipped to CloudWatch; Prometheus covers it
func (m *CloudWatchMetrics) RecordCacheLookup(bool) {}

func (m *CloudWatchMetrics) RecordDomainLog(domain string, outcome string) {
	m.add("DomainLog", 1, types.StandardUnitCount, dims("Domain", domain, "Outcome", outcome))
}

func (m *CloudWatchMetrics) RecordQuery(query string, success bool, duration time.Duration) {
	m.add("QueryLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dims("Query", query, "Status", status(success)))
}

// Flush sends everything buffered so far. Send failures are logged and the
// datums dropped.
func (m *CloudWatchMetrics) Flush(ctx context.Context) {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for i := 0; i < len(pending); i += maxDatums {
		end := i + maxDatums
		if end > len(pending) {
			end = len(pending)
		}
		if _, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: pending[i:end],
		}); err != nil {
			m.logger.Warn("Failed to send metrics",
				zap.String("namespace", m.namespace),
				zap.Int("datums", end-i),
				zap.Error(err),
			)
		}
	}
}
