package llm

import (
	"context"
	"errors"
	"time"

	"lifelog/application/ports"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for the provider circuit breaker
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the default breaker configuration
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// BreakerProvider guards a provider with a circuit breaker. While the
// breaker is open, Chat fails fast and IsAvailable reports false, so the
// parser goes straight to its heuristics.
type BreakerProvider struct {
	next ports.LLMProvider
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps next with a circuit breaker
func NewBreakerProvider(next ports.LLMProvider, cfg BreakerConfig, logger *zap.Logger) *BreakerProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("LLM circuit breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			// Client errors are our fault, not the provider's
			var status *StatusError
			if errors.As(err, &status) {
				return !status.Retryable()
			}
			return false
		},
	})

	return &BreakerProvider{next: next, cb: cb}
}

// Name implements ports.LLMProvider
func (p *BreakerProvider) Name() string { return p.next.Name() }

// IsAvailable implements ports.LLMProvider
func (p *BreakerProvider) IsAvailable() bool {
	return p.cb.State() != gobreaker.StateOpen && p.next.IsAvailable()
}

// State exposes the breaker state for readiness checks
func (p *BreakerProvider) State() gobreaker.State { return p.cb.State() }

// Chat implements ports.LLMProvider
func (p *BreakerProvider) Chat(ctx context.Context, messages []ports.Message, tools []ports.ToolDefinition, options ports.ChatOptions) (*ports.ChatResponse, error) {
	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.next.Chat(ctx, messages, tools, options)
	})
	if err != nil {
		return nil, err
	}
	return result.(*ports.ChatResponse), nil
}
