package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lifelog/application/ports"
	"lifelog/application/services/tools"
	"lifelog/domain/config"
	"lifelog/domain/events"
	"lifelog/pkg/observability"

	"go.uber.org/zap"
)

// State is a step of the function-calling loop
type State string

const (
	StateAwaitingModel       State = "AWAITING_MODEL"
	StateModelRequestedTools State = "MODEL_REQUESTED_TOOLS"
	StateToolsExecuting      State = "TOOLS_EXECUTING"
	StateModelFinalAnswer    State = "MODEL_FINAL_ANSWER"
	StateMaxIterations       State = "MAX_ITERATIONS_EXCEEDED"
)

// Outcome describes how a run ended
type Outcome string

const (
	OutcomeFinalAnswer           Outcome = "final_answer"
	OutcomeEmptyAnswer           Outcome = "empty_answer"
	OutcomeMaxIterationsExceeded Outcome = "max_iterations_exceeded"
)

// Fallback responses
const (
	MaxIterationsResponse = "I had trouble processing that request. Please try again or be more specific."
	EmptyAnswerResponse   = "I had trouble understanding that. Could you rephrase?"
)

// ToolRunner executes the tool calls of one model turn
type ToolRunner interface {
	Definitions() []ports.ToolDefinition
	Dispatch(ctx context.Context, userID string, calls []ports.ToolCall) []tools.Result
}

// Request is one utterance to run through the loop
type Request struct {
	UserID string
	Text   string

	// ContextSummary is the recent conversation, already rendered
	ContextSummary string
}

// Result is the loop's answer
type Result struct {
	Parsed     *events.ParseResult
	Outcome    Outcome
	Iterations int

	// Dropped counts events the model named with an unknown domain or type
	Dropped int
}

// Loop drives the bounded conversation between the model and the tools
type Loop struct {
	provider      ports.LLMProvider
	tools         ToolRunner
	maxIterations int
	options       ports.ChatOptions
	metrics       ports.Metrics
	tracer        *observability.Tracer
	logger        *zap.Logger
}

// NewLoop creates a new agent loop
func NewLoop(
	provider ports.LLMProvider,
	runner ToolRunner,
	cfg *config.DomainConfig,
	metrics ports.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *Loop {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Loop{
		provider:      provider,
		tools:         runner,
		maxIterations: cfg.AgentMaxIterations,
		options: ports.ChatOptions{
			Temperature: cfg.AgentTemperature,
			MaxTokens:   cfg.AgentMaxTokens,
		},
		metrics: metrics,
		tracer:  tracer,
		logger:  logger,
	}
}

// Provider returns the model backend the loop talks to
func (l *Loop) Provider() ports.LLMProvider {
	return l.provider
}

// Available reports whether the provider can be used
func (l *Loop) Available() bool {
	return l != nil && l.provider != nil && l.provider.IsAvailable()
}

// Run executes the loop. Provider errors are returned unchanged so the
// caller can fall back to another strategy.
func (l *Loop) Run(ctx context.Context, req Request) (*Result, error) {
	messages := []ports.Message{{Role: ports.RoleSystem, Content: SystemPrompt()}}
	if strings.TrimSpace(req.ContextSummary) != "" {
		messages = append(messages, ports.Message{Role: ports.RoleSystem, Content: contextPrompt(req.ContextSummary)})
	}
	messages = append(messages, ports.Message{Role: ports.RoleUser, Content: req.Text})

	definitions := l.tools.Definitions()
	state := StateAwaitingModel

	for iteration := 1; iteration <= l.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		response, err := l.chat(ctx, messages, definitions)
		if err != nil {
			l.logger.Warn("Agent provider call failed",
				zap.String("provider", l.provider.Name()),
				zap.Int("iteration", iteration),
				zap.Error(err),
			)
			return nil, err
		}

		messages = append(messages, ports.Message{
			Role:      ports.RoleAssistant,
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})

		if response.HasToolCalls() {
			state = StateModelRequestedTools
			l.logger.Debug("Agent requested tools",
				zap.String("state", string(state)),
				zap.Int("iteration", iteration),
				zap.Int("calls", len(response.ToolCalls)),
			)

			state = StateToolsExecuting
			results := l.tools.Dispatch(ctx, req.UserID, response.ToolCalls)
			l.logger.Debug("Agent tools finished",
				zap.String("state", string(state)),
				zap.Int("iteration", iteration),
			)
			for i, call := range response.ToolCalls {
				messages = append(messages, ports.Message{
					Role:       ports.RoleTool,
					Content:    results[i].JSON(),
					ToolCallID: call.ID,
					Name:       call.Name,
				})
			}
			state = StateAwaitingModel
			continue
		}

		state = StateModelFinalAnswer
		return l.finish(req, response.Content, iteration, state), nil
	}

	state = StateMaxIterations
	l.logger.Warn("Agent exceeded iteration budget",
		zap.String("user_id", req.UserID),
		zap.String("state", string(state)),
		zap.Int("iterations", l.maxIterations),
	)
	l.metrics.RecordAgentRun(string(OutcomeMaxIterationsExceeded), l.maxIterations)
	return &Result{
		Parsed:     &events.ParseResult{Events: []events.ParsedEvent{}, Response: MaxIterationsResponse},
		Outcome:    OutcomeMaxIterationsExceeded,
		Iterations: l.maxIterations,
	}, nil
}

func (l *Loop) chat(ctx context.Context, messages []ports.Message, definitions []ports.ToolDefinition) (*ports.ChatResponse, error) {
	var response *ports.ChatResponse
	err := l.tracer.TraceFunction(ctx, "agent.chat", func(ctx context.Context) error {
		start := time.Now()
		var chatErr error
		response, chatErr = l.provider.Chat(ctx, messages, definitions, l.options)
		l.metrics.RecordProviderCall(l.provider.Name(), chatErr == nil, time.Since(start))
		return chatErr
	})
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, fmt.Errorf("provider %s returned no response", l.provider.Name())
	}
	return response, nil
}

func (l *Loop) finish(req Request, content string, iteration int, state State) *Result {
	if strings.TrimSpace(content) == "" {
		l.metrics.RecordAgentRun(string(OutcomeEmptyAnswer), iteration)
		return &Result{
			Parsed:     &events.ParseResult{Events: []events.ParsedEvent{}, Response: EmptyAnswerResponse},
			Outcome:    OutcomeEmptyAnswer,
			Iterations: iteration,
		}
	}

	parsed, dropped := decodeAnswer(content)
	if dropped > 0 {
		l.logger.Info("Dropped events with unknown domain or type",
			zap.String("user_id", req.UserID),
			zap.Int("dropped", dropped),
		)
	}
	l.logger.Debug("Agent produced final answer",
		zap.String("state", string(state)),
		zap.Int("iteration", iteration),
		zap.Int("events", len(parsed.Events)),
	)
	l.metrics.RecordAgentRun(string(OutcomeFinalAnswer), iteration)
	return &Result{
		Parsed:     parsed,
		Outcome:    OutcomeFinalAnswer,
		Iterations: iteration,
		Dropped:    dropped,
	}
}
