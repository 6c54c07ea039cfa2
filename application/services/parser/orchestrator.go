package parser

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"lifelog/application/ports"
	"lifelog/application/services/agent"
	"lifelog/application/services/conversation"
	"lifelog/application/services/heuristics"
	"lifelog/domain/config"
	"lifelog/domain/core/validators"
	"lifelog/domain/core/valueobjects"
	"lifelog/domain/events"
	apperrors "lifelog/pkg/errors"
	"lifelog/pkg/observability"

	"go.uber.org/zap"
)

// Strategy names the path that produced the candidate events
type Strategy string

const (
	StrategyFollowUp  Strategy = "follow_up"
	StrategyAgent     Strategy = "agent"
	StrategyHeuristic Strategy = "heuristic"
)

// urlJobConfidence is used for a job logged from a posting link alone
const urlJobConfidence = 0.85

// ParseRequest is one utterance to parse
type ParseRequest struct {
	Text    string
	UserID  string
	Context []conversation.Message
}

// Agent is the function-calling path
type Agent interface {
	Available() bool
	Run(ctx context.Context, req agent.Request) (*agent.Result, error)
}

// ContextSource resolves the recent conversation for a request
type ContextSource interface {
	Resolve(ctx context.Context, userID string, supplied []conversation.Message) ([]conversation.Entry, error)
}

// Orchestrator turns an utterance into validated events and a reply
type Orchestrator struct {
	agent     Agent
	matcher   *heuristics.Matcher
	context   ContextSource
	validator *validators.EventValidator
	config    *config.DomainConfig
	metrics   ports.Metrics
	tracer    *observability.Tracer
	logger    *zap.Logger
}

// NewOrchestrator creates a new parse orchestrator. agentPath may be nil, in
// which case only the heuristic path runs.
func NewOrchestrator(
	agentPath Agent,
	matcher *heuristics.Matcher,
	contextSource ContextSource,
	validator *validators.EventValidator,
	cfg *config.DomainConfig,
	metrics ports.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Orchestrator{
		agent:     agentPath,
		matcher:   matcher,
		context:   contextSource,
		validator: validator,
		config:    cfg,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger,
	}
}

// parseState carries one request through the pipeline
type parseState struct {
	text     string
	lower    string
	userID   string
	posting  *valueobjects.JobPosting
	hasURL   bool
	entries  []conversation.Entry
	strategy Strategy
}

// Parse runs the pipeline. Extraction and validation problems come back
// as a clarifying response; only invalid input and cancellation are errors.
func (o *Orchestrator) Parse(ctx context.Context, req ParseRequest) (*events.ParseResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperrors.ErrEmptyUtterance
	}
	if utf8.RuneCountInString(text) > o.config.MaxInputLength {
		return nil, apperrors.ErrUtteranceTooLong
	}

	start := time.Now()
	state := &parseState{
		text:   text,
		lower:  strings.ToLower(text),
		userID: req.UserID,
	}
	state.prescanURL()

	var result *events.ParseResult
	err := o.tracer.TraceFunction(ctx, "parser.parse", func(ctx context.Context) error {
		var parseErr error
		result, parseErr = o.parse(ctx, state, req.Context)
		return parseErr
	})
	if err != nil {
		return nil, err
	}

	o.tracer.AddAnnotation(ctx, "parse_strategy", string(state.strategy))
	o.metrics.RecordParse(string(state.strategy), len(result.Events), time.Since(start))
	o.logger.Debug("Parsed utterance",
		zap.String("user_id", req.UserID),
		zap.String("strategy", string(state.strategy)),
		zap.Int("events", len(result.Events)),
		zap.Bool("is_query", result.IsQuery),
	)
	return result, nil
}

// prescanURL resolves company and role from a posting link in job talk
func (s *parseState) prescanURL() {
	raw := valueobjects.FindURL(s.text)
	s.hasURL = raw != ""
	if !s.hasURL || !jobKeywords.MatchString(s.text) {
		return
	}
	posting, err := valueobjects.ParseJobURL(raw)
	if err != nil || posting.Company == "" {
		return
	}
	s.posting = &posting
}

// promptText is the text given to the agent
func (s *parseState) promptText() string {
	if s.posting == nil {
		return s.text
	}
	return fmt.Sprintf("%s\n\n[Extracted from URL: Company: %s, Role: %s]", s.text, s.posting.Company, s.posting.Role)
}

func (o *Orchestrator) parse(ctx context.Context, state *parseState, supplied []conversation.Message) (*events.ParseResult, error) {
	if o.context != nil {
		entries, err := o.context.Resolve(ctx, state.userID, supplied)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("Failed to resolve conversation context",
				zap.String("user_id", state.userID),
				zap.Error(err),
			)
		}
		state.entries = entries
	}

	if o.config.EnableFollowUpMerge {
		if merged, ok := conversation.MergeFollowUp(state.entries, state.text); ok {
			if r := o.validator.Validate(*merged); r.Valid {
				state.strategy = StrategyFollowUp
				o.metrics.RecordValidation(string(merged.Domain), true)
				return &events.ParseResult{
					Events:   []events.ParsedEvent{*merged},
					Response: heuristics.Confirm(*merged),
				}, nil
			}
		}
	}

	if o.config.EnableAgent && o.agent != nil && o.agent.Available() {
		result, err := o.runAgent(ctx, state)
		if err != nil {
			return nil, err
		}
		if result != nil {
			state.strategy = StrategyAgent
			return result, nil
		}
	}

	state.strategy = StrategyHeuristic
	return o.runHeuristics(state), nil
}

// runAgent returns nil when the heuristic path should take over
func (o *Orchestrator) runAgent(ctx context.Context, state *parseState) (*events.ParseResult, error) {
	out, err := o.agent.Run(ctx, agent.Request{
		UserID:         state.userID,
		Text:           state.promptText(),
		ContextSummary: conversation.Summarize(state.entries, o.config.ContextLimit),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.logger.Warn("Agent unavailable, falling back to heuristics",
			zap.String("user_id", state.userID),
			zap.Error(err),
		)
		return nil, nil
	}
	if out.Outcome == agent.OutcomeMaxIterationsExceeded {
		o.logger.Info("Agent exhausted iterations, falling back to heuristics",
			zap.String("user_id", state.userID),
			zap.Int("iterations", out.Iterations),
		)
		return nil, nil
	}

	parsed := out.Parsed
	proposed := len(parsed.Events) + out.Dropped
	accepted := o.gate(state, o.enrich(state, parsed.Events))

	result := &events.ParseResult{
		IsQuery:           parsed.IsQuery,
		QueryType:         parsed.QueryType,
		QueryDomain:       parsed.QueryDomain,
		Events:            accepted,
		Response:          strings.TrimSpace(parsed.Response),
		SuggestedCategory: parsed.SuggestedCategory,
	}

	switch {
	case len(accepted) == 0 && proposed > 0:
		result.Response = InvalidDataResponse
	case len(accepted) == 0 && !result.IsQuery && result.Response == "":
		o.clarify(state, result)
	case len(accepted) > 0 && result.Response == "":
		result.Response = confirmAll(accepted)
	}
	if result.Response == "" {
		result.Response = GenericResponse
	}
	return result, nil
}

func (o *Orchestrator) runHeuristics(state *parseState) *events.ParseResult {
	result := &events.ParseResult{Events: []events.ParsedEvent{}}

	match := o.matcher.Match(state.text)
	if match == nil {
		o.clarify(state, result)
		return result
	}

	if job, ok := match.Payload.(*events.JobPayload); ok && match.Type == events.JobFound && job.Incomplete {
		if state.posting == nil || state.posting.Role == "" {
			result.Response = jobClarification(state.hasURL)
			return result
		}
		applied := events.NewParsedEvent(events.DomainJobs, events.JobApplied, &events.JobPayload{
			Company: state.posting.Company,
			Role:    state.posting.Role,
			URL:     state.posting.URL,
			Status:  heuristics.JobStatusInterested,
		}, urlJobConfidence)
		match = &applied
	}

	if match.Confidence <= o.config.HeuristicConfidenceThreshold {
		o.logger.Debug("Heuristic match below threshold",
			zap.String("domain", string(match.Domain)),
			zap.String("type", string(match.Type)),
			zap.Float64("confidence", match.Confidence),
		)
		o.clarify(state, result)
		return result
	}

	accepted := o.gate(state, o.enrich(state, []events.ParsedEvent{*match}))
	if len(accepted) == 0 {
		result.Response = InvalidDataResponse
		return result
	}
	result.Events = accepted
	result.Response = confirmAll(accepted)
	return result
}

// enrich fills missing job fields from the posting link
func (o *Orchestrator) enrich(state *parseState, in []events.ParsedEvent) []events.ParsedEvent {
	if state.posting == nil {
		return in
	}
	out := make([]events.ParsedEvent, len(in))
	for i, e := range in {
		out[i] = e
		p, ok := e.Payload.(*events.JobPayload)
		if !ok || e.Domain != events.DomainJobs {
			continue
		}
		enriched := *p
		if strings.TrimSpace(enriched.Company) == "" {
			enriched.Company = state.posting.Company
		}
		if enriched.RoleOrPosition() == "" {
			enriched.Role = state.posting.Role
		}
		if enriched.URL == "" {
			enriched.URL = state.posting.URL
		}
		out[i] = events.NewParsedEvent(e.Domain, e.Type, &enriched, e.Confidence)
	}
	return out
}

// gate drops every event the validator rejects
func (o *Orchestrator) gate(state *parseState, candidates []events.ParsedEvent) []events.ParsedEvent {
	accepted := make([]events.ParsedEvent, 0, len(candidates))
	for _, e := range candidates {
		r := o.validator.Validate(e)
		o.metrics.RecordValidation(string(e.Domain), r.Valid)
		if !r.Valid {
			o.logger.Info("Dropped invalid event",
				zap.String("user_id", state.userID),
				zap.String("domain", string(e.Domain)),
				zap.String("type", string(e.Type)),
				zap.String("reason", r.Error),
			)
			continue
		}
		accepted = append(accepted, e)
	}
	return accepted
}

func (o *Orchestrator) clarify(state *parseState, result *events.ParseResult) {
	if o.config.EnableCategoryHints && result.SuggestedCategory == nil {
		result.SuggestedCategory = heuristics.SuggestCategory(state.text)
	}
	result.Response = clarify(state.lower, state.hasURL, result.SuggestedCategory)
}

func confirmAll(accepted []events.ParsedEvent) string {
	lines := make([]string, len(accepted))
	for i, e := range accepted {
		lines[i] = heuristics.Confirm(e)
	}
	return strings.Join(lines, "\n")
}
