package domainlog

import (
	"context"
	"fmt"

	"lifelog/application/ports"
	"lifelog/domain/core/entities"
	"lifelog/domain/core/validators"
	"lifelog/domain/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcomes recorded per event
const (
	OutcomeWritten  = "written"
	OutcomeSkipped  = "skipped"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Result is the outcome of one event
type Result struct {
	Event   events.ParsedEvent  `json:"event"`
	Record  *entities.DomainLog `json:"record,omitempty"`
	Skipped bool                `json:"skipped,omitempty"`
	Err     error               `json:"-"`
}

// Item pairs an event with the id of its stored record, if any
type Item struct {
	EventID string
	Event   events.ParsedEvent
}

// Dispatcher writes the domain-specific log row for each accepted event
type Dispatcher struct {
	repo      ports.DomainLogRepository
	validator *validators.EventValidator
	clock     ports.Clock
	metrics   ports.Metrics
	logger    *zap.Logger
}

// NewDispatcher creates a new domain log dispatcher
func NewDispatcher(
	repo ports.DomainLogRepository,
	validator *validators.EventValidator,
	clock ports.Clock,
	metrics ports.Metrics,
	logger *zap.Logger,
) *Dispatcher {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Dispatcher{
		repo:      repo,
		validator: validator,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// Dispatch writes logs for evs in order. A failure is reported in its
// Result and never stops the remaining events.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, evs []events.ParsedEvent) []Result {
	items := make([]Item, len(evs))
	for i, e := range evs {
		items[i] = Item{Event: e}
	}
	return d.DispatchItems(ctx, userID, items)
}

// DispatchItems is Dispatch for events that were already stored
func (d *Dispatcher) DispatchItems(ctx context.Context, userID string, items []Item) []Result {
	results := make([]Result, len(items))
	for i, item := range items {
		results[i] = d.dispatchOne(ctx, userID, item)
	}
	return results
}

func (d *Dispatcher) dispatchOne(ctx context.Context, userID string, item Item) Result {
	e := item.Event
	result := Result{Event: e}

	if r := d.validator.Validate(e); !r.Valid {
		result.Err = r.Err()
		d.record(e, OutcomeRejected)
		return result
	}

	kind, fields, skip, err := mapEvent(e)
	if err != nil {
		result.Err = err
		d.record(e, OutcomeFailed)
		return result
	}
	if skip {
		result.Skipped = true
		d.record(e, OutcomeSkipped)
		return result
	}

	log := &entities.DomainLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventID:   item.EventID,
		Domain:    e.Domain,
		Kind:      kind,
		Fields:    fields,
		CreatedAt: d.clock.Now(),
	}
	if err := d.repo.CreateDomainLog(ctx, log); err != nil {
		d.logger.Error("Failed to write domain log",
			zap.String("user_id", userID),
			zap.String("domain", string(e.Domain)),
			zap.String("type", string(e.Type)),
			zap.Error(err),
		)
		result.Err = fmt.Errorf("failed to write %s log: %w", kind, err)
		d.record(e, OutcomeFailed)
		return result
	}

	result.Record = log
	d.record(e, OutcomeWritten)
	return result
}

func (d *Dispatcher) record(e events.ParsedEvent, outcome string) {
	d.metrics.RecordDomainLog(string(e.Domain), outcome)
}
