package commands

import (
	"context"
	"time"

	"lifelog/application/ports"
	"lifelog/application/services/conversation"
	"lifelog/application/services/domainlog"
	"lifelog/application/services/parser"
	"lifelog/domain/core/entities"
	"lifelog/domain/events"
	apperrors "lifelog/pkg/errors"
	"lifelog/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IngestTextCommand parses an utterance and stores what it logs
type IngestTextCommand struct {
	UserID  string                 `json:"user_id" validate:"required"`
	Text    string                 `json:"text" validate:"required,min=1,max=5000"`
	Source  events.Source          `json:"source" validate:"omitempty,oneof=CHAT VOICE API IMPORT"`
	Context []conversation.Message `json:"context" validate:"max=50"`
}

// Validate validates the command
func (c IngestTextCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

// StoredEvent is an event as persisted by an ingest
type StoredEvent struct {
	ID         string                 `json:"id"`
	Domain     events.Domain          `json:"domain"`
	Type       events.EventType       `json:"type"`
	Payload    map[string]interface{} `json:"payload"`
	Confidence float64                `json:"confidence"`
	Source     events.Source          `json:"source"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// LogOutcome reports the domain log written for one extracted event
type LogOutcome struct {
	EventID string           `json:"eventId,omitempty"`
	Domain  events.Domain    `json:"domain"`
	Type    events.EventType `json:"type"`
	LogID   string           `json:"logId,omitempty"`
	Kind    entities.LogKind `json:"kind,omitempty"`
	Skipped bool             `json:"skipped,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// IngestResult is returned by the ingest handler
type IngestResult struct {
	Events            []StoredEvent             `json:"events"`
	Results           []LogOutcome              `json:"results"`
	Response          string                    `json:"response"`
	Parsed            bool                      `json:"parsed"`
	SuggestedCategory *events.SuggestedCategory `json:"suggestedCategory,omitempty"`
	IsQuery           bool                      `json:"isQuery"`
	QueryType         events.QueryType          `json:"queryType,omitempty"`
	QueryDomain       events.Domain             `json:"queryDomain,omitempty"`
}

// Parser is the extraction pipeline
type Parser interface {
	Parse(ctx context.Context, req parser.ParseRequest) (*events.ParseResult, error)
}

// LogDispatcher writes per-domain log rows
type LogDispatcher interface {
	DispatchItems(ctx context.Context, userID string, items []domainlog.Item) []domainlog.Result
}

// IngestTextHandler handles the IngestTextCommand
type IngestTextHandler struct {
	parser    Parser
	eventRepo ports.EventRepository
	logs      LogDispatcher
	publisher ports.EventPublisher
	clock     ports.Clock
	logger    *zap.Logger
}

// NewIngestTextHandler creates a new handler instance
func NewIngestTextHandler(
	p Parser,
	eventRepo ports.EventRepository,
	logs LogDispatcher,
	publisher ports.EventPublisher,
	clock ports.Clock,
	logger *zap.Logger,
) *IngestTextHandler {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &IngestTextHandler{
		parser:    p,
		eventRepo: eventRepo,
		logs:      logs,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Handle parses the text, stores accepted events, writes their domain logs
// and announces them
func (h *IngestTextHandler) Handle(ctx context.Context, cmd IngestTextCommand) (*IngestResult, error) {
	source := cmd.Source
	if source == "" {
		source = events.SourceChat
	}

	parsed, err := h.parser.Parse(ctx, parser.ParseRequest{
		Text:    cmd.Text,
		UserID:  cmd.UserID,
		Context: cmd.Context,
	})
	if err != nil {
		return nil, err
	}

	result := &IngestResult{
		Events:            make([]StoredEvent, 0, len(parsed.Events)),
		Results:           make([]LogOutcome, len(parsed.Events)),
		Response:          parsed.Response,
		Parsed:            len(parsed.Events) > 0,
		SuggestedCategory: parsed.SuggestedCategory,
		IsQuery:           parsed.IsQuery,
		QueryType:         parsed.QueryType,
		QueryDomain:       parsed.QueryDomain,
	}

	// positions[j] is the index in parsed.Events of items[j]
	items := make([]domainlog.Item, 0, len(parsed.Events))
	positions := make([]int, 0, len(parsed.Events))
	records := make([]*entities.EventRecord, 0, len(parsed.Events))
	for i, e := range parsed.Events {
		record := &entities.EventRecord{
			ID:        uuid.New().String(),
			UserID:    cmd.UserID,
			Domain:    e.Domain,
			Type:      e.Type,
			Payload:   e.Payload,
			Source:    source,
			InputText: cmd.Text,
			Version:   1,
			CreatedAt: h.clock.Now(),
		}
		if err := h.eventRepo.CreateEvent(ctx, record); err != nil {
			h.logger.Error("Failed to store event",
				zap.String("user_id", cmd.UserID),
				zap.String("domain", string(e.Domain)),
				zap.String("type", string(e.Type)),
				zap.Error(err),
			)
			result.Results[i] = LogOutcome{
				Domain: e.Domain,
				Type:   e.Type,
				Error:  "failed to store event",
			}
			continue
		}

		records = append(records, record)
		items = append(items, domainlog.Item{EventID: record.ID, Event: e})
		positions = append(positions, i)
		result.Events = append(result.Events, StoredEvent{
			ID:         record.ID,
			Domain:     e.Domain,
			Type:       e.Type,
			Payload:    e.Fields(),
			Confidence: e.Confidence,
			Source:     source,
			CreatedAt:  record.CreatedAt,
		})
	}

	if len(parsed.Events) > 0 && len(records) == 0 {
		result.Response = parser.StorageUnavailableResponse
		return result, nil
	}

	logged := make(map[string]bool, len(items))
	for j, r := range h.logs.DispatchItems(ctx, cmd.UserID, items) {
		if j >= len(positions) {
			break
		}
		outcome := LogOutcome{EventID: items[j].EventID, Domain: r.Event.Domain, Type: r.Event.Type, Skipped: r.Skipped}
		if r.Record != nil {
			outcome.EventID = r.Record.EventID
			outcome.LogID = r.Record.ID
			outcome.Kind = r.Record.Kind
			logged[r.Record.EventID] = true
		}
		if r.Err != nil {
			outcome.Error = r.Err.Error()
		}
		result.Results[positions[j]] = outcome
	}

	h.publish(ctx, cmd.UserID, source, records, items, logged)
	return result, nil
}

// publish announces the stored events. Failures are logged only.
func (h *IngestTextHandler) publish(ctx context.Context, userID string, source events.Source, records []*entities.EventRecord, items []domainlog.Item, logged map[string]bool) {
	if h.publisher == nil || len(records) == 0 {
		return
	}

	batch := make([]events.DomainEvent, 0, len(records))
	for i, r := range records {
		batch = append(batch, events.NewEventLogged(r.ID, userID, items[i].Event, source, logged[r.ID], r.CreatedAt))
	}

	if err := h.publisher.PublishBatch(ctx, batch); err != nil {
		h.logger.Warn("Failed to publish logged events",
			zap.String("user_id", userID),
			zap.Int("events", len(batch)),
			zap.Error(err),
		)
	}
}
