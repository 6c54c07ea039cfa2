package ports

import (
	"context"
	"time"

	"lifelog/domain/core/entities"
	"lifelog/domain/events"
)

// SchemaStore defines the interface for domain schema persistence
// This is a port in hexagonal architecture - the pipeline doesn't know about the implementation
type SchemaStore interface {
	// FindDomainSchema returns the user's schema for a domain, or (nil, nil)
	// when the user has no such domain
	FindDomainSchema(ctx context.Context, userID, name string) (*entities.DomainSchema, error)

	// ListUserDomains returns every domain configured for the user
	ListUserDomains(ctx context.Context, userID string) ([]*entities.DomainSchema, error)

	// SaveDomainSchemas creates or replaces the given schemas for the user
	SaveDomainSchemas(ctx context.Context, userID string, schemas []*entities.DomainSchema) error
}

// PresetSource supplies the built-in domain schemas
type PresetSource interface {
	Presets() []*entities.DomainSchema
}

// RecentEventsQuery selects events for the conversation window
type RecentEventsQuery struct {
	UserID string
	Domain *events.Domain
	Since  time.Time
	Limit  int
}

// EventRepository defines the interface for event persistence
type EventRepository interface {
	// CreateEvent stores a validated event
	CreateEvent(ctx context.Context, record *entities.EventRecord) error

	// FindRecentEvents returns events created after q.Since, newest first
	FindRecentEvents(ctx context.Context, q RecentEventsQuery) ([]*entities.EventRecord, error)
}

// DomainLogRepository defines the interface for domain log persistence
type DomainLogRepository interface {
	CreateDomainLog(ctx context.Context, log *entities.DomainLog) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
