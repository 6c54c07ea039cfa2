package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Source identifies how an utterance reached the service
type Source string

const (
	SourceChat   Source = "CHAT"
	SourceVoice  Source = "VOICE"
	SourceAPI    Source = "API"
	SourceImport Source = "IMPORT"
)

// EventLogged is raised after an extracted event has been stored
type EventLogged struct {
	BaseEvent
	UserID    string                 `json:"user_id"`
	Domain    Domain                 `json:"domain"`
	Type      EventType              `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Source    Source                 `json:"source"`
	LogStored bool                   `json:"log_stored"`
}

// NewEventLogged creates an EventLogged event
func NewEventLogged(eventID, userID string, event ParsedEvent, source Source, logStored bool, timestamp time.Time) EventLogged {
	return EventLogged{
		BaseEvent: BaseEvent{
			AggregateID: eventID,
			EventType:   "event.logged",
			Timestamp:   timestamp,
			Version:     1,
		},
		UserID:    userID,
		Domain:    event.Domain,
		Type:      event.Type,
		Payload:   event.Fields(),
		Source:    source,
		LogStored: logStored,
	}
}
