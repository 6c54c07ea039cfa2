package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// ParsedEvent is one typed occurrence extracted from an utterance.
// It is treated as immutable once produced.
type ParsedEvent struct {
	Domain     Domain    `json:"domain"`
	Type       EventType `json:"type"`
	Payload    Payload   `json:"payload"`
	Confidence float64   `json:"confidence"`
}

// NewParsedEvent builds an event, clamping confidence to [0,1]
func NewParsedEvent(d Domain, t EventType, p Payload, confidence float64) ParsedEvent {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return ParsedEvent{Domain: d, Type: t, Payload: p, Confidence: confidence}
}

// Fields is a shortcut for Fields(e.Payload)
func (e ParsedEvent) Fields() map[string]interface{} {
	return Fields(e.Payload)
}

// UnmarshalJSON decodes the payload into the variant named by domain and type.
// Unknown domains or types are rejected.
func (e *ParsedEvent) UnmarshalJSON(data []byte) error {
	var aux struct {
		Domain     string          `json:"domain"`
		Type       string          `json:"type"`
		Payload    json.RawMessage `json:"payload"`
		Confidence *float64        `json:"confidence"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	d, err := ParseDomain(aux.Domain)
	if err != nil {
		return err
	}
	t := EventType(aux.Type)
	if !IsValidType(d, t) {
		return fmt.Errorf("unknown event type %q for domain %s", aux.Type, d)
	}

	payload, err := DecodePayload(d, t, aux.Payload)
	if err != nil {
		return err
	}

	confidence := 1.0
	if aux.Confidence != nil {
		confidence = *aux.Confidence
	}
	*e = ParsedEvent{Domain: d, Type: t, Payload: payload, Confidence: confidence}
	return nil
}

// ContextEntry is a read-only view of a recently logged event
type ContextEntry struct {
	Domain    Domain    `json:"domain"`
	Type      EventType `json:"type"`
	Payload   Payload   `json:"payload"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// QueryType classifies questions about existing data
type QueryType string

const (
	QueryGoals    QueryType = "goals"
	QueryHabits   QueryType = "habits"
	QueryStats    QueryType = "stats"
	QueryRecent   QueryType = "recent"
	QueryProgress QueryType = "progress"
)

// IsValid reports whether q is a known query type
func (q QueryType) IsValid() bool {
	switch q {
	case QueryGoals, QueryHabits, QueryStats, QueryRecent, QueryProgress:
		return true
	}
	return false
}

// SuggestedCategory proposes a custom category for text no domain covers
type SuggestedCategory struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ParseResult is the outcome of parsing one utterance
type ParseResult struct {
	IsQuery           bool               `json:"isQuery"`
	QueryType         QueryType          `json:"queryType,omitempty"`
	QueryDomain       Domain             `json:"queryDomain,omitempty"`
	Events            []ParsedEvent      `json:"events"`
	Response          string             `json:"response"`
	SuggestedCategory *SuggestedCategory `json:"suggestedCategory,omitempty"`
}
