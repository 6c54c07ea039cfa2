package entities

import (
	"time"

	"lifelog/domain/events"
)

// EventRecord is a stored, validated event
type EventRecord struct {
	ID        string
	UserID    string
	Domain    events.Domain
	Type      events.EventType
	Payload   events.Payload
	Source    events.Source
	InputText string
	Version   int
	CreatedAt time.Time
}

// ContextEntry projects the record into the conversation window view
func (r *EventRecord) ContextEntry() events.ContextEntry {
	return events.ContextEntry{
		Domain:    r.Domain,
		Type:      r.Type,
		Payload:   r.Payload,
		Text:      r.InputText,
		Timestamp: r.CreatedAt,
	}
}

// LogKind names the per-domain record a DomainLog represents
type LogKind string

const (
	LogWater          LogKind = "WATER"
	LogSleep          LogKind = "SLEEP"
	LogMood           LogKind = "MOOD"
	LogNutrition      LogKind = "NUTRITION"
	LogWorkoutSet     LogKind = "WORKOUT_SET"
	LogWorkoutSession LogKind = "WORKOUT_SESSION"
	LogHabit          LogKind = "HABIT"
	LogJobApplication LogKind = "JOB_APPLICATION"
	LogJobLead        LogKind = "JOB_LEAD"
	LogFinance        LogKind = "FINANCE"
	LogLearning       LogKind = "LEARNING"
	LogProductivity   LogKind = "PRODUCTIVITY"
	LogHealth         LogKind = "HEALTH"
	LogSobriety       LogKind = "SOBRIETY"
	LogRoutine        LogKind = "ROUTINE"
)

// DomainLog is the domain-specific row written for an event
type DomainLog struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	EventID   string                 `json:"eventId,omitempty"`
	Domain    events.Domain          `json:"domain"`
	Kind      LogKind                `json:"kind"`
	Fields    map[string]interface{} `json:"fields"`
	CreatedAt time.Time              `json:"createdAt"`
}
