package queries

import (
	"time"

	"lifelog/domain/events"
	apperrors "lifelog/pkg/errors"
)

// GetRecentEventsQuery asks for the user's conversation window
type GetRecentEventsQuery struct {
	UserID string
	Domain string
	Limit  int
}

// Validate validates the query
func (q GetRecentEventsQuery) Validate() error {
	if q.UserID == "" {
		return apperrors.NewValidationError("user ID is required")
	}
	if q.Limit < 0 {
		return apperrors.NewValidationError("limit cannot be negative")
	}
	if q.Domain != "" {
		if _, err := events.ParseDomain(q.Domain); err != nil {
			return apperrors.NewValidationError(err.Error()).
				WithDetails(map[string]interface{}{"available_domains": events.DomainNames()})
		}
	}
	return nil
}

// RecentEvent is one entry of the window
type RecentEvent struct {
	Domain    events.Domain          `json:"domain"`
	Type      events.EventType       `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	InputText string                 `json:"inputText"`
	Timestamp time.Time              `json:"timestamp"`
}

// GetRecentEventsResult lists the window newest first
type GetRecentEventsResult struct {
	Events []RecentEvent `json:"events"`
	Count  int           `json:"count"`
}
