package handlers

import (
	"context"
	"fmt"

	"lifelog/application/queries"
	"lifelog/application/services/conversation"
	"lifelog/domain/events"

	"go.uber.org/zap"
)

// RecentContext is the slice of the context resolver the handler needs
type RecentContext interface {
	GetRecentContext(ctx context.Context, userID string, domain *events.Domain, limit int) ([]conversation.Entry, error)
}

// GetRecentEventsHandler handles recent event queries
type GetRecentEventsHandler struct {
	recent RecentContext
	logger  *zap.Logger
}

// NewGetRecentEventsHandler creates a new recent events handler
func NewGetRecentEventsHandler(recent RecentContext, logger *zap.Logger) *GetRecentEventsHandler {
	return &GetRecentEventsHandler{
		recent: recent,
		logger:  logger,
	}
}

// Handle executes the recent events query
func (h *GetRecentEventsHandler) Handle(ctx context.Context, query queries.GetRecentEventsQuery) (*queries.GetRecentEventsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var domain *events.Domain
	if query.Domain != "" {
		d, _ := events.ParseDomain(query.Domain)
		domain = &d
	}

	entries, err := h.recent.GetRecentContext(ctx, query.UserID, domain, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent events: %w", err)
	}

	result := &queries.GetRecentEventsResult{
		Events: make([]queries.RecentEvent, 0, len(entries)),
	}
	for _, e := range entries {
		result.Events = append(result.Events, queries.RecentEvent{
			Domain:    e.Domain,
			Type:      e.Type,
			Payload:   events.Fields(e.Payload),
			InputText: e.Text,
			Timestamp: e.Timestamp,
		})
	}
	result.Count = len(result.Events)

	h.logger.Debug("Loaded recent events",
		zap.String("user_id", query.UserID),
		zap.Int("count", result.Count),
	)
	return result, nil
}
