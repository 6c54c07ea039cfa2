package commands

import (
	"context"

	"lifelog/application/ports"
	"lifelog/domain/core/entities"
	apperrors "lifelog/pkg/errors"

	"go.uber.org/zap"
)

// EnsurePresetDomainsCommand gives a user without domains the preset set
type EnsurePresetDomainsCommand struct {
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (c EnsurePresetDomainsCommand) Validate() error {
	if c.UserID == "" {
		return apperrors.NewValidationError("user ID is required")
	}
	return nil
}

// EnsurePresetsResult lists the user's domains after the command ran
type EnsurePresetsResult struct {
	Created int                      `json:"count"`
	Domains []entities.DomainSummary `json:"domains"`
}

// CacheInvalidator drops a user's cached domain knowledge
type CacheInvalidator interface {
	ClearUser(ctx context.Context, userID string) int
}

// EnsurePresetDomainsHandler handles the EnsurePresetDomainsCommand
type EnsurePresetDomainsHandler struct {
	store   ports.SchemaStore
	presets ports.PresetSource
	cache   CacheInvalidator
	logger  *zap.Logger
}

// NewEnsurePresetDomainsHandler creates a new handler instance
func NewEnsurePresetDomainsHandler(
	store ports.SchemaStore,
	presets ports.PresetSource,
	cache CacheInvalidator,
	logger *zap.Logger,
) *EnsurePresetDomainsHandler {
	return &EnsurePresetDomainsHandler{
		store:   store,
		presets: presets,
		cache:   cache,
		logger:  logger,
	}
}

// Handle creates the preset domains unless the user already has some
func (h *EnsurePresetDomainsHandler) Handle(ctx context.Context, cmd EnsurePresetDomainsCommand) (*EnsurePresetsResult, error) {
	existing, err := h.store.ListUserDomains(ctx, cmd.UserID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list domains", err)
	}
	if len(existing) > 0 {
		return &EnsurePresetsResult{Domains: entities.Summaries(existing)}, nil
	}

	presets := make([]*entities.DomainSchema, 0, len(h.presets.Presets()))
	for i, preset := range h.presets.Presets() {
		schema := preset.Clone()
		schema.Enabled = i < entities.DefaultEnabledPresets
		presets = append(presets, schema)
	}
	if err := h.store.SaveDomainSchemas(ctx, cmd.UserID, presets); err != nil {
		return nil, apperrors.NewDatabaseError("save domains", err)
	}

	cleared := h.cache.ClearUser(ctx, cmd.UserID)
	h.logger.Info("Created preset domains",
		zap.String("user_id", cmd.UserID),
		zap.Int("count", len(presets)),
		zap.Int("cache_entries_cleared", cleared),
	)

	return &EnsurePresetsResult{
		Created: len(presets),
		Domains: entities.Summaries(presets),
	}, nil
}
