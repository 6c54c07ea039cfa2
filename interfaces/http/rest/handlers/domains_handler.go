package handlers

import (
	"context"
	"net/http"

	"lifelog/application/commands"
	"lifelog/application/commands/bus"
	"lifelog/application/queries"
	querybus "lifelog/application/queries/bus"
	"lifelog/domain/core/entities"
	"lifelog/pkg/common"
	apperrors "lifelog/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CacheClearer drops a user's cached domain knowledge
type CacheClearer interface {
	ClearUser(ctx context.Context, userID string) int
}

// DomainsHandler serves domain listings, schemas and cache control
type DomainsHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	cache      CacheClearer
	errors     *apperrors.ErrorHandler
	logger     *zap.Logger
}

// NewDomainsHandler creates a new domains handler
func NewDomainsHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	cache CacheClearer,
	errs *apperrors.ErrorHandler,
	logger *zap.Logger,
) *DomainsHandler {
	return &DomainsHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		cache:      cache,
		errors:     errs,
		logger:     logger,
	}
}

// List handles GET /domains
func (h *DomainsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	out, err := h.queryBus.Ask(r.Context(), queries.ListUserDomainsQuery{UserID: userID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	result, ok := out.(*queries.ListUserDomainsResult)
	if !ok {
		unexpectedResult(h.errors, w, r)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Schema handles GET /domains/{name}/schema
func (h *DomainsHandler) Schema(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	out, err := h.queryBus.Ask(r.Context(), queries.GetDomainSchemaQuery{
		UserID: userID,
		Name:   chi.URLParam(r, "name"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	schema, ok := out.(*entities.DomainSchema)
	if !ok {
		unexpectedResult(h.errors, w, r)
		return
	}
	common.RespondJSON(w, http.StatusOK, schema)
}

// ClearCache handles DELETE /domains/cache
func (h *DomainsHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	cleared := h.cache.ClearUser(r.Context(), userID)
	h.logger.Info("Domain cache cleared", zap.String("user_id", userID), zap.Int("entries", cleared))
	common.RespondJSON(w, http.StatusOK, map[string]int{"cleared": cleared})
}

// Ensure handles POST /domains/ensure
func (h *DomainsHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	out, err := h.commandBus.Send(r.Context(), commands.EnsurePresetDomainsCommand{UserID: userID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	result, ok := out.(*commands.EnsurePresetsResult)
	if !ok {
		unexpectedResult(h.errors, w, r)
		return
	}

	status := http.StatusOK
	if result.Created > 0 {
		status = http.StatusCreated
	}
	common.RespondJSON(w, status, result)
}
