package handlers

import (
	"net/http"
	"strconv"

	"lifelog/application/queries"
	querybus "lifelog/application/queries/bus"
	"lifelog/pkg/common"
	apperrors "lifelog/pkg/errors"

	"go.uber.org/zap"
)

// EventsHandler serves the stored event window
type EventsHandler struct {
	queryBus *querybus.QueryBus
	errors   *apperrors.ErrorHandler
	logger   *zap.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(queryBus *querybus.QueryBus, errs *apperrors.ErrorHandler, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{queryBus: queryBus, errors: errs, logger: logger}
}

// Recent handles GET /events/recent?domain=&limit=
func (h *EventsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	query := queries.GetRecentEventsQuery{
		UserID: userID,
		Domain: r.URL.Query().Get("domain"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "limit must be a number")
			return
		}
		query.Limit = limit
	}

	out, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, ok := out.(*queries.GetRecentEventsResult)
	if !ok {
		unexpectedResult(h.errors, w, r)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
