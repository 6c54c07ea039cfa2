package handlers

import (
	"net/http"

	"lifelog/application/commands"
	"lifelog/application/commands/bus"
	"lifelog/application/services/conversation"
	"lifelog/domain/events"
	"lifelog/pkg/common"
	apperrors "lifelog/pkg/errors"

	"go.uber.org/zap"
)

// IngestHandler parses and stores utterances
type IngestHandler struct {
	commandBus *bus.CommandBus
	errors     *apperrors.ErrorHandler
	logger     *zap.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(commandBus *bus.CommandBus, errs *apperrors.ErrorHandler, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{commandBus: commandBus, errors: errs, logger: logger}
}

// IngestRequest is the body of POST /ingest
type IngestRequest struct {
	Text    string                 `json:"text"`
	Source  events.Source          `json:"source,omitempty"`
	Context []conversation.Message `json:"context,omitempty"`
}

// Ingest handles POST /ingest. Created is returned when at least one event
// was stored.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req IngestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.commandBus.Send(r.Context(), commands.IngestTextCommand{
		UserID:  userID,
		Text:    req.Text,
		Source:  req.Source,
		Context: req.Context,
	})
	if err != nil {
		h.logger.Warn("Ingest failed", zap.String("user_id", userID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	result, ok := out.(*commands.IngestResult)
	if !ok {
		unexpectedResult(h.errors, w, r)
		return
	}

	status := http.StatusOK
	if len(result.Events) > 0 {
		status = http.StatusCreated
	}
	common.RespondJSON(w, status, result)
}
