package handlers

import (
	"context"
	"net/http"

	"lifelog/application/services/conversation"
	"lifelog/application/services/parser"
	"lifelog/domain/events"
	"lifelog/pkg/common"
	apperrors "lifelog/pkg/errors"
	"lifelog/pkg/utils"

	"go.uber.org/zap"
)

// Parser turns an utterance into events without storing anything
type Parser interface {
	Parse(ctx context.Context, req parser.ParseRequest) (*events.ParseResult, error)
}

// ParseHandler serves dry-run parses
type ParseHandler struct {
	parser Parser
	errors *apperrors.ErrorHandler
	logger *zap.Logger
}

// NewParseHandler creates a new parse handler
func NewParseHandler(p Parser, errs *apperrors.ErrorHandler, logger *zap.Logger) *ParseHandler {
	return &ParseHandler{parser: p, errors: errs, logger: logger}
}

// ParseRequest is the body of POST /parse
type ParseRequest struct {
	Text    string                 `json:"text"`
	Context []conversation.Message `json:"context,omitempty" validate:"max=50"`
}

// Parse handles POST /parse
func (h *ParseHandler) Parse(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ParseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, err.Error())
		return
	}

	result, err := h.parser.Parse(r.Context(), parser.ParseRequest{
		Text:    req.Text,
		UserID:  userID,
		Context: req.Context,
	})
	if err != nil {
		h.logger.Debug("Parse rejected", zap.String("user_id", userID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
