package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// StatusClientClosedRequest is reported when the caller went away
const StatusClientClosedRequest = 499

// ErrorBody is the error half of the response envelope
type ErrorBody struct {
	Type      string                 `json:"type"`
	Code      string                 `json:"code,omitempty"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorResponse represents the API error response format
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// ErrorHandler handles errors and sends appropriate HTTP responses
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle processes an error and sends an HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	requestID := middleware.GetReqID(r.Context())
	status, body := h.classify(err)
	body.RequestID = requestID

	fields := []zap.Field{
		zap.String("error_type", body.Type),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", requestID),
		zap.Error(err),
	}
	if body.Code != "" {
		fields = append(fields, zap.String("error_code", body.Code))
	}

	switch {
	case status >= 500:
		h.logger.Error(body.Message, fields...)
	case status == StatusClientClosedRequest:
		h.logger.Debug(body.Message, fields...)
	default:
		h.logger.Warn(body.Message, fields...)
	}

	h.sendJSON(w, status, ErrorResponse{Error: body})
}

func (h *ErrorHandler) classify(err error) (int, ErrorBody) {
	if appErr := GetAppError(err); appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		body := ErrorBody{
			Type:    string(appErr.Type),
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}
		if h.debug && appErr.StackTrace != "" {
			details := make(map[string]interface{}, len(body.Details)+1)
			for k, v := range body.Details {
				details[k] = v
			}
			details["stack_trace"] = appErr.StackTrace
			body.Details = details
		}
		return status, body
	}

	if domainErr := asDomainError(err); domainErr != nil {
		return domainErr.StatusCode, ErrorBody{
			Type:    string(domainErr.Type),
			Code:    domainErr.Code,
			Message: domainErr.Message,
			Details: domainErr.Details,
		}
	}

	if stderrors.Is(err, context.Canceled) {
		return StatusClientClosedRequest, ErrorBody{Type: "CANCELED", Message: "Request canceled"}
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, ErrorBody{Type: "TIMEOUT", Message: "Request timed out"}
	}

	body := ErrorBody{Type: string(ErrorTypeInternal), Message: "An internal error occurred"}
	if h.debug {
		body.Message = err.Error()
	}
	return http.StatusInternalServerError, body
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// Middleware recovers panics into 500 responses
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func asDomainError(err error) *DomainError {
	var domainErr *DomainError
	if stderrors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}
