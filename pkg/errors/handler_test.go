package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestErrorHandler_Handle(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		debug       bool
		wantStatus  int
		wantType    string
		wantCode    string
		wantMessage string
	}{
		{
			name:        "validation app error",
			err:         NewValidationError("limit cannot be negative"),
			wantStatus:  http.StatusBadRequest,
			wantType:    "VALIDATION",
			wantMessage: "limit cannot be negative",
		},
		{
			name:        "wrapped app error keeps its status",
			err:         fmt.Errorf("query failed: %w", NewNotFoundError("domain")),
			wantStatus:  http.StatusNotFound,
			wantType:    "NOT_FOUND",
			wantMessage: "domain not found",
		},
		{
			name:        "domain error",
			err:         ErrUtteranceTooLong,
			wantStatus:  http.StatusBadRequest,
			wantType:    "VALIDATION_ERROR",
			wantCode:    "UTTERANCE_TOO_LONG",
			wantMessage: "Text exceeds maximum length",
		},
		{
			name:        "unavailable store",
			err:         NewUnavailableError("schema store"),
			wantStatus:  http.StatusServiceUnavailable,
			wantType:    "UNAVAILABLE",
			wantMessage: "service 'schema store' is unavailable",
		},
		{
			name:        "canceled request",
			err:         fmt.Errorf("parse: %w", context.Canceled),
			wantStatus:  StatusClientClosedRequest,
			wantType:    "CANCELED",
			wantMessage: "Request canceled",
		},
		{
			name:        "generic error is hidden",
			err:         fmt.Errorf("dial tcp: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantType:    "INTERNAL",
			wantMessage: "An internal error occurred",
		},
		{
			name:        "generic error shown in debug",
			err:         fmt.Errorf("dial tcp: connection refused"),
			debug:       true,
			wantStatus:  http.StatusInternalServerError,
			wantType:    "INTERNAL",
			wantMessage: "dial tcp: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := NewErrorHandler(zap.NewNop(), tt.debug)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v2/parse", nil)

			// Act
			h.Handle(rec, req, tt.err)

			// Assert
			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantType, resp.Error.Type)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}
}

func TestErrorHandler_StackTraceOnlyInDebug(t *testing.T) {
	err := NewInternalError("boom")

	for _, debug := range []bool{false, true} {
		rec := httptest.NewRecorder()
		NewErrorHandler(zap.NewNop(), debug).Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		_, hasTrace := resp.Error.Details["stack_trace"]
		assert.Equal(t, debug, hasTrace)
	}
	assert.Nil(t, err.Details, "debug output must not mutate the error")
}

func TestErrorHandler_MiddlewareRecoversPanics(t *testing.T) {
	// Arrange
	h := NewErrorHandler(zap.NewNop(), false)
	handler := h.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil schema")
	}))
	rec := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v2/ingest", nil))

	// Assert
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "panic: nil schema")
}

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("orchestrator: %w", ErrEmptyUtterance)

	assert.ErrorIs(t, wrapped, ErrEmptyUtterance)
	assert.NotErrorIs(t, wrapped, ErrUtteranceTooLong)
	assert.True(t, IsValidation(NewValidationError("x")))
	assert.False(t, IsNotFound(ErrEmptyUtterance))
}
