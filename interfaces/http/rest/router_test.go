package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lifelog/application/commands"
	"lifelog/application/commands/bus"
	"lifelog/application/queries"
	querybus "lifelog/application/queries/bus"
	"lifelog/application/services/parser"
	"lifelog/domain/core/entities"
	"lifelog/domain/events"
	"lifelog/interfaces/http/rest/middleware"
	"lifelog/pkg/auth"
	apperrors "lifelog/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type MockParser struct {
	mock.Mock
}

func (m *MockParser) Parse(ctx context.Context, req parser.ParseRequest) (*events.ParseResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*events.ParseResult)
	return result, args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) ClearUser(ctx context.Context, userID string) int {
	return m.Called(ctx, userID).Int(0)
}

type fixture struct {
	parser  *MockParser
	cache   *MockCache
	ingest  func(cmd commands.IngestTextCommand) (interface{}, error)
	schema  func(q queries.GetDomainSchemaQuery) (interface{}, error)
	failing map[string]bool
	token   string
	server  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{parser: new(MockParser), cache: new(MockCache)}

	commandBus := bus.NewCommandBus()
	require.NoError(t, commandBus.Register(commands.IngestTextCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return f.ingest(cmd.(commands.IngestTextCommand))
		})))

	queryBus := querybus.NewQueryBus()
	require.NoError(t, queryBus.Register(queries.GetDomainSchemaQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return f.schema(q.(queries.GetDomainSchemaQuery))
		})))
	require.NoError(t, queryBus.Register(queries.GetRecentEventsQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return &queries.GetRecentEventsResult{Events: []queries.RecentEvent{}}, nil
		})))

	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: testSecret, Issuer: "lifelog"})
	require.NoError(t, err)
	gen, err := auth.NewJWTGenerator(testSecret, "lifelog", []string{auth.DefaultAudience}, time.Hour)
	require.NoError(t, err)
	f.token, err = gen.GenerateToken("user-1", "u@example.com", nil)
	require.NoError(t, err)

	router := NewRouter(commandBus, queryBus, f.parser, f.cache, RouterOptions{
		Authenticate: middleware.Authenticate(middleware.AuthConfig{Validator: validator}),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("lifelog_parses_total 1\n"))
		}),
		Checks: []ReadinessCheck{
			{Name: "llm", Check: func(ctx context.Context) error { return checkErr(f, "llm") }},
			{Name: "store", Critical: true, Check: func(ctx context.Context) error { return checkErr(f, "store") }},
		},
	}, zap.NewNop())
	f.server = router.Setup()
	return f
}

func checkErr(f *fixture, name string) error {
	if f.failing[name] {
		return errors.New(name + " down")
	}
	return nil
}

func (f *fixture) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_Health(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/health", "", false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
	assert.Equal(t, "v2", rec.Header().Get("X-API-Version"))
}

func TestRouter_Ready(t *testing.T) {
	tests := []struct {
		name       string
		failing    map[string]bool
		wantCode   int
		wantStatus string
	}{
		{name: "all ok", wantCode: http.StatusOK, wantStatus: "ready"},
		{name: "llm breaker open", failing: map[string]bool{"llm": true}, wantCode: http.StatusOK, wantStatus: "degraded"},
		{name: "store down", failing: map[string]bool{"store": true}, wantCode: http.StatusServiceUnavailable, wantStatus: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.failing = tt.failing

			rec := f.do(http.MethodGet, "/ready", "", false)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, decode(t, rec)["status"])
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/metrics", "", false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lifelog_parses_total")
}

func TestRouter_RequiresAuth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/v2/parse", `{"text":"ran 5k"}`, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	f.parser.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestRouter_V1Redirects(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/parse", `{}`, false)

	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "/api/v2/parse", rec.Header().Get("Location"))
}

func TestRouter_Parse(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.parser.On("Parse", mock.Anything, mock.MatchedBy(func(req parser.ParseRequest) bool {
		return req.UserID == "user-1" && req.Text == "ran 5k" && len(req.Context) == 1
	})).Return(&events.ParseResult{
		Events: []events.ParsedEvent{{
			Domain:     events.DomainWorkout,
			Type:       events.WorkoutCompleted,
			Payload:    &events.WorkoutPayload{Distance: events.Num(5), Unit: "km"},
			Confidence: 0.9,
		}},
		Response: "Logged a 5 km run.",
	}, nil)

	// Act
	rec := f.do(http.MethodPost, "/api/v2/parse", `{"text":"ran 5k","context":[{"text":"hi","isUser":true}]}`, true)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Logged a 5 km run.", data["response"])
	assert.Len(t, data["events"], 1)
	f.parser.AssertExpectations(t)
}

func TestRouter_ParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		parseErr error
		wantCode int
	}{
		{name: "malformed body", body: `{"text":`, wantCode: http.StatusBadRequest},
		{name: "unknown field", body: `{"text":"x","extra":1}`, wantCode: http.StatusBadRequest},
		{name: "empty utterance", body: `{"text":"  "}`, parseErr: apperrors.ErrEmptyUtterance, wantCode: http.StatusBadRequest},
		{name: "unexpected failure", body: `{"text":"x"}`, parseErr: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.parseErr != nil {
				f.parser.On("Parse", mock.Anything, mock.Anything).Return(nil, tt.parseErr)
			}

			rec := f.do(http.MethodPost, "/api/v2/parse", tt.body, true)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_Ingest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		result   *commands.IngestResult
		wantCode int
	}{
		{
			name:     "stored",
			body:     `{"text":"drank 2 glasses of water","source":"VOICE"}`,
			result:   &commands.IngestResult{Events: []commands.StoredEvent{{ID: "e1", Domain: events.DomainWellness}}, Parsed: true},
			wantCode: http.StatusCreated,
		},
		{
			name:     "nothing stored",
			body:     `{"text":"how many runs this week?"}`,
			result:   &commands.IngestResult{Events: []commands.StoredEvent{}, IsQuery: true},
			wantCode: http.StatusOK,
		},
		{
			name:     "command validation",
			body:     `{"text":""}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t)
			var got commands.IngestTextCommand
			f.ingest = func(cmd commands.IngestTextCommand) (interface{}, error) {
				got = cmd
				return tt.result, nil
			}

			// Act
			rec := f.do(http.MethodPost, "/api/v2/ingest", tt.body, true)

			// Assert
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.result != nil {
				assert.Equal(t, "user-1", got.UserID)
			}
		})
	}
}

func TestRouter_RecentEvents(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{name: "default window", path: "/api/v2/events/recent", wantCode: http.StatusOK},
		{name: "domain filter", path: "/api/v2/events/recent?domain=workout&limit=3", wantCode: http.StatusOK},
		{name: "bad limit", path: "/api/v2/events/recent?limit=abc", wantCode: http.StatusBadRequest},
		{name: "unknown domain", path: "/api/v2/events/recent?domain=astrology", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			rec := f.do(http.MethodGet, tt.path, "", true)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_DomainSchema(t *testing.T) {
	f := newFixture(t)
	f.schema = func(q queries.GetDomainSchemaQuery) (interface{}, error) {
		if q.Name == "WORKOUT" {
			return &entities.DomainSchema{Name: "WORKOUT", Kind: entities.DomainKindPreset}, nil
		}
		return nil, apperrors.NewNotFoundError("domain " + q.Name)
	}

	rec := f.do(http.MethodGet, "/api/v2/domains/WORKOUT/schema", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "WORKOUT", decode(t, rec)["data"].(map[string]interface{})["name"])

	rec = f.do(http.MethodGet, "/api/v2/domains/ASTROLOGY/schema", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ClearDomainCache(t *testing.T) {
	f := newFixture(t)
	f.cache.On("ClearUser", mock.Anything, "user-1").Return(4)

	rec := f.do(http.MethodDelete, "/api/v2/domains/cache", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), decode(t, rec)["data"].(map[string]interface{})["cleared"])
	f.cache.AssertExpectations(t)
}

func TestAuthenticate_GatewayHeaders(t *testing.T) {
	tests := []struct {
		name         string
		trust        bool
		headers      map[string]string
		wantCode     int
		wantUser     string
		wantRoleSize int
	}{
		{
			name:         "trusted gateway",
			trust:        true,
			headers:      map[string]string{middleware.HeaderGatewayAuthorized: "true", middleware.HeaderUserID: "gw-user", middleware.HeaderUserRoles: "authenticated,admin"},
			wantCode:     http.StatusOK,
			wantUser:     "gw-user",
			wantRoleSize: 2,
		},
		{
			name:     "gateway without user",
			trust:    true,
			headers:  map[string]string{middleware.HeaderGatewayAuthorized: "true"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "headers ignored when not trusted",
			trust:    false,
			headers:  map[string]string{middleware.HeaderGatewayAuthorized: "true", middleware.HeaderUserID: "gw-user"},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var seen *auth.UserContext
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = auth.GetUserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			handler := middleware.Authenticate(middleware.AuthConfig{TrustGateway: tt.trust})(next)
			req := httptest.NewRequest(http.MethodGet, "/api/v2/domains", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			// Act
			handler.ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantUser != "" {
				require.NotNil(t, seen)
				assert.Equal(t, tt.wantUser, seen.UserID)
				assert.Len(t, seen.Roles, tt.wantRoleSize)
			}
		})
	}
}

func TestAuthenticate_RateLimited(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := middleware.Authenticate(middleware.AuthConfig{
		TrustGateway: true,
		IPLimiter:    auth.NewIPRateLimiter(1),
	})(next)

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v2/domains", nil)
		req.Header.Set(middleware.HeaderGatewayAuthorized, "true")
		req.Header.Set(middleware.HeaderUserID, "u")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
