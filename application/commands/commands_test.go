package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"lifelog/application/ports"
	"lifelog/application/services/domainlog"
	"lifelog/application/services/parser"
	"lifelog/domain/core/entities"
	"lifelog/domain/events"
	"lifelog/infrastructure/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockParser struct {
	mock.Mock
}

func (m *MockParser) Parse(ctx context.Context, req parser.ParseRequest) (*events.ParseResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*events.ParseResult), args.Error(1)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) CreateEvent(ctx context.Context, record *entities.EventRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockEventRepository) FindRecentEvents(ctx context.Context, q ports.RecentEventsQuery) ([]*entities.EventRecord, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]*entities.EventRecord), args.Error(1)
}

type MockLogDispatcher struct {
	mock.Mock
}

func (m *MockLogDispatcher) DispatchItems(ctx context.Context, userID string, items []domainlog.Item) []domainlog.Result {
	args := m.Called(ctx, userID, items)
	if fn, ok := args.Get(0).(func(context.Context, string, []domainlog.Item) []domainlog.Result); ok {
		return fn(ctx, userID, items)
	}
	return args.Get(0).([]domainlog.Result)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

type MockSchemaStore struct {
	mock.Mock
}

func (m *MockSchemaStore) FindDomainSchema(ctx context.Context, userID, name string) (*entities.DomainSchema, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DomainSchema), args.Error(1)
}

func (m *MockSchemaStore) ListUserDomains(ctx context.Context, userID string) ([]*entities.DomainSchema, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DomainSchema), args.Error(1)
}

func (m *MockSchemaStore) SaveDomainSchemas(ctx context.Context, userID string, schemas []*entities.DomainSchema) error {
	args := m.Called(ctx, userID, schemas)
	return args.Error(0)
}

type staticPresets []*entities.DomainSchema

func (p staticPresets) Presets() []*entities.DomainSchema { return p }

type MockCacheInvalidator struct {
	mock.Mock
}

func (m *MockCacheInvalidator) ClearUser(ctx context.Context, userID string) int {
	args := m.Called(ctx, userID)
	return args.Int(0)
}

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func twoEvents() *events.ParseResult {
	return &events.ParseResult{
		Events: []events.ParsedEvent{
			events.NewParsedEvent(events.DomainWellness, events.WaterLogged, &events.WaterPayload{Amount: events.Num(2), Unit: "cups"}, 0.9),
			events.NewParsedEvent(events.DomainHabit, events.HabitCompleted, &events.HabitPayload{Habit: "meditate"}, 0.9),
		},
		Response: "Logged!",
	}
}

func TestIngestTextCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     IngestTextCommand
		wantErr bool
	}{
		{name: "valid", cmd: IngestTextCommand{UserID: "u1", Text: "drank water"}},
		{name: "valid with source", cmd: IngestTextCommand{UserID: "u1", Text: "drank water", Source: events.SourceVoice}},
		{name: "missing user", cmd: IngestTextCommand{Text: "drank water"}, wantErr: true},
		{name: "missing text", cmd: IngestTextCommand{UserID: "u1"}, wantErr: true},
		{name: "unknown source", cmd: IngestTextCommand{UserID: "u1", Text: "x", Source: "FAX"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIngestTextHandler_StoresLogsAndPublishes(t *testing.T) {
	// Arrange
	ctx := context.Background()
	p := new(MockParser)
	repo := new(MockEventRepository)
	logs := new(MockLogDispatcher)
	pub := new(MockEventPublisher)

	parsed := twoEvents()
	p.On("Parse", ctx, parser.ParseRequest{Text: "2 cups of water and meditated", UserID: "u1"}).Return(parsed, nil)
	repo.On("CreateEvent", ctx, mock.AnythingOfType("*entities.EventRecord")).Return(nil).Twice()
	logs.On("DispatchItems", ctx, "u1", mock.AnythingOfType("[]domainlog.Item")).
		Return(func(_ context.Context, _ string, items []domainlog.Item) []domainlog.Result {
			return []domainlog.Result{
				{Event: items[0].Event, Record: &entities.DomainLog{ID: "log-1", EventID: items[0].EventID, Kind: entities.LogWater}},
				{Event: items[1].Event, Err: errors.New("failed to write HABIT log: throttled")},
			}
		})
	pub.On("PublishBatch", ctx, mock.MatchedBy(func(batch []events.DomainEvent) bool {
		return len(batch) == 2 &&
			batch[0].(events.EventLogged).LogStored &&
			!batch[1].(events.EventLogged).LogStored
	})).Return(nil)

	h := NewIngestTextHandler(p, repo, logs, pub, cache.NewManualClock(now), zap.NewNop())

	// Act
	result, err := h.Handle(ctx, IngestTextCommand{UserID: "u1", Text: "2 cups of water and meditated"})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Parsed)
	assert.Equal(t, "Logged!", result.Response)
	require.Len(t, result.Events, 2)
	assert.Equal(t, events.SourceChat, result.Events[0].Source)
	assert.Equal(t, now, result.Events[0].CreatedAt)
	assert.Equal(t, map[string]interface{}{"amount": 2.0, "unit": "cups"}, result.Events[0].Payload)

	require.Len(t, result.Results, 2)
	assert.Equal(t, result.Events[0].ID, result.Results[0].EventID)
	assert.Equal(t, "log-1", result.Results[0].LogID)
	assert.Equal(t, entities.LogWater, result.Results[0].Kind)
	assert.Equal(t, "failed to write HABIT log: throttled", result.Results[1].Error)

	p.AssertExpectations(t)
	repo.AssertExpectations(t)
	logs.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestIngestTextHandler_StorageUnavailable(t *testing.T) {
	// Arrange
	ctx := context.Background()
	p := new(MockParser)
	repo := new(MockEventRepository)
	logs := new(MockLogDispatcher)
	pub := new(MockEventPublisher)

	p.On("Parse", ctx, mock.Anything).Return(twoEvents(), nil)
	repo.On("CreateEvent", ctx, mock.Anything).Return(errors.New("table offline"))

	h := NewIngestTextHandler(p, repo, logs, pub, cache.NewManualClock(now), zap.NewNop())

	// Act
	result, err := h.Handle(ctx, IngestTextCommand{UserID: "u1", Text: "2 cups of water and meditated"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, parser.StorageUnavailableResponse, result.Response)
	assert.Empty(t, result.Events)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "failed to store event", result.Results[0].Error)
	logs.AssertNotCalled(t, "DispatchItems", mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishBatch", mock.Anything, mock.Anything)
}

func TestIngestTextHandler_ResultsKeepEventOrder(t *testing.T) {
	// Arrange
	ctx := context.Background()
	p := new(MockParser)
	repo := new(MockEventRepository)
	logs := new(MockLogDispatcher)

	parsed := twoEvents()
	parsed.Events = append(parsed.Events,
		events.NewParsedEvent(events.DomainWellness, events.SleepLogged, &events.SleepPayload{Hours: events.Num(7)}, 0.85))
	p.On("Parse", ctx, mock.Anything).Return(parsed, nil)
	repo.On("CreateEvent", ctx, mock.MatchedBy(func(r *entities.EventRecord) bool { return r.Type == events.HabitCompleted })).
		Return(errors.New("throttled"))
	repo.On("CreateEvent", ctx, mock.Anything).Return(nil)
	logs.On("DispatchItems", ctx, "u1", mock.Anything).
		Return(func(_ context.Context, _ string, items []domainlog.Item) []domainlog.Result {
			out := make([]domainlog.Result, len(items))
			for i, item := range items {
				out[i] = domainlog.Result{Event: item.Event, Record: &entities.DomainLog{ID: "log-" + string(item.Event.Type), EventID: item.EventID}}
			}
			return out
		})

	h := NewIngestTextHandler(p, repo, logs, nil, cache.NewManualClock(now), zap.NewNop())

	// Act
	result, err := h.Handle(ctx, IngestTextCommand{UserID: "u1", Text: "water, meditated, slept 7 hours"})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Events, 2)
	require.Len(t, result.Results, 3)
	assert.Equal(t, events.WaterLogged, result.Results[0].Type)
	assert.Equal(t, "log-"+string(events.WaterLogged), result.Results[0].LogID)
	assert.Equal(t, events.HabitCompleted, result.Results[1].Type)
	assert.Equal(t, "failed to store event", result.Results[1].Error)
	assert.Empty(t, result.Results[1].EventID)
	assert.Equal(t, events.SleepLogged, result.Results[2].Type)
	assert.Equal(t, result.Events[1].ID, result.Results[2].EventID)
}

func TestIngestTextHandler_PublishFailureIsNotFatal(t *testing.T) {
	// Arrange
	ctx := context.Background()
	p := new(MockParser)
	repo := new(MockEventRepository)
	logs := new(MockLogDispatcher)
	pub := new(MockEventPublisher)

	parsed := &events.ParseResult{Events: twoEvents().Events[:1], Response: "ok"}
	p.On("Parse", ctx, mock.Anything).Return(parsed, nil)
	repo.On("CreateEvent", ctx, mock.Anything).Return(nil)
	logs.On("DispatchItems", ctx, "u1", mock.Anything).Return([]domainlog.Result{{Event: parsed.Events[0], Skipped: true}})
	pub.On("PublishBatch", ctx, mock.Anything).Return(errors.New("bus down"))

	h := NewIngestTextHandler(p, repo, logs, pub, nil, zap.NewNop())

	// Act
	result, err := h.Handle(ctx, IngestTextCommand{UserID: "u1", Text: "drank water", Source: events.SourceVoice})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Response)
	assert.Equal(t, events.SourceVoice, result.Events[0].Source)
	assert.True(t, result.Results[0].Skipped)
	pub.AssertExpectations(t)
}

func TestIngestTextHandler_QueryAndParseError(t *testing.T) {
	ctx := context.Background()

	t.Run("query stores nothing", func(t *testing.T) {
		p := new(MockParser)
		repo := new(MockEventRepository)
		logs := new(MockLogDispatcher)
		query := &events.ParseResult{IsQuery: true, QueryType: events.QueryStats, QueryDomain: events.DomainWellness, Events: []events.ParsedEvent{}, Response: "Let me check."}
		p.On("Parse", ctx, mock.Anything).Return(query, nil)
		logs.On("DispatchItems", ctx, "u1", mock.Anything).Return([]domainlog.Result{})

		h := NewIngestTextHandler(p, repo, logs, nil, nil, zap.NewNop())
		result, err := h.Handle(ctx, IngestTextCommand{UserID: "u1", Text: "how much water this week?"})

		require.NoError(t, err)
		assert.True(t, result.IsQuery)
		assert.False(t, result.Parsed)
		assert.Equal(t, events.QueryStats, result.QueryType)
		repo.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
	})

	t.Run("parse error propagates", func(t *testing.T) {
		p := new(MockParser)
		p.On("Parse", ctx, mock.Anything).Return(nil, context.Canceled)

		h := NewIngestTextHandler(p, nil, nil, nil, nil, zap.NewNop())
		_, err := h.Handle(ctx, IngestTextCommand{UserID: "u1", Text: "x"})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEnsurePresetDomainsHandler_CreatesPresets(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(MockSchemaStore)
	invalidator := new(MockCacheInvalidator)
	presets := staticPresets{
		{Name: "Wellness"}, {Name: "Workout"}, {Name: "Habit"}, {Name: "Jobs"},
	}

	store.On("ListUserDomains", ctx, "u1").Return([]*entities.DomainSchema{}, nil)
	store.On("SaveDomainSchemas", ctx, "u1", mock.MatchedBy(func(s []*entities.DomainSchema) bool {
		return len(s) == 4 && s[0].Enabled && s[2].Enabled && !s[3].Enabled
	})).Return(nil)
	invalidator.On("ClearUser", ctx, "u1").Return(3)

	h := NewEnsurePresetDomainsHandler(store, presets, invalidator, zap.NewNop())

	// Act
	result, err := h.Handle(ctx, EnsurePresetDomainsCommand{UserID: "u1"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, result.Created)
	assert.Len(t, result.Domains, 4)
	assert.False(t, presets[0].Enabled, "presets must not be mutated")
	store.AssertExpectations(t)
	invalidator.AssertExpectations(t)
}

func TestEnsurePresetDomainsHandler_ExistingDomains(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(MockSchemaStore)
	invalidator := new(MockCacheInvalidator)
	store.On("ListUserDomains", ctx, "u1").Return([]*entities.DomainSchema{{Name: "Wellness", Enabled: true}}, nil)

	h := NewEnsurePresetDomainsHandler(store, staticPresets{{Name: "Wellness"}}, invalidator, zap.NewNop())

	// Act
	result, err := h.Handle(ctx, EnsurePresetDomainsCommand{UserID: "u1"})

	// Assert
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Equal(t, []entities.DomainSummary{{Name: "Wellness", Enabled: true}}, result.Domains)
	store.AssertNotCalled(t, "SaveDomainSchemas", mock.Anything, mock.Anything, mock.Anything)
	invalidator.AssertNotCalled(t, "ClearUser", mock.Anything, mock.Anything)
}

func TestEnsurePresetDomainsHandler_StoreError(t *testing.T) {
	ctx := context.Background()
	store := new(MockSchemaStore)
	store.On("ListUserDomains", ctx, "u1").Return(nil, errors.New("boom"))

	h := NewEnsurePresetDomainsHandler(store, staticPresets{}, new(MockCacheInvalidator), zap.NewNop())
	_, err := h.Handle(ctx, EnsurePresetDomainsCommand{UserID: "u1"})

	assert.Error(t, err)
}
