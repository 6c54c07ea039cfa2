package dynamodb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lifelog/application/ports"
	"lifelog/domain/core/entities"
	"lifelog/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *MockAPI) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *MockAPI) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.QueryOutput), args.Error(1)
}

func (m *MockAPI) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.BatchWriteItemOutput), args.Error(1)
}

const table = "lifelog-test"

var createdAt = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func stringAttr(item map[string]types.AttributeValue, key string) string {
	if v, ok := item[key].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func TestSchemaStore_FindDomainSchema(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		// Arrange
		client := new(MockAPI)
		item, err := attributevalue.MarshalMap(domainItem{
			PK: userPK("u1"), SK: domainSK("Wellness"), EntityType: entityDomain, UserID: "u1",
			DomainSchema: entities.DomainSchema{Name: "Wellness", Enabled: true, Fields: []entities.FieldDefinition{{ID: "amount", Name: "Amount", Type: "number", Required: true}}},
		})
		require.NoError(t, err)
		client.On("GetItem", ctx, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			return stringAttr(in.Key, "PK") == "USER#u1" && stringAttr(in.Key, "SK") == "DOMAIN#wellness"
		})).Return(&dynamodb.GetItemOutput{Item: item}, nil)

		store := NewSchemaStore(client, table, zap.NewNop())

		// Act
		schema, err := store.FindDomainSchema(ctx, "u1", "Wellness")

		// Assert
		require.NoError(t, err)
		require.NotNil(t, schema)
		assert.Equal(t, "Wellness", schema.Name)
		assert.True(t, schema.Enabled)
		assert.Equal(t, []string{"amount"}, schema.RequiredFields())
	})

	t.Run("missing", func(t *testing.T) {
		client := new(MockAPI)
		client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		schema, err := NewSchemaStore(client, table, zap.NewNop()).FindDomainSchema(ctx, "u1", "Garden")

		require.NoError(t, err)
		assert.Nil(t, schema)
	})

	t.Run("error", func(t *testing.T) {
		client := new(MockAPI)
		client.On("GetItem", ctx, mock.Anything).Return(nil, errors.New("throttled"))

		_, err := NewSchemaStore(client, table, zap.NewNop()).FindDomainSchema(ctx, "u1", "Garden")

		assert.ErrorContains(t, err, "throttled")
	})
}

func TestSchemaStore_ListUserDomains_Pages(t *testing.T) {
	// Arrange
	ctx := context.Background()
	client := new(MockAPI)
	first, _ := attributevalue.MarshalMap(domainItem{PK: userPK("u1"), SK: domainSK("Habit"), DomainSchema: entities.DomainSchema{Name: "Habit"}})
	second, _ := attributevalue.MarshalMap(domainItem{PK: userPK("u1"), SK: domainSK("Jobs"), DomainSchema: entities.DomainSchema{Name: "Jobs"}})
	cursor := map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: "USER#u1"}}

	client.On("Query", ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool { return in.ExclusiveStartKey == nil })).
		Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{first}, LastEvaluatedKey: cursor}, nil).Once()
	client.On("Query", ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool { return in.ExclusiveStartKey != nil })).
		Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{second}}, nil).Once()

	// Act
	schemas, err := NewSchemaStore(client, table, zap.NewNop()).ListUserDomains(ctx, "u1")

	// Assert
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	assert.Equal(t, "Habit", schemas[0].Name)
	assert.Equal(t, "Jobs", schemas[1].Name)
	client.AssertExpectations(t)
}

func TestSchemaStore_SaveDomainSchemas_Batches(t *testing.T) {
	// Arrange
	ctx := context.Background()
	client := new(MockAPI)
	schemas := make([]*entities.DomainSchema, 30)
	for i := range schemas {
		schemas[i] = &entities.DomainSchema{Name: strings.Repeat("d", i+1)}
	}

	var sizes []int
	client.On("BatchWriteItem", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			in := args.Get(1).(*dynamodb.BatchWriteItemInput)
			sizes = append(sizes, len(in.RequestItems[table]))
		}).
		Return(&dynamodb.BatchWriteItemOutput{}, nil)

	// Act
	err := NewSchemaStore(client, table, zap.NewNop()).SaveDomainSchemas(ctx, "u1", schemas)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []int{25, 5}, sizes)
}

func TestSchemaStore_SaveDomainSchemas_Unprocessed(t *testing.T) {
	ctx := context.Background()
	client := new(MockAPI)
	client.On("BatchWriteItem", ctx, mock.Anything).Return(&dynamodb.BatchWriteItemOutput{
		UnprocessedItems: map[string][]types.WriteRequest{table: {{}}},
	}, nil)

	err := NewSchemaStore(client, table, zap.NewNop()).SaveDomainSchemas(ctx, "u1", []*entities.DomainSchema{{Name: "Habit"}})

	assert.ErrorContains(t, err, "failed to write 1 items")
}

func TestEventRepository_RoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	client := new(MockAPI)
	repo := NewEventRepository(client, table, "GSI1", zap.NewNop())

	record := &entities.EventRecord{
		ID:        "evt-1",
		UserID:    "u1",
		Domain:    events.DomainWorkout,
		Type:      events.SetCompleted,
		Payload:   &events.SetPayload{Exercise: "squats", Reps: events.Num(5), Weight: events.Num(100), Unit: "kg"},
		Source:    events.SourceChat,
		InputText: "did 5 squats at 100kg",
		Version:   1,
		CreatedAt: createdAt,
	}

	var stored map[string]types.AttributeValue
	client.On("PutItem", ctx, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*dynamodb.PutItemInput).Item }).
		Return(&dynamodb.PutItemOutput{}, nil)

	// Act
	require.NoError(t, repo.CreateEvent(ctx, record))

	workout := events.DomainWorkout
	client.On("Query", ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return aws.ToString(in.IndexName) == "GSI1" && !aws.ToBool(in.ScanIndexForward) && aws.ToInt32(in.Limit) == 5
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{stored}}, nil)

	found, err := repo.FindRecentEvents(ctx, ports.RecentEventsQuery{
		UserID: "u1",
		Domain: &workout,
		Since:  createdAt.Add(-10 * time.Minute),
		Limit:  5,
	})

	// Assert
	assert.Equal(t, "USER#u1", stringAttr(stored, "PK"))
	assert.Equal(t, "USER#u1#DOMAIN#WORKOUT", stringAttr(stored, "GSI1PK"))
	assert.True(t, strings.HasPrefix(stringAttr(stored, "SK"), "EVENT#2024-06-01T10:00:00"))

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "evt-1", found[0].ID)
	assert.Equal(t, createdAt, found[0].CreatedAt)
	set, ok := found[0].Payload.(*events.SetPayload)
	require.True(t, ok)
	assert.Equal(t, "squats", set.Exercise)
	assert.Equal(t, 100.0, set.Weight.Float())
}

func TestEventRepository_FindRecentEvents_SkipsUnreadable(t *testing.T) {
	ctx := context.Background()
	client := new(MockAPI)
	bad, _ := attributevalue.MarshalMap(eventItem{EventID: "bad", Domain: "WORKOUT", Type: "SET_COMPLETED", CreatedAt: "yesterday"})
	client.On("Query", ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool { return in.IndexName == nil })).
		Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{bad}}, nil)

	found, err := NewEventRepository(client, table, "GSI1", zap.NewNop()).FindRecentEvents(ctx, ports.RecentEventsQuery{UserID: "u1"})

	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDomainLogRepository_CreateDomainLog(t *testing.T) {
	// Arrange
	ctx := context.Background()
	client := new(MockAPI)
	var stored map[string]types.AttributeValue
	client.On("PutItem", ctx, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*dynamodb.PutItemInput).Item }).
		Return(&dynamodb.PutItemOutput{}, nil)

	repo := NewDomainLogRepository(client, table)

	// Act
	err := repo.CreateDomainLog(ctx, &entities.DomainLog{
		ID:        "log-1",
		UserID:    "u1",
		EventID:   "evt-1",
		Domain:    events.DomainWellness,
		Kind:      entities.LogWater,
		Fields:    map[string]interface{}{"amount": 2.0, "unit": "cups", "ml": 480.0},
		CreatedAt: createdAt,
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stringAttr(stored, "SK"), "LOG#WELLNESS#2024-06-01T10:00:00"))
	assert.Equal(t, "WATER", stringAttr(stored, "Kind"))

	var item domainLogItem
	require.NoError(t, attributevalue.UnmarshalMap(stored, &item))
	assert.Equal(t, 480.0, item.Fields["ml"])
}
