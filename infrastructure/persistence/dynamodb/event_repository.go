package dynamodb

import (
	"context"
	"fmt"
	"time"

	"lifelog/application/ports"
	"lifelog/domain/core/entities"
	"lifelog/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// EventRepository implements ports.EventRepository using DynamoDB.
// Events live under the user's partition and are mirrored into GSI1 by
// user and domain.
type EventRepository struct {
	client    API
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(client API, tableName, indexName string, logger *zap.Logger) *EventRepository {
	return &EventRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

var _ ports.EventRepository = (*EventRepository)(nil)

// eventItem represents the DynamoDB item structure for an event
type eventItem struct {
	PK         string                 `dynamodbav:"PK"`
	SK         string                 `dynamodbav:"SK"`
	GSI1PK     string                 `dynamodbav:"GSI1PK"`
	GSI1SK     string                 `dynamodbav:"GSI1SK"`
	EntityType string                 `dynamodbav:"EntityType"`
	EventID    string                 `dynamodbav:"EventID"`
	UserID     string                 `dynamodbav:"UserID"`
	Domain     string                 `dynamodbav:"Domain"`
	Type       string                 `dynamodbav:"Type"`
	Payload    map[string]interface{} `dynamodbav:"Payload"`
	Source     string                 `dynamodbav:"Source"`
	InputText  string                 `dynamodbav:"InputText"`
	Version    int                    `dynamodbav:"Version"`
	CreatedAt  string                 `dynamodbav:"CreatedAt"`
}

// CreateEvent stores a validated event
func (r *EventRepository) CreateEvent(ctx context.Context, record *entities.EventRecord) error {
	item := eventItem{
		PK:         userPK(record.UserID),
		SK:         eventSK(record.CreatedAt, record.ID),
		GSI1PK:     domainEventsPK(record.UserID, string(record.Domain)),
		GSI1SK:     eventSK(record.CreatedAt, record.ID),
		EntityType: entityEvent,
		EventID:    record.ID,
		UserID:     record.UserID,
		Domain:     string(record.Domain),
		Type:       string(record.Type),
		Payload:    events.Fields(record.Payload),
		Source:     string(record.Source),
		InputText:  record.InputText,
		Version:    record.Version,
		CreatedAt:  record.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

// FindRecentEvents returns events created after q.Since, newest first
func (r *EventRepository) FindRecentEvents(ctx context.Context, q ports.RecentEventsQuery) ([]*entities.EventRecord, error) {
	pkName, pk, skName := "PK", userPK(q.UserID), "SK"
	if q.Domain != nil {
		pkName, pk, skName = "GSI1PK", domainEventsPK(q.UserID, string(*q.Domain)), "GSI1SK"
	}

	// Events sort as EVENT#<time>#<id>, so any key past EVENT#<since> is newer
	keyCond := expression.Key(pkName).Equal(expression.Value(pk)).
		And(expression.Key(skName).Between(
			expression.Value(eventSK(q.Since, "")),
			expression.Value("EVENT#~"),
		))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build event query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if q.Domain != nil {
		input.IndexName = aws.String(r.indexName)
	}
	if q.Limit > 0 {
		input.Limit = aws.Int32(int32(q.Limit))
	}

	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	var items []eventItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal events: %w", err)
	}

	records := make([]*entities.EventRecord, 0, len(items))
	for _, item := range items {
		record, err := item.toRecord()
		if err != nil {
			r.logger.Warn("Skipping unreadable event",
				zap.String("user_id", q.UserID),
				zap.String("event_id", item.EventID),
				zap.Error(err),
			)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (item eventItem) toRecord() (*entities.EventRecord, error) {
	domain := events.Domain(item.Domain)
	eventType := events.EventType(item.Type)

	payload, err := events.PayloadFromMap(domain, eventType, item.Payload)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt %q: %w", item.CreatedAt, err)
	}

	return &entities.EventRecord{
		ID:        item.EventID,
		UserID:    item.UserID,
		Domain:    domain,
		Type:      eventType,
		Payload:   payload,
		Source:    events.Source(item.Source),
		InputText: item.InputText,
		Version:   item.Version,
		CreatedAt: createdAt,
	}, nil
}
