package dynamodb

import (
	"context"
	"fmt"

	"lifelog/application/ports"
	"lifelog/domain/core/entities"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// SchemaStore implements ports.SchemaStore using DynamoDB
type SchemaStore struct {
	client    API
	tableName string
	logger    *zap.Logger
}

// NewSchemaStore creates a new SchemaStore
func NewSchemaStore(client API, tableName string, logger *zap.Logger) *SchemaStore {
	return &SchemaStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.SchemaStore = (*SchemaStore)(nil)

// domainItem represents the DynamoDB item structure for a domain schema
type domainItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	UserID     string `dynamodbav:"UserID"`
	entities.DomainSchema
}

// FindDomainSchema loads one domain, or (nil, nil) when the user has none
// by that name
func (s *SchemaStore) FindDomainSchema(ctx context.Context, userID, name string) (*entities.DomainSchema, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: domainSK(name)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get domain %s: %w", name, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item domainItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal domain %s: %w", name, err)
	}
	return &item.DomainSchema, nil
}

// ListUserDomains returns every domain configured for the user
func (s *SchemaStore) ListUserDomains(ctx context.Context, userID string) ([]*entities.DomainSchema, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith("DOMAIN#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build domain query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var schemas []*entities.DomainSchema
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query domains: %w", err)
		}

		var items []domainItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal domains: %w", err)
		}
		for i := range items {
			schema := items[i].DomainSchema
			schemas = append(schemas, &schema)
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	return schemas, nil
}

// SaveDomainSchemas writes the schemas in batches
func (s *SchemaStore) SaveDomainSchemas(ctx context.Context, userID string, schemas []*entities.DomainSchema) error {
	requests := make([]types.WriteRequest, 0, len(schemas))
	for _, schema := range schemas {
		av, err := attributevalue.MarshalMap(domainItem{
			PK:           userPK(userID),
			SK:           domainSK(schema.Name),
			EntityType:   entityDomain,
			UserID:       userID,
			DomainSchema: *schema,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal domain %s: %w", schema.Name, err)
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}

	if err := batchWrite(ctx, s.client, s.tableName, requests); err != nil {
		return err
	}

	s.logger.Debug("Saved domain schemas",
		zap.String("user_id", userID),
		zap.Int("count", len(schemas)),
	)
	return nil
}

// batchWrite sends requests in chunks of batchLimit. Unprocessed items are
// reported rather than retried.
func batchWrite(ctx context.Context, client API, tableName string, requests []types.WriteRequest) error {
	for i := 0; i < len(requests); i += batchLimit {
		end := i + batchLimit
		if end > len(requests) {
			end = len(requests)
		}

		out, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				tableName: requests[i:end],
			},
		})
		if err != nil {
			return fmt.Errorf("failed to write batch: %w", err)
		}
		if n := len(out.UnprocessedItems[tableName]); n > 0 {
			return fmt.Errorf("failed to write %d items", n)
		}
	}
	return nil
}
