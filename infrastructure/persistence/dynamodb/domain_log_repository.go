package dynamodb

import (
	"context"
	"fmt"
	"time"

	"lifelog/application/ports"
	"lifelog/domain/core/entities"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DomainLogRepository implements ports.DomainLogRepository using DynamoDB
type DomainLogRepository struct {
	client    API
	tableName string
}

// NewDomainLogRepository creates a new DomainLogRepository
func NewDomainLogRepository(client API, tableName string) *DomainLogRepository {
	return &DomainLogRepository{
		client:    client,
		tableName: tableName,
	}
}

var _ ports.DomainLogRepository = (*DomainLogRepository)(nil)

type domainLogItem struct {
	PK         string                 `dynamodbav:"PK"`
	SK         string                 `dynamodbav:"SK"`
	EntityType string                 `dynamodbav:"EntityType"`
	LogID      string                 `dynamodbav:"LogID"`
	EventID    string                 `dynamodbav:"EventID,omitempty"`
	UserID     string                 `dynamodbav:"UserID"`
	Domain     string                 `dynamodbav:"Domain"`
	Kind       string                 `dynamodbav:"Kind"`
	Fields     map[string]interface{} `dynamodbav:"Fields"`
	CreatedAt  string                 `dynamodbav:"CreatedAt"`
}

// CreateDomainLog writes one domain log row
func (r *DomainLogRepository) CreateDomainLog(ctx context.Context, log *entities.DomainLog) error {
	av, err := attributevalue.MarshalMap(domainLogItem{
		PK:         userPK(log.UserID),
		SK:         logSK(string(log.Domain), log.CreatedAt, log.ID),
		EntityType: entityDomainLog,
		LogID:      log.ID,
		EventID:    log.EventID,
		UserID:     log.UserID,
		Domain:     string(log.Domain),
		Kind:       string(log.Kind),
		Fields:     log.Fields,
		CreatedAt:  log.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal domain log: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("failed to save domain log: %w", err)
	}
	return nil
}
