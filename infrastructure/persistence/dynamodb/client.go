package dynamodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// API is the subset of the DynamoDB client the repositories use
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Entity types stored in the single table
const (
	entityDomain    = "DOMAIN"
	entityEvent     = "EVENT"
	entityDomainLog = "DOMAIN_LOG"
)

// batchLimit is DynamoDB's maximum number of items per BatchWriteItem
const batchLimit = 25

// sortableTime formats timestamps so lexical order matches time order
const sortableTime = "2006-01-02T15:04:05.000000000Z"

func userPK(userID string) string {
	return fmt.Sprintf("USER#%s", userID)
}

func domainSK(name string) string {
	return fmt.Sprintf("DOMAIN#%s", strings.ToLower(name))
}

func eventSK(at time.Time, id string) string {
	return fmt.Sprintf("EVENT#%s#%s", at.UTC().Format(sortableTime), id)
}

func domainEventsPK(userID, domain string) string {
	return fmt.Sprintf("USER#%s#DOMAIN#%s", userID, domain)
}

func logSK(domain string, at time.Time, id string) string {
	return fmt.Sprintf("LOG#%s#%s#%s", domain, at.UTC().Format(sortableTime), id)
}
