package dynamodb

import (
	"context"
	"fmt"
	"time"

	"ideaboard/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Client is the subset of the DynamoDB API the store uses
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// recordItem represents the DynamoDB item structure for one record
type recordItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	Value      []byte `dynamodbav:"Value"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

const (
	recordSK         = "RECORD"
	recordEntityType = "KV_RECORD"
)

// Store implements ports.KeyValueStore using DynamoDB
type Store struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

// NewStore creates a new DynamoDB-backed store
func NewStore(client Client, tableName string, logger *zap.Logger) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func recordKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "KEY#" + key},
		"SK": &types.AttributeValueMemberS{Value: recordSK},
	}
}

// valueProjection fetches only the stored bytes
var valueProjection = expression.NamesList(expression.Name("Value"))

// Get retrieves the value stored under key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	expr, err := expression.NewBuilder().WithProjection(valueProjection).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build projection: %w", err)
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(s.tableName),
		Key:                      recordKey(key),
		ConsistentRead:           aws.Bool(true),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if len(result.Item) == 0 {
		return nil, ports.ErrKeyNotFound
	}

	var item recordItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return item.Value, nil
}

// Set overwrites the value stored under key
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	item := recordItem{
		PK:         "KEY#" + key,
		SK:         recordSK,
		EntityType: recordEntityType,
		Value:      value,
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		s.logger.Error("Failed to put record",
			zap.String("table", s.tableName),
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// Close is a no-op; the SDK client has no resources to release
func (s *Store) Close() error {
	return nil
}
