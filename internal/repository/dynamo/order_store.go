package dynamo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/internal/config"
	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/internal/domain/order"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// NewClient builds a DynamoDB client from the default AWS credential chain.
// Endpoint, when set, points the client at DynamoDB Local or another
// compatible server.
func NewClient(ctx context.Context, cfg config.DynamoConfig) (*dynamodb.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// OrderStore persists order records as single items. The table's key
// schema is expected to have orderId as its partition key.
type OrderStore struct {
	client API
	table  string
}

func NewOrderStore(client API, table string) *OrderStore {
	return &OrderStore{client: client, table: table}
}

// Put upserts rec. An existing item with the same key is replaced in full.
func (s *OrderStore) Put(ctx context.Context, rec order.Record) (*order.PutAck, error) {
	item, err := attributevalue.MarshalMap(toAttributeNumbers(map[string]any(rec)))
	if err != nil {
		return nil, &order.StorageError{Op: "marshal", Table: s.table, Err: err}
	}

	out, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:              aws.String(s.table),
		Item:                   item,
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	if err != nil {
		return nil, &order.StorageError{Op: "PutItem", Table: s.table, Err: err}
	}

	ack := &order.PutAck{Table: s.table}
	if id, ok := awsmiddleware.GetRequestIDMetadata(out.ResultMetadata); ok {
		ack.RequestID = id
	}
	if raw, ok := awsmiddleware.GetRawResponse(out.ResultMetadata).(*smithyhttp.Response); ok && raw != nil {
		ack.HTTPStatusCode = raw.StatusCode
	}
	if attempts, ok := retry.GetAttemptResults(out.ResultMetadata); ok {
		ack.Attempts = len(attempts.Results)
	}
	if cc := out.ConsumedCapacity; cc != nil && cc.CapacityUnits != nil {
		ack.ConsumedCapacity = *cc.CapacityUnits
	}
	return ack, nil
}

// Get reads an order back with a strongly consistent read.
func (s *OrderStore) Get(ctx context.Context, orderID string) (order.Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			order.FieldOrderID: &types.AttributeValueMemberS{Value: orderID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, &order.StorageError{Op: "GetItem", Table: s.table, Err: err}
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("order %q: %w", orderID, order.ErrNotFound)
	}

	dec := attributevalue.NewDecoder(func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	var m map[string]any
	if err := dec.Decode(&types.AttributeValueMemberM{Value: out.Item}, &m); err != nil {
		return nil, &order.StorageError{Op: "unmarshal", Table: s.table, Err: err}
	}
	return order.Record(fromAttributeNumbers(m).(map[string]any)), nil
}

// toAttributeNumbers swaps json.Number for attributevalue.Number so numbers
// are written as N attributes with their original text.
func toAttributeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		return attributevalue.Number(string(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = toAttributeNumbers(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toAttributeNumbers(e)
		}
		return out
	}
	return v
}

func fromAttributeNumbers(v any) any {
	switch t := v.(type) {
	case attributevalue.Number:
		return json.Number(string(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = fromAttributeNumbers(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromAttributeNumbers(e)
		}
		return out
	}
	return v
}
