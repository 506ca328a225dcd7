package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

const (
	conditionNotExists   = "attribute_not_exists(idempotency_key)"
	conditionFailedState = "#s = :failed"
)

// DynamoDBAPI DynamoStore 用到的 DynamoDB 接口子集
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error)
	GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error)
}

// DynamoStore 基于 DynamoDB 条件写入的幂等存储
type DynamoStore struct {
	client    DynamoDBAPI
	tableName string
	ttl       time.Duration
	nowFunc   func() time.Time
}

// NewDynamoStore 创建 DynamoDB 幂等存储
func NewDynamoStore(client DynamoDBAPI, tableName string, ttl time.Duration) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		nowFunc:   time.Now,
	}
}

// Begin 条件写入新记录；已存在且为 FAILED 时允许重新占用
func (s *DynamoStore) Begin(ctx context.Context, key, scope string) (*Record, bool, error) {
	id, err := compositeKey(key, scope)
	if err != nil {
		return nil, false, err
	}
	now := s.nowFunc()
	rec := Record{
		Key:       id,
		Scope:     scope,
		Status:    StatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	created, err := s.put(ctx, rec, conditionNotExists, nil, nil)
	if err != nil {
		return nil, false, err
	}
	if created {
		return &rec, true, nil
	}

	existing, err := s.get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if existing == nil || existing.Status != StatusFailed {
		return existing, false, nil
	}
	reclaimed, err := s.put(ctx, rec, conditionFailedState,
		map[string]string{"#s": "status"},
		map[string]types.AttributeValue{":failed": &types.AttributeValueMemberS{Value: StatusFailed}},
	)
	if err != nil {
		return nil, false, err
	}
	if reclaimed {
		return &rec, true, nil
	}
	existing, err = s.get(ctx, id)
	return existing, false, err
}

// Complete 标记成功
func (s *DynamoStore) Complete(ctx context.Context, key, scope string, orderID uint) error {
	id, err := compositeKey(key, scope)
	if err != nil {
		return err
	}
	input := &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              keyAttr(id),
		UpdateExpression: awsString("SET #s = :done, order_id = :oid, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":done": &types.AttributeValueMemberS{Value: StatusDone},
			":oid":  &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(orderID), 10)},
			":ua":   &types.AttributeValueMemberS{Value: s.nowFunc().Format(time.RFC3339Nano)},
		},
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update item (complete): %w", err)
	}
	return nil
}

// Fail 标记失败
func (s *DynamoStore) Fail(ctx context.Context, key, scope, note string) error {
	id, err := compositeKey(key, scope)
	if err != nil {
		return err
	}
	input := &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              keyAttr(id),
		UpdateExpression: awsString("SET #s = :failed, note = :n, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":failed": &types.AttributeValueMemberS{Value: StatusFailed},
			":n":      &types.AttributeValueMemberS{Value: note},
			":ua":     &types.AttributeValueMemberS{Value: s.nowFunc().Format(time.RFC3339Nano)},
		},
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update item (fail): %w", err)
	}
	return nil
}

func (s *DynamoStore) put(ctx context.Context, rec Record, condition string, names map[string]string, values map[string]types.AttributeValue) (bool, error) {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}
	input := &dyn.PutItemInput{
		TableName:                 &s.tableName,
		Item:                      item,
		ConditionExpression:       awsString(condition),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}
	if _, err := s.client.PutItem(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		return false, fmt.Errorf("put item: %w", err)
	}
	return true, nil
}

// get 不存在时返回 nil, nil
func (s *DynamoStore) get(ctx context.Context, id string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            keyAttr(id),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &rec, nil
}

func keyAttr(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"idempotency_key": &types.AttributeValueMemberS{Value: id},
	}
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
