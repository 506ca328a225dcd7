package idempotency

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo 内存版 DynamoDB，只支持本包用到的条件表达式
type fakeDynamo struct {
	mu          sync.Mutex
	table       map[string]map[string]types.AttributeValue
	putCalls    int
	updateCalls int
	putErr      error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{table: map[string]map[string]types.AttributeValue{}}
}

func keyOf(item map[string]types.AttributeValue) (string, error) {
	attr, ok := item["idempotency_key"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing key")
	}
	return attr.Value, nil
}

func (m *fakeDynamo) PutItem(_ context.Context, params *dyn.PutItemInput, _ ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putErr != nil {
		return nil, m.putErr
	}
	k, err := keyOf(params.Item)
	if err != nil {
		return nil, err
	}
	existing, exists := m.table[k]
	if params.ConditionExpression != nil {
		switch *params.ConditionExpression {
		case conditionNotExists:
			if exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case conditionFailedState:
			status, _ := existing["status"].(*types.AttributeValueMemberS)
			if !exists || status == nil || status.Value != StatusFailed {
				return nil, &types.ConditionalCheckFailedException{}
			}
		}
	}
	m.table[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *fakeDynamo) GetItem(_ context.Context, params *dyn.GetItemInput, _ ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *fakeDynamo) UpdateItem(_ context.Context, params *dyn.UpdateItemInput, _ ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	k, err := keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		return nil, errors.New("item not found")
	}
	values := params.ExpressionAttributeValues
	if v, ok := values[":done"]; ok {
		item["status"] = v
	}
	if v, ok := values[":failed"]; ok {
		item["status"] = v
	}
	if v, ok := values[":oid"]; ok {
		item["order_id"] = v
	}
	if v, ok := values[":n"]; ok {
		item["note"] = v
	}
	if v, ok := values[":ua"]; ok {
		item["updated_at"] = v
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}
