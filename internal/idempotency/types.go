// Package idempotency 下单请求的幂等键存储。
package idempotency

import (
	"context"
	"errors"
	"time"
)

// 记录状态
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// ErrInvalidKey 幂等键为空或过长
var ErrInvalidKey = errors.New("invalid idempotency key")

const maxKeyLength = 128

// Record 幂等记录
type Record struct {
	Key       string    `dynamodbav:"idempotency_key" json:"key"`
	Scope     string    `dynamodbav:"scope" json:"scope"`
	Status    string    `dynamodbav:"status" json:"status"`
	OrderID   uint      `dynamodbav:"order_id,omitempty" json:"order_id,omitempty"`
	Note      string    `dynamodbav:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updated_at"`
	ExpiresAt int64     `dynamodbav:"expires_at" json:"expires_at"` // TTL，Unix 秒
}

// Done 已成功完成
func (r *Record) Done() bool {
	return r != nil && r.Status == StatusDone
}

// Store 幂等存储
type Store interface {
	// Begin 占用幂等键；created=false 时返回已有记录
	Begin(ctx context.Context, key, scope string) (*Record, bool, error)
	// Complete 标记成功并记录订单
	Complete(ctx context.Context, key, scope string, orderID uint) error
	// Fail 标记失败，后续同键请求可以重新占用
	Fail(ctx context.Context, key, scope, note string) error
}

// compositeKey 按作用域隔离，不同用户使用相同键不会互相命中
func compositeKey(key, scope string) (string, error) {
	if key == "" || len(key) > maxKeyLength {
		return "", ErrInvalidKey
	}
	if scope == "" {
		return key, nil
	}
	return scope + "#" + key, nil
}

// NopStore 未启用幂等时使用，每次请求都视为新请求
type NopStore struct{}

func (NopStore) Begin(_ context.Context, key, scope string) (*Record, bool, error) {
	now := time.Now()
	return &Record{Key: key, Scope: scope, Status: StatusInProgress, CreatedAt: now, UpdatedAt: now}, true, nil
}

func (NopStore) Complete(context.Context, string, string, uint) error { return nil }

func (NopStore) Fail(context.Context, string, string, string) error { return nil }
