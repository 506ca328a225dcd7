package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// beginScript 键不存在或记录为 FAILED 时写入新记录，返回 {1, 新记录}；否则返回 {0, 已有记录}
var beginScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current then
	local ok, rec = pcall(cjson.decode, current)
	if not ok or rec["status"] ~= ARGV[3] then
		return {0, current}
	end
end
if tonumber(ARGV[2]) > 0 then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
else
	redis.call("SET", KEYS[1], ARGV[1])
end
return {1, ARGV[1]}
`)

// RedisStore 基于 Lua 脚本原子占用的幂等存储
type RedisStore struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewRedisStore 创建 Redis 幂等存储
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl, nowFunc: time.Now}
}

func (s *RedisStore) redisKey(id string) string {
	return fmt.Sprintf("%s:idem:%s", s.prefix, id)
}

// Begin 原子占用；已存在且为 FAILED 时重新占用
func (s *RedisStore) Begin(ctx context.Context, key, scope string) (*Record, bool, error) {
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
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, false, err
	}
	result, err := beginScript.Run(ctx, s.client, []string{s.redisKey(id)}, payload, s.ttl.Milliseconds(), StatusFailed).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis begin: %w", err)
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return nil, false, fmt.Errorf("redis begin: unexpected result %T", result)
	}
	if created, _ := values[0].(int64); created == 1 {
		return &rec, true, nil
	}
	raw, _ := values[1].(string)
	var existing Record
	if err := json.Unmarshal([]byte(raw), &existing); err != nil {
		return nil, false, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &existing, false, nil
}

// Complete 标记成功
func (s *RedisStore) Complete(ctx context.Context, key, scope string, orderID uint) error {
	return s.update(ctx, key, scope, func(rec *Record) {
		rec.Status = StatusDone
		rec.OrderID = orderID
	})
}

// Fail 标记失败
func (s *RedisStore) Fail(ctx context.Context, key, scope, note string) error {
	return s.update(ctx, key, scope, func(rec *Record) {
		rec.Status = StatusFailed
		rec.Note = note
	})
}

func (s *RedisStore) update(ctx context.Context, key, scope string, mutate func(*Record)) error {
	id, err := compositeKey(key, scope)
	if err != nil {
		return err
	}
	rec, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("idempotency record %s not found", id)
	}
	mutate(rec)
	rec.UpdatedAt = s.nowFunc()
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.SetArgs(ctx, s.redisKey(id), payload, redis.SetArgs{KeepTTL: true}).Err()
}

func (s *RedisStore) load(ctx context.Context, id string) (*Record, error) {
	raw, err := s.client.Get(ctx, s.redisKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &rec, nil
}
