package cache

import (
	"context"
	"time"

	"github.com/partshub/internal/cart"
	"github.com/partshub/internal/logger"
)

const cartSnapshotTTL = 30 * 24 * time.Hour

// CartSnapshotStore 购物车快照的 Redis 读穿缓存，fallback 为持久层
type CartSnapshotStore struct {
	fallback cart.Persister
}

// NewCartSnapshotStore 创建快照存储；Redis 未启用时直接使用 fallback
func NewCartSnapshotStore(fallback cart.Persister) *CartSnapshotStore {
	return &CartSnapshotStore{fallback: fallback}
}

func cartSnapshotKey(key string) string {
	return "cart:" + key
}

// Load 先读 Redis，未命中再读 fallback 并回填
func (s *CartSnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	raw, hit, err := GetBytes(ctx, cartSnapshotKey(key))
	if err != nil {
		logger.Warnw("cache_cart_snapshot_get_failed", "key", key, "error", err)
	}
	if hit {
		return raw, nil
	}
	if s.fallback == nil {
		return nil, cart.ErrSnapshotNotFound
	}
	raw, err = s.fallback.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := SetBytes(ctx, cartSnapshotKey(key), raw, cartSnapshotTTL); err != nil {
		logger.Warnw("cache_cart_snapshot_backfill_failed", "key", key, "error", err)
	}
	return raw, nil
}

// Save 写入 fallback 后刷新 Redis
func (s *CartSnapshotStore) Save(ctx context.Context, key string, payload []byte) error {
	if s.fallback != nil {
		if err := s.fallback.Save(ctx, key, payload); err != nil {
			return err
		}
	}
	return SetBytes(ctx, cartSnapshotKey(key), payload, cartSnapshotTTL)
}

// Delete 同时删除两层
func (s *CartSnapshotStore) Delete(ctx context.Context, key string) error {
	if s.fallback != nil {
		if err := s.fallback.Delete(ctx, key); err != nil {
			return err
		}
	}
	return Del(ctx, cartSnapshotKey(key))
}
