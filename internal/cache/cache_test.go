package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/partshub/internal/cart"
	"github.com/partshub/internal/models"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	if Enabled() {
		t.Fatalf("cache should be disabled without InitRedis")
	}
	if err := SetUserAuthState(ctx, BuildUserAuthState(&models.User{ID: 3, Role: "client", IsActive: true})); err != nil {
		t.Fatalf("set on disabled cache should be noop, got %v", err)
	}
	state, hit, err := GetUserAuthState(ctx, 3)
	if err != nil || hit || state != nil {
		t.Fatalf("expected miss on disabled cache, got state=%v hit=%v err=%v", state, hit, err)
	}
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	if got := BuildKey(" auth:user:1 "); got != redisPrefix+":auth:user:1" {
		t.Fatalf("unexpected key %s", got)
	}
	if got := BuildKey(""); got != redisPrefix {
		t.Fatalf("expected bare prefix, got %s", got)
	}
}

func TestCartSnapshotStoreFallsBackWhenCacheDisabled(t *testing.T) {
	ctx := context.Background()
	backing := cart.NewMemoryPersister()
	store := NewCartSnapshotStore(backing)

	if _, err := store.Load(ctx, "client:1"); !errors.Is(err, cart.ErrSnapshotNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Save(ctx, "client:1", []byte(`{"items":[]}`)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	raw, err := store.Load(ctx, "client:1")
	if err != nil || string(raw) != `{"items":[]}` {
		t.Fatalf("expected payload from fallback, got %s err=%v", raw, err)
	}
	if err := store.Delete(ctx, "client:1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := backing.Load(ctx, "client:1"); !errors.Is(err, cart.ErrSnapshotNotFound) {
		t.Fatalf("expected fallback cleared")
	}
}

func TestBuildUserAuthState(t *testing.T) {
	state := BuildUserAuthState(&models.User{ID: 5, Role: "vendor", IsActive: false})
	if state.UserID != 5 || state.Role != "vendor" || state.IsActive {
		t.Fatalf("unexpected state %+v", state)
	}
	if BuildUserAuthState(nil) != nil {
		t.Fatalf("nil user should produce nil state")
	}
}
