// Package cart 客户端购物车：下单前暂存所选配件，所有变更都会持久化完整快照。
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/partshub/internal/logger"

	"github.com/shopspring/decimal"
)

// ErrSnapshotNotFound 持久化存储中没有快照
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// PartRef 加入购物车时的配件引用
type PartRef struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	Price      decimal.Decimal `json:"price"`
	VendorID   uint            `json:"vendor_id"`
	VendorName string          `json:"vendor_name"`
	Image      string          `json:"image,omitempty"`
}

// Item 购物车行，同一配件最多一行
type Item struct {
	Part     PartRef `json:"part"`
	Quantity int     `json:"quantity"`
}

// Subtotal 行小计
func (i Item) Subtotal() decimal.Decimal {
	return i.Part.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Snapshot 持久化格式
type Snapshot struct {
	Items   []Item    `json:"items"`
	SavedAt time.Time `json:"saved_at"`
}

// Persister 快照的持久化存储，按会话键区分
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}

// Store 购物车，并发安全
type Store struct {
	mu        sync.RWMutex
	key       string
	items     []Item
	persister Persister
	now       func() time.Time
}

// New 创建购物车并尝试加载已有快照；快照缺失或损坏时从空购物车开始，不返回错误
func New(ctx context.Context, key string, persister Persister) *Store {
	s := &Store{
		key:       key,
		persister: persister,
		now:       time.Now,
	}
	s.load(ctx)
	return s
}

// Key 会话键
func (s *Store) Key() string {
	return s.key
}

func (s *Store) load(ctx context.Context) {
	if s.persister == nil {
		return
	}
	raw, err := s.persister.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			logger.Warnw("cart_snapshot_load_failed", "cart_key", s.key, "error", err)
		}
		return
	}
	if len(raw) == 0 {
		return
	}
	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		logger.Warnw("cart_snapshot_malformed", "cart_key", s.key, "error", err)
		return
	}
	s.items = sanitize(snapshot.Items)
}

// sanitize 丢弃非法行并合并重复配件，保证每个配件最多一行
func sanitize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if item.Part.ID == 0 || item.Quantity <= 0 {
			continue
		}
		if pos, ok := index[item.Part.ID]; ok {
			out[pos].Quantity += item.Quantity
			continue
		}
		index[item.Part.ID] = len(out)
		out = append(out, item)
	}
	return out
}

// AddItem 加入配件；已存在时累加数量。数量小于 1 时按 1 处理，库存校验由下单接口负责
func (s *Store) AddItem(ctx context.Context, part PartRef, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos := s.indexOf(part.ID); pos >= 0 {
		s.items[pos].Quantity += quantity
	} else {
		s.items = append(s.items, Item{Part: part, Quantity: quantity})
	}
	return s.persistLocked(ctx)
}

// RemoveItem 删除配件，不存在时为空操作
func (s *Store) RemoveItem(ctx context.Context, partID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := s.indexOf(partID)
	if pos < 0 {
		return nil
	}
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	return s.persistLocked(ctx)
}

// UpdateQuantity 设置数量；quantity <= 0 等价于 RemoveItem
func (s *Store) UpdateQuantity(ctx context.Context, partID uint, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, partID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := s.indexOf(partID)
	if pos < 0 {
		return nil
	}
	s.items[pos].Quantity = quantity
	return s.persistLocked(ctx)
}

// Clear 清空购物车（下单完成后调用）
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return s.persistLocked(ctx)
}

// Replace 整体替换购物车内容，非法行丢弃、重复配件合并
func (s *Store) Replace(ctx context.Context, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = sanitize(items)
	return s.persistLocked(ctx)
}

// Items 返回当前行的副本
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Total Σ(单价 × 数量)
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount Σ数量
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// IsEmpty 是否为空
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) == 0
}

func (s *Store) indexOf(partID uint) int {
	for i, item := range s.items {
		if item.Part.ID == partID {
			return i
		}
	}
	return -1
}

// persistLocked 写入完整快照；失败只记录日志并返回，内存状态不回滚
func (s *Store) persistLocked(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	payload, err := json.Marshal(Snapshot{Items: s.items, SavedAt: s.now()})
	if err != nil {
		return err
	}
	if err := s.persister.Save(ctx, s.key, payload); err != nil {
		logger.Warnw("cart_snapshot_save_failed", "cart_key", s.key, "error", err)
		return err
	}
	return nil
}
