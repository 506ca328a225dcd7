package repository

import (
	"context"
	"errors"
	"time"

	"github.com/partshub/internal/cart"
	"github.com/partshub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartSnapshotRepository 购物车快照的数据库存储，实现 cart.Persister
type GormCartSnapshotRepository struct {
	db *gorm.DB
}

// NewCartSnapshotRepository 创建购物车快照仓库
func NewCartSnapshotRepository(db *gorm.DB) *GormCartSnapshotRepository {
	return &GormCartSnapshotRepository{db: db}
}

// Load 读取快照，不存在时返回 cart.ErrSnapshotNotFound
func (r *GormCartSnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var snapshot models.CartSnapshot
	if err := r.db.WithContext(ctx).Where("session_key = ?", key).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrSnapshotNotFound
		}
		return nil, err
	}
	return []byte(snapshot.Payload), nil
}

// Save 覆盖写入快照
func (r *GormCartSnapshotRepository) Save(ctx context.Context, key string, payload []byte) error {
	snapshot := models.CartSnapshot{
		SessionKey: key,
		Payload:    string(payload),
		UpdatedAt:  time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&snapshot).Error
}

// Delete 删除快照
func (r *GormCartSnapshotRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("session_key = ?", key).Delete(&models.CartSnapshot{}).Error
}
