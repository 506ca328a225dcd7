package repository

import (
	"time"

	"github.com/partshub/internal/models"

	"gorm.io/gorm"
)

const defaultNotificationLimit = 50

// NotificationRepository 站内通知数据访问接口
type NotificationRepository interface {
	Create(notification *models.Notification) error
	CreateBatch(notifications []models.Notification) error
	ListByUser(userID uint, limit int) ([]models.Notification, error)
	MarkRead(id uint, userID uint) (bool, error)
	MarkAllRead(userID uint) (int64, error)
	CountUnread(userID uint) (int64, error)
	DeleteReadBefore(before time.Time) (int64, error)
}

// GormNotificationRepository GORM 实现
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormNotificationRepository) WithTx(tx *gorm.DB) *GormNotificationRepository {
	if tx == nil {
		return r
	}
	return &GormNotificationRepository{db: tx}
}

// Create 创建通知
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// CreateBatch 批量创建通知
func (r *GormNotificationRepository) CreateBatch(notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.Create(&notifications).Error
}

// ListByUser 用户的通知，最新在前
func (r *GormNotificationRepository) ListByUser(userID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	var notifications []models.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead 标记单条已读，仅限本人的通知
func (r *GormNotificationRepository) MarkRead(id uint, userID uint) (bool, error) {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}
	// 已读通知重复标记时 RowsAffected 可能为 0
	var count int64
	if err := r.db.Model(&models.Notification{}).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkAllRead 标记全部已读
func (r *GormNotificationRepository) MarkAllRead(userID uint) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// CountUnread 未读数量
func (r *GormNotificationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&count).Error
	return count, err
}

// DeleteReadBefore 清理早于指定时间的已读通知
func (r *GormNotificationRepository) DeleteReadBefore(before time.Time) (int64, error) {
	result := r.db.Where("is_read = ? AND created_at < ?", true, before).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
