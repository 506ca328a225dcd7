package service

import (
	"github.com/partshub/internal/models"
	"github.com/partshub/internal/repository"
)

const notificationListLimit = 50

// NotificationService 站内通知服务
type NotificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List 最新 50 条
func (s *NotificationService) List(userID uint) ([]models.Notification, error) {
	return s.repo.ListByUser(userID, notificationListLimit)
}

// MarkRead 标记本人通知已读
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	found, err := s.repo.MarkRead(notificationID, userID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead 全部已读
func (s *NotificationService) MarkAllRead(userID uint) error {
	_, err := s.repo.MarkAllRead(userID)
	return err
}

// UnreadCount 未读数量
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	return s.repo.CountUnread(userID)
}
