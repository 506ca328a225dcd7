package public

import (
	handlershared "github.com/partshub/internal/http/handlers/shared"
	"github.com/partshub/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListNotifications 当前用户通知
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	notifications, err := h.NotificationService.List(userID)
	if err != nil {
		respondNotificationError(c, err)
		return
	}
	response.Success(c, notifications)
}

// UnreadNotificationCount 未读数量
func (h *Handler) UnreadNotificationCount(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	count, err := h.NotificationService.UnreadCount(userID)
	if err != nil {
		respondNotificationError(c, err)
		return
	}
	response.Success(c, gin.H{"unread_count": count})
}

// MarkNotificationRead 标记单条已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.NotificationService.MarkRead(userID, id); err != nil {
		respondNotificationError(c, err)
		return
	}
	response.SuccessWithMsg(c, "notification marked as read", nil)
}

// MarkAllNotificationsRead 全部标记已读
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.NotificationService.MarkAllRead(userID); err != nil {
		respondNotificationError(c, err)
		return
	}
	response.SuccessWithMsg(c, "all notifications marked as read", nil)
}
