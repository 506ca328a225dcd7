package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/partshub/internal/http/handlers/shared"
	"github.com/partshub/internal/http/response"
	"github.com/partshub/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListUsers 用户列表，支持 role / keyword 过滤
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	users, total, err := h.AdminService.ListUsers(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Role:     strings.TrimSpace(c.Query("role")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondUserError(c, err)
		return
	}
	response.SuccessWithPage(c, users, handlershared.BuildPagination(page, pageSize, total))
}

// SetUserStatus 启用/停用用户
func (h *Handler) SetUserStatus(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	userID, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	active, err := strconv.ParseBool(strings.TrimSpace(c.Query("is_active")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "is_active must be true or false", nil)
		return
	}
	if err := h.AdminService.SetUserStatus(c.Request.Context(), adminID, userID, active); err != nil {
		respondUserError(c, err)
		return
	}
	requestLog(c).Infow("admin_user_status_updated", "admin_id", adminID, "user_id", userID, "is_active", active)
	response.Success(c, gin.H{
		"user_id":   userID,
		"is_active": active,
	})
}

// GetStats 平台统计
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.AdminService.Stats()
	if err != nil {
		respondError(c, response.CodeInternal, "load stats failed", err)
		return
	}
	response.Success(c, stats)
}
