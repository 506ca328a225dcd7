package service

import (
	"context"

	"github.com/partshub/internal/cache"
	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/models"
	"github.com/partshub/internal/orderflow"
	"github.com/partshub/internal/repository"
)

// AdminService 管理端服务
type AdminService struct {
	userRepo  repository.UserRepository
	statsRepo repository.StatsRepository
}

// NewAdminService 创建管理端服务
func NewAdminService(userRepo repository.UserRepository, statsRepo repository.StatsRepository) *AdminService {
	return &AdminService{
		userRepo:  userRepo,
		statsRepo: statsRepo,
	}
}

// ListUsers 用户列表
func (s *AdminService) ListUsers(filter repository.UserListFilter) ([]models.User, int64, error) {
	if filter.Role != "" {
		role, err := orderflow.ParseRole(filter.Role)
		if err != nil {
			return nil, 0, ErrInvalidArgument
		}
		filter.Role = string(role)
	}
	return s.userRepo.List(filter)
}

// Stats 平台统计
func (s *AdminService) Stats() (*repository.PlatformStats, error) {
	return s.statsRepo.PlatformStats()
}

// SetUserStatus 启用/停用用户，并清除其鉴权缓存
func (s *AdminService) SetUserStatus(ctx context.Context, adminID, userID uint, active bool) error {
	if adminID == userID && !active {
		return ErrCannotDeactivateSelf
	}
	found, err := s.userRepo.SetActive(userID, active)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	if err := cache.DelUserAuthState(ctx, userID); err != nil {
		logger.Warnw("auth_state_cache_invalidate_failed", "user_id", userID, "error", err)
	}
	logger.Infow("user_status_changed", "user_id", userID, "is_active", active, "admin_id", adminID)
	return nil
}
