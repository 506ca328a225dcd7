package repository

import (
	"github.com/partshub/internal/constants"

	"gorm.io/gorm"
)

// StatsRepository 平台统计聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type StatsRepository interface {
	PlatformStats() (*PlatformStats, error)
}

// GormStatsRepository GORM 实现
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计仓库
func NewStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// PlatformStats 汇总用户、订单、配件与营收
func (r *GormStatsRepository) PlatformStats() (*PlatformStats, error) {
	users := NewUserRepository(r.db)
	orders := NewOrderRepository(r.db)
	parts := NewPartRepository(r.db)

	byRole, err := users.CountByRole()
	if err != nil {
		return nil, err
	}
	stats := &PlatformStats{UsersByRole: byRole}
	for _, count := range byRole {
		stats.TotalUsers += count
	}
	if stats.TotalOrders, err = orders.CountAll(); err != nil {
		return nil, err
	}
	if stats.TotalParts, err = parts.Count(); err != nil {
		return nil, err
	}
	if stats.PendingOrders, err = orders.CountByStatus(constants.OrderStatusPending); err != nil {
		return nil, err
	}
	if stats.PaidOrders, err = orders.CountPaid(); err != nil {
		return nil, err
	}
	if stats.Revenue, err = orders.SumPaidRevenue(); err != nil {
		return nil, err
	}
	return stats, nil
}
