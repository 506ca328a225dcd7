package repository

import (
	"github.com/shopspring/decimal"
)

// PartListFilter 查询配件列表的过滤条件
type PartListFilter struct {
	Page          int
	PageSize      int
	Category      string
	Search        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	VendorID      uint
	AvailableOnly bool
}

// OrderScope 订单可见范围，按角色决定
type OrderScope struct {
	Role   string
	UserID uint
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Scope  OrderScope
	Status string
	Limit  int
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Role     string
	Keyword  string
}

// PlatformStats 平台统计
type PlatformStats struct {
	TotalUsers    int64            `json:"total_users"`
	TotalOrders   int64            `json:"total_orders"`
	TotalParts    int64            `json:"total_parts"`
	PendingOrders int64            `json:"pending_orders"`
	PaidOrders    int64            `json:"paid_orders"`
	Revenue       decimal.Decimal  `json:"revenue"`
	UsersByRole   map[string]int64 `json:"users_by_role"`
}
