package apiclient

import (
	"github.com/partshub/internal/models"
	"github.com/partshub/internal/orderflow"

	"github.com/shopspring/decimal"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	BusinessName string `json:"business_name,omitempty"`
	Address      string `json:"address,omitempty"`
}

// AuthResult 注册/登录结果
type AuthResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        models.User `json:"user"`
}

// PartFilter 配件查询条件
type PartFilter struct {
	Category      string
	Search        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	VendorID      uint
	AvailableOnly *bool
	Page          int
	PageSize      int
}

// PartInput 新建配件
type PartInput struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	Price              decimal.Decimal `json:"price"`
	Quantity           int             `json:"quantity"`
	SKU                string          `json:"sku"`
	ImageURL           string          `json:"image_url,omitempty"`
	CompatibleVehicles []string        `json:"compatible_vehicles,omitempty"`
}

// PartPatch 修改配件，nil 字段保持不变
type PartPatch struct {
	Name               *string          `json:"name,omitempty"`
	Description        *string          `json:"description,omitempty"`
	Category           *string          `json:"category,omitempty"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	Quantity           *int             `json:"quantity,omitempty"`
	ImageURL           *string          `json:"image_url,omitempty"`
	CompatibleVehicles []string         `json:"compatible_vehicles,omitempty"`
	IsAvailable        *bool            `json:"is_available,omitempty"`
}

// OrderDetail 订单详情及当前用户可执行的操作
type OrderDetail struct {
	models.Order
	Actions []orderflow.Action `json:"actions"`
}

// PaymentInitResult 支付初始化结果
type PaymentInitResult struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	AccessCode       string `json:"access_code"`
	Mock             bool   `json:"mock"`
}

// PaymentVerifyResult 支付核验结果
type PaymentVerifyResult struct {
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	OrderID       uint   `json:"order_id"`
	OrderStatus   string `json:"order_status"`
	PaymentStatus string `json:"payment_status"`
}

// Stats 管理端统计
type Stats struct {
	TotalUsers    int64            `json:"total_users"`
	TotalOrders   int64            `json:"total_orders"`
	TotalParts    int64            `json:"total_parts"`
	PendingOrders int64            `json:"pending_orders"`
	PaidOrders    int64            `json:"paid_orders"`
	Revenue       decimal.Decimal  `json:"revenue"`
	UsersByRole   map[string]int64 `json:"users_by_role"`
}
