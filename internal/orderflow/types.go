package orderflow

import (
	"fmt"
	"strings"

	"github.com/partshub/internal/constants"
)

// Role 用户角色（注册后不可变）
type Role string

const (
	RoleClient     Role = constants.RoleClient
	RoleVendor     Role = constants.RoleVendor
	RoleDispatcher Role = constants.RoleDispatcher
	RoleAdmin      Role = constants.RoleAdmin
)

// Roles 全部角色，按固定顺序
var Roles = []Role{RoleClient, RoleVendor, RoleDispatcher, RoleAdmin}

// ParseRole 解析角色字符串
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return role, nil
}

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleVendor, RoleDispatcher, RoleAdmin:
		return true
	}
	return false
}

// SelfRegistrable 是否允许自助注册
func (r Role) SelfRegistrable() bool {
	return r == RoleClient || r == RoleVendor || r == RoleDispatcher
}

// Status 订单状态
type Status string

const (
	StatusPending   Status = constants.OrderStatusPending
	StatusConfirmed Status = constants.OrderStatusConfirmed
	StatusPaid      Status = constants.OrderStatusPaid
	StatusAssigned  Status = constants.OrderStatusAssigned
	StatusPickedUp  Status = constants.OrderStatusPickedUp
	StatusInTransit Status = constants.OrderStatusInTransit
	StatusDelivered Status = constants.OrderStatusDelivered
	StatusCancelled Status = constants.OrderStatusCancelled
)

// Statuses 全部状态，按典型流转顺序
var Statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusPaid,
	StatusAssigned,
	StatusPickedUp,
	StatusInTransit,
	StatusDelivered,
	StatusCancelled,
}

// ParseStatus 解析订单状态
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range Statuses {
		if s == status {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// IsTerminal 终态不允许再流转
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Actor 发起操作的用户
type Actor struct {
	ID   uint
	Role Role
}

// OrderView 状态机所需的订单视图
type OrderView struct {
	ID            uint
	ClientID      uint
	Status        Status
	PaymentStatus string
	DispatcherID  *uint
	VendorIDs     []uint
}

// Assigned 是否已分配配送员
func (o OrderView) Assigned() bool {
	return o.DispatcherID != nil && *o.DispatcherID != 0
}

// AssignedTo 是否分配给指定配送员
func (o OrderView) AssignedTo(userID uint) bool {
	return o.Assigned() && *o.DispatcherID == userID
}

// HasVendor 订单是否包含该商户的配件
func (o OrderView) HasVendor(vendorID uint) bool {
	for _, id := range o.VendorIDs {
		if id == vendorID {
			return true
		}
	}
	return false
}

// Paid 支付是否已成功
func (o OrderView) Paid() bool {
	return o.PaymentStatus == constants.PaymentStatusSuccess
}
