package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                     // 主键
	ClientID         uint           `gorm:"index;not null" json:"client_id"`                          // 下单客户ID
	ClientName       string         `gorm:"type:varchar(200)" json:"client_name"`                     // 客户姓名
	DeliveryAddress  string         `gorm:"type:text;not null" json:"delivery_address"`               // 收货地址
	DeliveryPhone    string         `gorm:"type:varchar(32);not null" json:"delivery_phone"`          // 收货电话
	Notes            string         `gorm:"type:text" json:"notes,omitempty"`                         // 备注
	Status           string         `gorm:"index;not null" json:"status"`                             // 订单状态
	PaymentStatus    string         `gorm:"index;not null" json:"payment_status"`                     // 支付状态
	PaymentReference string         `gorm:"type:varchar(120);index" json:"payment_reference,omitempty"` // 支付流水号
	DispatcherID     *uint          `gorm:"index" json:"dispatcher_id,omitempty"`                     // 配送员ID
	DispatcherName   string         `gorm:"type:varchar(200)" json:"dispatcher_name,omitempty"`       // 配送员姓名
	TotalAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 订单总额（创建后不可变）
	PaidAt           *time.Time     `gorm:"index" json:"paid_at,omitempty"`                           // 支付时间
	CancelledAt      *time.Time     `json:"cancelled_at,omitempty"`                                   // 取消时间
	DeliveredAt      *time.Time     `json:"delivered_at,omitempty"`                                   // 送达时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// VendorIDs 返回订单涉及的商户（按首次出现顺序去重）
func (o *Order) VendorIDs() []uint {
	if o == nil {
		return nil
	}
	seen := make(map[uint]struct{}, len(o.Items))
	ids := make([]uint, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.VendorID]; ok {
			continue
		}
		seen[item.VendorID] = struct{}{}
		ids = append(ids, item.VendorID)
	}
	return ids
}
