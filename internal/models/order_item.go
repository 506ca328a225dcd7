package models

import (
	"time"
)

// OrderItem 订单项表
type OrderItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`                               // 主键
	OrderID    uint      `gorm:"index;not null" json:"order_id"`                     // 订单ID
	PartID     uint      `gorm:"index;not null" json:"part_id"`                      // 配件ID
	PartName   string    `gorm:"not null" json:"part_name"`                          // 配件名称快照
	PartSKU    string    `gorm:"column:part_sku;type:varchar(100)" json:"part_sku"`  // SKU 快照
	VendorID   uint      `gorm:"index;not null" json:"vendor_id"`                    // 商户ID
	VendorName string    `gorm:"type:varchar(200)" json:"vendor_name"`               // 商户名称快照
	Quantity   int       `gorm:"not null" json:"quantity"`                           // 数量
	UnitPrice  Money     `gorm:"type:decimal(20,2);not null" json:"unit_price"`      // 单价
	TotalPrice Money     `gorm:"type:decimal(20,2);not null" json:"total_price"`     // 小计 = 单价 × 数量
	CreatedAt  time.Time `json:"created_at"`                                         // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
