package models

import (
	"time"

	"gorm.io/gorm"
)

// Part 配件表
type Part struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                      // 主键
	VendorID           uint           `gorm:"index;not null" json:"vendor_id"`                           // 商户ID
	VendorName         string         `gorm:"type:varchar(200)" json:"vendor_name"`                      // 商户名称
	Name               string         `gorm:"not null;index" json:"name"`                                // 名称
	Description        string         `gorm:"type:text" json:"description"`                              // 描述
	SKU                string         `gorm:"column:sku;type:varchar(100);index" json:"sku"`             // SKU
	Category           string         `gorm:"type:varchar(100);index" json:"category"`                   // 分类
	Price              Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`        // 单价
	Quantity           int            `gorm:"not null;default:0" json:"quantity"`                        // 库存
	ImageURL           string         `gorm:"type:varchar(500)" json:"image_url,omitempty"`              // 图片
	CompatibleVehicles StringArray    `gorm:"type:json" json:"compatible_vehicles"`                      // 适配车型
	IsAvailable        bool           `gorm:"not null;default:true;index" json:"is_available"`           // 是否上架
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt          time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (Part) TableName() string {
	return "parts"
}

// InStock 是否可购买
func (p *Part) InStock() bool {
	return p != nil && p.IsAvailable && p.Quantity > 0
}
