package models

import (
	"time"
)

// Payment 支付记录
type Payment struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                  // 主键
	OrderID          uint       `gorm:"index;not null" json:"order_id"`                        // 订单ID
	UserID           uint       `gorm:"index;not null" json:"user_id"`                         // 付款用户ID
	Email            string     `gorm:"type:varchar(200)" json:"email"`                        // 付款邮箱
	Reference        string     `gorm:"uniqueIndex;type:varchar(120);not null" json:"reference"` // 支付流水号
	AccessCode       string     `gorm:"type:varchar(120)" json:"access_code,omitempty"`        // Paystack access_code
	AuthorizationURL string     `gorm:"type:text" json:"authorization_url"`                    // 支付跳转地址
	Amount           Money      `gorm:"type:decimal(20,2);not null" json:"amount"`             // 金额
	Currency         string     `gorm:"type:varchar(10);not null" json:"currency"`             // 币种
	Status           string     `gorm:"index;not null" json:"status"`                          // 支付状态
	Mock             bool       `gorm:"not null;default:false" json:"mock"`                    // 是否模拟支付
	ProviderPayload  JSON       `gorm:"type:json" json:"-"`                                    // 第三方原始数据
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`                                 // 核验时间
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt        time.Time  `json:"updated_at"`                                            // 更新时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
