package models

import "time"

// CartSnapshot 购物车快照（按会话键保存完整 JSON）
type CartSnapshot struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	SessionKey string    `gorm:"uniqueIndex;type:varchar(191);not null" json:"session_key"`
	Payload    string    `gorm:"type:text;not null" json:"payload"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 指定表名
func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
