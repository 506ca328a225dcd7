package models

import "time"

// DispatcherLocation 配送员实时位置，每个配送员仅保留最新一条
type DispatcherLocation struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	UserName  string    `gorm:"type:varchar(200)" json:"user_name"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

// TableName 指定表名
func (DispatcherLocation) TableName() string {
	return "dispatcher_locations"
}
