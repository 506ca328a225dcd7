package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`                             // 主键
	FullName     string         `gorm:"not null" json:"full_name"`                        // 姓名
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`                // 邮箱（小写）
	Phone        string         `gorm:"type:varchar(32)" json:"phone"`                    // 手机号（+234）
	PasswordHash string         `gorm:"not null" json:"-"`                                // 密码哈希
	Role         string         `gorm:"type:varchar(20);index;not null" json:"role"`      // 角色
	Address      string         `gorm:"type:text" json:"address,omitempty"`               // 地址
	BusinessName string         `gorm:"type:varchar(200)" json:"business_name,omitempty"` // 商户名称（仅 vendor）
	IsActive     bool           `gorm:"not null;default:true;index" json:"is_active"`     // 是否启用
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`                          // 最后登录时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                          // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                       // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                   // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// DisplayName 对外展示名称，vendor 优先使用商户名
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.BusinessName != "" {
		return u.BusinessName
	}
	return u.FullName
}
