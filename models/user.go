package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户模型
// 账号由外部身份服务管理，这里只保存令牌中的用户信息，供记录归属和邮件提醒使用
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Username  string         `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email     string         `json:"email" gorm:"size:100"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}
