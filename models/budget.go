package models

import (
	"time"

	"gorm.io/gorm"

	"spendlens/analytics"
)

// YearMonthLayout 年月格式
const YearMonthLayout = "2006-01"

// Budget 月度预算
// Category 为空表示总预算
type Budget struct {
	ID               uint               `json:"id" gorm:"primaryKey"`
	UserID           uint               `json:"user_id" gorm:"uniqueIndex:idx_budget_user_category;not null"`
	Category         analytics.Category `json:"category" gorm:"uniqueIndex:idx_budget_user_category;size:20;not null;default:''"`
	Amount           float64            `json:"amount" gorm:"type:decimal(12,2);not null"`
	AlertEnabled     bool               `json:"alert_enabled" gorm:"default:true"`
	LastAlertedMonth string             `json:"last_alerted_month" gorm:"size:7;default:''"` // 最近一次提醒的月份，如 2024-01
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	DeletedAt        gorm.DeletedAt     `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}

// IsOverall 是否为总预算
func (b Budget) IsOverall() bool {
	return b.Category == ""
}

// Covers 预算是否覆盖该类别的消费
func (b Budget) Covers(c analytics.Category) bool {
	return b.IsOverall() || b.Category == c
}
