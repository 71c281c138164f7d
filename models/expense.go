package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"

	"spendlens/analytics"
)

// DateLayout 消费日期格式
const DateLayout = "2006-01-02"

// Expense 消费记录模型
type Expense struct {
	ID          uint               `json:"id" gorm:"primaryKey"`
	UserID      uint               `json:"user_id" gorm:"index:idx_expense_user_date,priority:1;not null"`
	Amount      float64            `json:"amount" gorm:"type:decimal(12,2);not null"`
	Category    analytics.Category `json:"category" gorm:"size:20;not null;index"`
	Description string             `json:"description" gorm:"size:255"`
	Date        time.Time          `json:"date" gorm:"type:date;not null;index:idx_expense_user_date,priority:2"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	DeletedAt   gorm.DeletedAt     `json:"-" gorm:"index"`
	User        User               `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}

// Record 转换为统计引擎的输入记录
func (e Expense) Record() analytics.Record {
	return analytics.Record{
		ID:       strconv.FormatUint(uint64(e.ID), 10),
		UserID:   e.UserID,
		Amount:   e.Amount,
		Category: e.Category,
		Date:     time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// Records 批量转换
func Records(expenses []Expense) []analytics.Record {
	out := make([]analytics.Record, len(expenses))
	for i, e := range expenses {
		out[i] = e.Record()
	}
	return out
}
