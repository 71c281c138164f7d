package models

import (
	"time"

	"gorm.io/gorm"
)

// 储蓄目标状态
const (
	GoalStatusActive   = "active"
	GoalStatusAchieved = "achieved"
)

// SavingsGoal 储蓄目标
type SavingsGoal struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"user_id" gorm:"index;not null"`
	Name         string         `json:"name" gorm:"size:100;not null"`
	TargetAmount float64        `json:"target_amount" gorm:"type:decimal(12,2);not null"`
	SavedAmount  float64        `json:"saved_amount" gorm:"type:decimal(12,2);not null;default:0"`
	Deadline     *time.Time     `json:"deadline" gorm:"type:date"`
	Status       string         `json:"status" gorm:"size:20;default:active;index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (SavingsGoal) TableName() string {
	return "savings_goals"
}

// Progress 完成百分比，最多 100
func (g SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := g.SavedAmount / g.TargetAmount * 100
	if p > 100 {
		return 100
	}
	return p
}

// Remaining 距离目标还差的金额
func (g SavingsGoal) Remaining() float64 {
	if r := g.TargetAmount - g.SavedAmount; r > 0 {
		return r
	}
	return 0
}

// Contribute 存入金额，达到目标后标记为 achieved
func (g *SavingsGoal) Contribute(amount float64) {
	g.SavedAmount += amount
	if g.SavedAmount >= g.TargetAmount {
		g.Status = GoalStatusAchieved
	}
}
