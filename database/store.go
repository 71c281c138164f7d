package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"spendlens/models"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// Store 统计服务使用的只读查询和预算提醒状态更新
type Store struct {
	db *gorm.DB
}

// NewStore 创建 Store；db 为 nil 时使用全局连接
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	db := s.db
	if db == nil {
		db = DB
	}
	return db.WithContext(ctx)
}

// ListExpenses 查询用户在 [from, to] 日期范围内的消费记录，from/to 为 nil 表示不限
func (s *Store) ListExpenses(ctx context.Context, userID uint, from, to *time.Time) ([]models.Expense, error) {
	query := s.conn(ctx).Where("user_id = ?", userID)
	if from != nil {
		query = query.Where("date >= ?", from.Format(models.DateLayout))
	}
	if to != nil {
		query = query.Where("date <= ?", to.Format(models.DateLayout))
	}

	var expenses []models.Expense
	if err := query.Order("date ASC, id ASC").Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("查询消费记录失败: %w", err)
	}
	return expenses, nil
}

// ListBudgets 查询用户的全部预算
func (s *Store) ListBudgets(ctx context.Context, userID uint) ([]models.Budget, error) {
	var budgets []models.Budget
	if err := s.conn(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&budgets).Error; err != nil {
		return nil, fmt.Errorf("查询预算失败: %w", err)
	}
	return budgets, nil
}

// ListGoals 查询用户的储蓄目标
func (s *Store) ListGoals(ctx context.Context, userID uint) ([]models.SavingsGoal, error) {
	var goals []models.SavingsGoal
	if err := s.conn(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("查询储蓄目标失败: %w", err)
	}
	return goals, nil
}

// GetUser 查询用户
func (s *Store) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// MarkBudgetAlerted 记录预算已在 month（2006-01）发送过提醒
func (s *Store) MarkBudgetAlerted(ctx context.Context, budgetID uint, month string) error {
	res := s.conn(ctx).Model(&models.Budget{}).
		Where("id = ?", budgetID).
		Update("last_alerted_month", month)
	if res.Error != nil {
		return fmt.Errorf("更新预算提醒状态失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
