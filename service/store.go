package service

import (
	"context"
	"time"

	"spendlens/models"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=service

// Store 统计服务依赖的数据访问接口，由 database.Store 实现
type Store interface {
	ListExpenses(ctx context.Context, userID uint, from, to *time.Time) ([]models.Expense, error)
	ListBudgets(ctx context.Context, userID uint) ([]models.Budget, error)
	ListGoals(ctx context.Context, userID uint) ([]models.SavingsGoal, error)
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	MarkBudgetAlerted(ctx context.Context, budgetID uint, month string) error
}
