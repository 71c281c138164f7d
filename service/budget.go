package service

import (
	"context"
	"errors"
	"time"

	"spendlens/analytics"
	"spendlens/database"
	"spendlens/logger"
	"spendlens/models"
)

// BudgetProgress 预算执行情况
type BudgetProgress struct {
	BudgetID  uint               `json:"budget_id"`
	Category  analytics.Category `json:"category"` // 空表示总预算
	Limit     float64            `json:"limit"`
	Spent     float64            `json:"spent"`
	Remaining float64            `json:"remaining"`
	Percent   float64            `json:"percent"`
	Exceeded  bool               `json:"exceeded"`
}

// ComputeBudgetProgress 根据某个月的统计结果计算各预算的执行情况
func ComputeBudgetProgress(budgets []models.Budget, monthStats *analytics.Stats) []BudgetProgress {
	out := make([]BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		spent := monthStats.Overall.Total
		if !b.IsOverall() {
			spent = monthStats.CategoryTotals[b.Category].Total
		}
		p := BudgetProgress{
			BudgetID: b.ID,
			Category: b.Category,
			Limit:    b.Amount,
			Spent:    roundMoney(spent),
			Exceeded: spent > b.Amount,
		}
		if rem := b.Amount - spent; rem > 0 {
			p.Remaining = roundMoney(rem)
		}
		if b.Amount > 0 {
			p.Percent = roundMoney(spent / b.Amount * 100)
		}
		out = append(out, p)
	}
	return out
}

// BudgetProgress 计算指定月份的预算执行情况
func (s *AnalyticsService) BudgetProgress(ctx context.Context, userID uint, year int, month time.Month) ([]BudgetProgress, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := monthStats(ctx, s.store, userID, year, month)
	if err != nil {
		return nil, err
	}
	return ComputeBudgetProgress(budgets, stats), nil
}

func monthStats(ctx context.Context, store Store, userID uint, year int, month time.Month) (*analytics.Stats, error) {
	from, to := periodRange(year, int(month))
	expenses, err := store.ListExpenses(ctx, userID, &from, &to)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeStats(models.Records(expenses)), nil
}

// BudgetAlert 预算超支提醒内容
type BudgetAlert struct {
	Month    string
	Category analytics.Category
	Limit    float64
	Spent    float64
	Percent  float64
}

// Mailer 预算提醒邮件发送
type Mailer interface {
	Enabled() bool
	SendBudgetAlert(to, username string, alert BudgetAlert) error
}

// BudgetAlerter 新增消费后检查预算，超支时发送邮件提醒
// 同一预算每月只提醒一次
type BudgetAlerter struct {
	store  Store
	mailer Mailer
}

// NewBudgetAlerter 创建预算提醒
func NewBudgetAlerter(store Store, mailer Mailer) *BudgetAlerter {
	return &BudgetAlerter{store: store, mailer: mailer}
}

// Check 检查消费所在月份中覆盖该类别的预算，返回本次发送的提醒数量
func (a *BudgetAlerter) Check(ctx context.Context, userID uint, category analytics.Category, date time.Time) (int, error) {
	if a == nil || a.mailer == nil || !a.mailer.Enabled() {
		return 0, nil
	}
	log := logger.FromContext(ctx)
	month := date.Format(models.YearMonthLayout)

	budgets, err := a.store.ListBudgets(ctx, userID)
	if err != nil {
		return 0, err
	}
	relevant := make([]models.Budget, 0, len(budgets))
	for _, b := range budgets {
		if b.AlertEnabled && b.Covers(category) && b.LastAlertedMonth != month {
			relevant = append(relevant, b)
		}
	}
	if len(relevant) == 0 {
		return 0, nil
	}

	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if user.Email == "" {
		log.Debug().Uint("user_id", userID).Msg("用户未设置邮箱，跳过预算提醒")
		return 0, nil
	}

	stats, err := monthStats(ctx, a.store, userID, date.Year(), date.Month())
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, p := range ComputeBudgetProgress(relevant, stats) {
		if !p.Exceeded {
			continue
		}
		alert := BudgetAlert{Month: month, Category: p.Category, Limit: p.Limit, Spent: p.Spent, Percent: p.Percent}
		if err := a.mailer.SendBudgetAlert(user.Email, user.Username, alert); err != nil {
			log.Error().Err(err).Uint("budget_id", p.BudgetID).Msg("发送预算提醒失败")
			continue
		}
		if err := a.store.MarkBudgetAlerted(ctx, p.BudgetID, month); err != nil {
			log.Error().Err(err).Uint("budget_id", p.BudgetID).Msg("更新预算提醒状态失败")
		}
		sent++
	}
	return sent, nil
}
