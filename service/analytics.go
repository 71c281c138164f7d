package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"spendlens/analytics"
	"spendlens/config"
	"spendlens/models"
)

// dashboardMonthsAhead 看板展示的预测月数
const dashboardMonthsAhead = 3

// AnalyticsService 统计、预测、热力图与看板
type AnalyticsService struct {
	store Store
	cfg   config.AnalyticsConfig
}

// NewAnalyticsService 创建统计服务
func NewAnalyticsService(store Store, cfg config.AnalyticsConfig) *AnalyticsService {
	return &AnalyticsService{store: store, cfg: cfg}
}

// Stats 统计 [from, to] 内的消费，from/to 为 nil 表示不限
func (s *AnalyticsService) Stats(ctx context.Context, userID uint, from, to *time.Time) (*analytics.Stats, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: start date is after end date", analytics.ErrInvalidArgument)
	}
	expenses, err := s.store.ListExpenses(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeStats(models.Records(expenses)), nil
}

// Forecast 预测未来 monthsAhead 个月的支出
// now 作为没有历史数据时的参考时间
func (s *AnalyticsService) Forecast(ctx context.Context, userID uint, monthsAhead int, now time.Time) (*analytics.Forecast, error) {
	if monthsAhead <= 0 {
		return nil, fmt.Errorf("%w: months ahead must be a positive integer, got %d", analytics.ErrInvalidArgument, monthsAhead)
	}
	if s.cfg.MaxMonthsAhead > 0 && monthsAhead > s.cfg.MaxMonthsAhead {
		return nil, fmt.Errorf("%w: months ahead must not exceed %d", analytics.ErrInvalidArgument, s.cfg.MaxMonthsAhead)
	}

	expenses, err := s.store.ListExpenses(ctx, userID, nil, nil)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeForecast(models.Records(expenses), monthsAhead, s.forecastOptions(now)...)
}

func (s *AnalyticsService) forecastOptions(now time.Time) []analytics.ForecastOption {
	return []analytics.ForecastOption{
		analytics.WithHistoryMonths(s.cfg.HistoryMonths),
		analytics.WithReferenceTime(now),
	}
}

// Heatmap 生成指定年份（month 为 0 时）或月份的日历热力图
func (s *AnalyticsService) Heatmap(ctx context.Context, userID uint, year, month int) (*analytics.Heatmap, error) {
	if err := analytics.ValidatePeriod(year, month); err != nil {
		return nil, err
	}
	from, to := periodRange(year, month)
	expenses, err := s.store.ListExpenses(ctx, userID, &from, &to)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeHeatmap(models.Records(expenses), year, month)
}

// periodRange 返回周期内第一天和最后一天
func periodRange(year, month int) (time.Time, time.Time) {
	if month == 0 {
		return time.Date(year, 1, 1, 0, 0, 0, 0, time.Local), time.Date(year, 12, 31, 0, 0, 0, 0, time.Local)
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	return first, first.AddDate(0, 1, -1)
}

// GoalProgress 储蓄目标进度
type GoalProgress struct {
	models.SavingsGoal
	Progress      float64 `json:"progress"`
	Remaining     float64 `json:"remaining"`
	MonthsLeft    int     `json:"months_left"`
	MonthlyNeeded float64 `json:"monthly_needed"` // 按截止日期每月需存入的金额
}

// NewGoalProgress 计算储蓄目标进度；没有截止日期时不计算每月需存金额
func NewGoalProgress(g models.SavingsGoal, now time.Time) GoalProgress {
	p := GoalProgress{
		SavingsGoal: g,
		Progress:    roundMoney(g.Progress()),
		Remaining:   roundMoney(g.Remaining()),
	}
	if g.Deadline == nil || p.Remaining == 0 {
		return p
	}
	months := (g.Deadline.Year()-now.Year())*12 + int(g.Deadline.Month()) - int(now.Month())
	if months < 1 {
		months = 1
	}
	p.MonthsLeft = months
	p.MonthlyNeeded = roundMoney(p.Remaining / float64(months))
	return p
}

// Dashboard 首页看板
type Dashboard struct {
	Month       string              `json:"month"`
	MonthStats  *analytics.Stats    `json:"month_stats"`
	LastMonth   analytics.Overall   `json:"last_month"`
	ChangeRate  float64             `json:"change_rate"` // 本月相对上月的变化百分比
	Budgets     []BudgetProgress    `json:"budgets"`
	Goals       []GoalProgress      `json:"goals"`
	Forecast    *analytics.Forecast `json:"forecast"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// Dashboard 并发加载消费、预算和储蓄目标，汇总本月数据与未来三个月预测
func (s *AnalyticsService) Dashboard(ctx context.Context, userID uint, now time.Time) (*Dashboard, error) {
	var (
		expenses []models.Expense
		budgets  []models.Budget
		goals    []models.SavingsGoal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpenses(gctx, userID, nil, nil)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.store.ListBudgets(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = s.store.ListGoals(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := models.Records(expenses)
	thisMonth := filterMonth(records, now.Year(), now.Month())
	prev := now.AddDate(0, 0, -now.Day()+1).AddDate(0, -1, 0)
	lastMonth := filterMonth(records, prev.Year(), prev.Month())

	monthStats := analytics.ComputeStats(thisMonth)
	lastStats := analytics.ComputeStats(lastMonth)

	forecast, err := analytics.ComputeForecast(records, dashboardMonthsAhead, s.forecastOptions(now)...)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Month:       now.Format(models.YearMonthLayout),
		MonthStats:  monthStats,
		LastMonth:   lastStats.Overall,
		Budgets:     ComputeBudgetProgress(budgets, monthStats),
		Goals:       make([]GoalProgress, 0, len(goals)),
		Forecast:    forecast,
		GeneratedAt: now,
	}
	if lastStats.Overall.Total > 0 {
		d.ChangeRate = roundMoney((monthStats.Overall.Total - lastStats.Overall.Total) / lastStats.Overall.Total * 100)
	}
	for _, goal := range goals {
		d.Goals = append(d.Goals, NewGoalProgress(goal, now))
	}
	return d, nil
}

func filterMonth(records []analytics.Record, year int, month time.Month) []analytics.Record {
	out := make([]analytics.Record, 0)
	for _, r := range records {
		if r.Date.Year() == year && r.Date.Month() == month {
			out = append(out, r)
		}
	}
	return out
}

func roundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// YearSummary 年度报告所需的统计、热力图和预测
type YearSummary struct {
	Year     int                 `json:"year"`
	Stats    *analytics.Stats    `json:"stats"`
	Heatmap  *analytics.Heatmap  `json:"heatmap"`
	Forecast *analytics.Forecast `json:"forecast"`
}

// YearSummary 汇总某一年的消费；预测基于全部历史数据
func (s *AnalyticsService) YearSummary(ctx context.Context, userID uint, year int, now time.Time) (*YearSummary, error) {
	if err := analytics.ValidatePeriod(year, 0); err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, userID, nil, nil)
	if err != nil {
		return nil, err
	}
	records := models.Records(expenses)

	inYear := make([]analytics.Record, 0, len(records))
	for _, r := range records {
		if r.Date.Year() == year {
			inYear = append(inYear, r)
		}
	}

	heatmap, err := analytics.ComputeHeatmap(inYear, year, 0)
	if err != nil {
		return nil, err
	}
	monthsAhead := s.cfg.DefaultMonthsAhead
	if monthsAhead <= 0 {
		monthsAhead = dashboardMonthsAhead
	}
	forecast, err := analytics.ComputeForecast(records, monthsAhead, s.forecastOptions(now)...)
	if err != nil {
		return nil, err
	}

	return &YearSummary{
		Year:     year,
		Stats:    analytics.ComputeStats(inYear),
		Heatmap:  heatmap,
		Forecast: forecast,
	}, nil
}
