package analytics

import (
	"math"
	"sort"
	"time"
)

// Trend 趋势方向
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
)

const (
	// DefaultHistoryMonths 参与拟合的历史月份数（取数据中实际存在的最近 N 个月）
	DefaultHistoryMonths = 12
	// LowConfidence 历史数据不足两个月时使用的固定置信度
	LowConfidence = 0.1
	// noiseRatio 斜率小于 -noiseRatio*均值 才判定为下降
	noiseRatio = 0.01
)

// MonthTotal 历史月度汇总
type MonthTotal struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// MonthForecast 未来月度预测
type MonthForecast struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Predicted float64 `json:"predicted"`
}

// CategoryForecast 单个类别的下月预测
type CategoryForecast struct {
	Category   Category `json:"category"`
	Predicted  float64  `json:"predicted"`
	Trend      Trend    `json:"trend"`
	Confidence float64  `json:"confidence"`
	DataPoints int      `json:"data_points"`
}

// Forecast 预测结果
type Forecast struct {
	Historical []MonthTotal       `json:"historical"`
	Forecast   []MonthForecast    `json:"forecast"`
	Categories []CategoryForecast `json:"category_forecasts"`
	Trend      Trend              `json:"trend"`
	Confidence float64            `json:"confidence"`
}

type forecastOptions struct {
	historyMonths int
	now           time.Time
}

// ForecastOption 预测选项
type ForecastOption func(*forecastOptions)

// WithHistoryMonths 设置参与拟合的历史月份数，n <= 0 时忽略
func WithHistoryMonths(n int) ForecastOption {
	return func(o *forecastOptions) {
		if n > 0 {
			o.historyMonths = n
		}
	}
}

// WithReferenceTime 设置参考时间；没有任何历史数据时，预测从参考时间的下一个月开始
func WithReferenceTime(t time.Time) ForecastOption {
	return func(o *forecastOptions) {
		o.now = t
	}
}

// ComputeForecast 基于历史月度支出做线性外推
//
// 拟合方式：以历史序列下标 x=0..n-1 为自变量做最小二乘，预测第 k 个未来月取
// intercept + slope*(n-1+k)，负值截断为 0。斜率低于 -1% 均值判定为 decreasing，
// 其余（含持平）为 increasing。置信度 = min(n,W)/W * (方向一致率 + R²) / 2，W 为历史窗口月数。
// 不足两个月历史时预测为最后一个月的值（无数据则为 0），置信度为 LowConfidence。
func ComputeForecast(records []Record, monthsAhead int, opts ...ForecastOption) (*Forecast, error) {
	if monthsAhead <= 0 {
		return nil, invalidArgument("months ahead must be a positive integer, got %d", monthsAhead)
	}

	o := forecastOptions{historyMonths: DefaultHistoryMonths, now: time.Now()}
	for _, opt := range opts {
		opt(&o)
	}

	history := monthlySeries(records)
	if len(history) > o.historyMonths {
		history = history[len(history)-o.historyMonths:]
	}

	fit := fitTrend(monthValues(history), o.historyMonths)

	f := &Forecast{
		Historical: history,
		Forecast:   make([]MonthForecast, 0, monthsAhead),
		Categories: categoryForecasts(records, history, o.historyMonths),
		Trend:      fit.trend,
		Confidence: fit.confidence,
	}

	year, month := o.now.Year(), int(o.now.Month())
	if len(history) > 0 {
		last := history[len(history)-1]
		year, month = last.Year, last.Month
	}
	for k := 1; k <= monthsAhead; k++ {
		year, month = nextMonth(year, month)
		f.Forecast = append(f.Forecast, MonthForecast{
			Year:      year,
			Month:     month,
			Predicted: fit.project(k),
		})
	}

	return f, nil
}

// monthlySeries 按 (year, month) 分桶并按时间升序排列，不补空月
func monthlySeries(records []Record) []MonthTotal {
	buckets := make(map[monthKey]*MonthTotal)
	for _, r := range records {
		k := keyOf(r.Date)
		b, ok := buckets[k]
		if !ok {
			b = &MonthTotal{Year: k.year, Month: k.month}
			buckets[k] = b
		}
		b.Total += r.Amount
		b.Count++
	}

	series := make([]MonthTotal, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool {
		return monthKey{series[i].Year, series[i].Month}.before(monthKey{series[j].Year, series[j].Month})
	})
	return series
}

func monthValues(series []MonthTotal) []float64 {
	values := make([]float64, len(series))
	for i, m := range series {
		values[i] = m.Total
	}
	return values
}

// categoryForecasts 对历史窗口内出现过的每个类别单独拟合，输出下月预测
// 结果按类别枚举顺序排列。
func categoryForecasts(records []Record, history []MonthTotal, window int) []CategoryForecast {
	inWindow := make(map[monthKey]bool, len(history))
	for _, m := range history {
		inWindow[monthKey{m.Year, m.Month}] = true
	}

	byCategory := make(map[Category]map[monthKey]float64)
	for _, r := range records {
		k := keyOf(r.Date)
		if !inWindow[k] {
			continue
		}
		months, ok := byCategory[r.Category]
		if !ok {
			months = make(map[monthKey]float64)
			byCategory[r.Category] = months
		}
		months[k] += r.Amount
	}

	out := make([]CategoryForecast, 0, len(byCategory))
	for cat, months := range byCategory {
		keys := make([]monthKey, 0, len(months))
		for k := range months {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].before(keys[j]) })

		values := make([]float64, len(keys))
		for i, k := range keys {
			values[i] = months[k]
		}

		fit := fitTrend(values, window)
		out = append(out, CategoryForecast{
			Category:   cat,
			Predicted:  fit.project(1),
			Trend:      fit.trend,
			Confidence: fit.confidence,
			DataPoints: len(values),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		ci, cj := categoryIndex(out[i].Category), categoryIndex(out[j].Category)
		if ci != cj {
			// 未知类别排在枚举类别之后
			if ci < 0 {
				return false
			}
			if cj < 0 {
				return true
			}
			return ci < cj
		}
		return out[i].Category < out[j].Category
	})
	return out
}

type trendFit struct {
	n          int
	window     int
	slope      float64
	intercept  float64
	rSquared   float64
	trend      Trend
	confidence float64
}

// fitTrend 拟合序列；window 为历史窗口月数，决定置信度中的样本覆盖度
func fitTrend(values []float64, window int) trendFit {
	if window <= 0 {
		window = DefaultHistoryMonths
	}
	fit := trendFit{
		n:          len(values),
		window:     window,
		trend:      TrendIncreasing,
		confidence: LowConfidence,
	}
	if len(values) == 0 {
		return fit
	}
	if len(values) == 1 {
		fit.intercept = values[0]
		return fit
	}

	fit.slope, fit.intercept, fit.rSquared = linearRegression(values)
	if fit.slope < -noiseRatio*mean(values) {
		fit.trend = TrendDecreasing
	}
	fit.confidence = trendConfidence(values, fit)
	return fit
}

// project 返回最后一个历史点之后第 k 个月的预测值
func (f trendFit) project(k int) float64 {
	x := float64(f.n - 1 + k)
	v := f.intercept + f.slope*x
	if v < 0 {
		v = 0
	}
	return round2(v)
}

// linearRegression 以下标 x=0,1,2... 对 y 做最小二乘拟合，返回斜率、截距和 R²
func linearRegression(points []float64) (slope, intercept, rSquared float64) {
	n := float64(len(points))
	if n < 2 {
		return 0, 0, 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range points {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n, 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for i, y := range points {
		predicted := slope*float64(i) + intercept
		ssRes += (y - predicted) * (y - predicted)
		ssTot += (y - meanY) * (y - meanY)
	}
	if ssTot == 0 {
		return slope, intercept, 1
	}
	return slope, intercept, 1 - ssRes/ssTot
}

// trendConfidence 样本覆盖度 * (相邻变化与趋势方向一致的比例 + R²) / 2
// 覆盖度为 min(n, window)/window，历史填满窗口时为 1
func trendConfidence(values []float64, fit trendFit) float64 {
	n := len(values)
	if n < 2 {
		return LowConfidence
	}

	agree := 0
	for i := 1; i < n; i++ {
		delta := values[i] - values[i-1]
		if (fit.trend == TrendIncreasing && delta >= 0) || (fit.trend == TrendDecreasing && delta < 0) {
			agree++
		}
	}
	consistency := float64(agree) / float64(n-1)
	window := float64(fit.window)
	coverage := math.Min(float64(n), window) / window
	r2 := math.Max(0, math.Min(1, fit.rSquared))

	c := coverage * (consistency + r2) / 2
	return round2(math.Max(0, math.Min(1, c)))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
