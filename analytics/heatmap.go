package analytics

import "sort"

const dateLayout = "2006-01-02"

// HeatmapDay 单日汇总
type HeatmapDay struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// WeekdayTotal 星期汇总，Weekday 0 为周日
type WeekdayTotal struct {
	Weekday int     `json:"weekday"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// DayValue 日期与金额
type DayValue struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// HeatmapSummary 热力图汇总
type HeatmapSummary struct {
	MaxDay        DayValue `json:"max_day"`
	TotalSpent    float64  `json:"total_spent"`
	ActiveDays    int      `json:"active_days"`
	AveragePerDay float64  `json:"average_per_day"`
}

// Heatmap 日历热力图
type Heatmap struct {
	Year     int            `json:"year"`
	Month    int            `json:"month,omitempty"`
	Days     []HeatmapDay   `json:"days"`
	Weekdays []WeekdayTotal `json:"weekdays"`
	Summary  HeatmapSummary `json:"summary"`
}

// ComputeHeatmap 按日汇总指定年份（month 为 0 时整年，否则仅该月）的消费
//
// Days 按日期升序；Weekdays 只包含有消费的星期，按 0-6 排列。
// 最高消费日取金额最大的一天，金额相同取日期最早的一天。
func ComputeHeatmap(records []Record, year, month int) (*Heatmap, error) {
	if err := ValidatePeriod(year, month); err != nil {
		return nil, err
	}

	days := make(map[string]*HeatmapDay)
	var weekdays [7]WeekdayTotal
	var total float64

	for _, r := range records {
		if r.Date.Year() != year {
			continue
		}
		if month != 0 && int(r.Date.Month()) != month {
			continue
		}

		key := r.Date.Format(dateLayout)
		d, ok := days[key]
		if !ok {
			d = &HeatmapDay{Date: key}
			days[key] = d
		}
		d.Value += r.Amount
		d.Count++

		wd := int(r.Date.Weekday())
		weekdays[wd].Total += r.Amount
		weekdays[wd].Count++

		total += r.Amount
	}

	h := &Heatmap{
		Year:     year,
		Month:    month,
		Days:     make([]HeatmapDay, 0, len(days)),
		Weekdays: make([]WeekdayTotal, 0, len(weekdays)),
	}

	for _, d := range days {
		h.Days = append(h.Days, *d)
	}
	sort.Slice(h.Days, func(i, j int) bool { return h.Days[i].Date < h.Days[j].Date })

	for i, d := range h.Days {
		if i == 0 || d.Value > h.Summary.MaxDay.Value {
			h.Summary.MaxDay = DayValue{Date: d.Date, Value: d.Value}
		}
	}

	for i := range weekdays {
		w := weekdays[i]
		if w.Count == 0 {
			continue
		}
		w.Weekday = i
		w.Average = round2(w.Total / float64(w.Count))
		h.Weekdays = append(h.Weekdays, w)
	}

	h.Summary.TotalSpent = total
	h.Summary.ActiveDays = len(h.Days)
	if h.Summary.ActiveDays > 0 {
		h.Summary.AveragePerDay = round2(total / float64(h.Summary.ActiveDays))
	}

	return h, nil
}

// ValidatePeriod 校验热力图周期：年份为四位数，month 为 0（整年）或 1-12
func ValidatePeriod(year, month int) error {
	if year < 1000 || year > 9999 {
		return invalidArgument("year must be a four-digit number, got %d", year)
	}
	if month < 0 || month > 12 {
		return invalidArgument("month must be between 1 and 12, got %d", month)
	}
	return nil
}
