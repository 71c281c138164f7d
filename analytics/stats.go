package analytics

// Total 金额合计与记录数
type Total struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// Overall 总体统计
type Overall struct {
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// Stats 统计结果
// MonthTotals 的键为自然月 1-12，不区分年份（不同年份的同一月份会合并）。
type Stats struct {
	CategoryTotals map[Category]Total `json:"category_totals"`
	MonthTotals    map[int]Total      `json:"month_totals"`
	Overall        Overall            `json:"overall"`
}

// ComputeStats 按类别、按月份汇总，并计算总额、笔数和平均值
// 空输入返回零值统计，平均值为 0。
func ComputeStats(records []Record) *Stats {
	s := &Stats{
		CategoryTotals: make(map[Category]Total),
		MonthTotals:    make(map[int]Total),
	}

	for _, r := range records {
		ct := s.CategoryTotals[r.Category]
		ct.Total += r.Amount
		ct.Count++
		s.CategoryTotals[r.Category] = ct

		month := int(r.Date.Month())
		mt := s.MonthTotals[month]
		mt.Total += r.Amount
		mt.Count++
		s.MonthTotals[month] = mt

		s.Overall.Total += r.Amount
		s.Overall.Count++
	}

	if s.Overall.Count > 0 {
		s.Overall.Average = round2(s.Overall.Total / float64(s.Overall.Count))
	}
	return s
}
