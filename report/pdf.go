// Package report 生成年度消费报告 PDF
//
// gofpdf 内置字体不支持中文，报告内容使用英文。
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"spendlens/analytics"
)

// Data 年度报告数据
type Data struct {
	Year        int
	Owner       string
	GeneratedAt time.Time
	Stats       *analytics.Stats
	Heatmap     *analytics.Heatmap
	Forecast    *analytics.Forecast
}

var monthNames = [...]string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var weekdayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// BuildAnnualPDF 生成年度报告
func BuildAnnualPDF(d Data) ([]byte, error) {
	if d.Stats == nil {
		return nil, fmt.Errorf("report: stats is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("SpendLens Annual Report %d", d.Year), false)
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, fmt.Sprintf("SpendLens Annual Report %d", d.Year))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	if d.Owner != "" {
		pdf.Cell(0, 6, "User: "+d.Owner)
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, "Generated: "+d.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.Ln(10)
	pdf.SetTextColor(20, 20, 20)

	overall := d.Stats.Overall
	summaryTable(pdf,
		[]string{"Total Spent", "Expenses", "Average"},
		[]string{money(overall.Total), fmt.Sprintf("%d", overall.Count), money(overall.Average)},
	)

	section(pdf, "Category Breakdown")
	header(pdf, []float64{70, 50, 30, 30}, "Category", "Amount", "Count", "%")
	pdf.SetFont("Helvetica", "", 10)
	for _, c := range analytics.Categories() {
		t, ok := d.Stats.CategoryTotals[c]
		if !ok {
			continue
		}
		percent := 0.0
		if overall.Total > 0 {
			percent = t.Total / overall.Total * 100
		}
		row(pdf, []float64{70, 50, 30, 30}, string(c), money(t.Total), fmt.Sprintf("%d", t.Count), fmt.Sprintf("%.1f%%", percent))
	}

	section(pdf, "Monthly Totals")
	header(pdf, []float64{40, 50, 30}, "Month", "Amount", "Count")
	pdf.SetFont("Helvetica", "", 10)
	for m := 1; m <= 12; m++ {
		t := d.Stats.MonthTotals[m]
		row(pdf, []float64{40, 50, 30}, monthNames[m], money(t.Total), fmt.Sprintf("%d", t.Count))
	}

	if h := d.Heatmap; h != nil {
		section(pdf, "Daily Activity")
		pdf.SetFont("Helvetica", "", 10)
		line(pdf, fmt.Sprintf("Active days: %d    Average per active day: %s", h.Summary.ActiveDays, money(h.Summary.AveragePerDay)))
		if h.Summary.ActiveDays > 0 {
			line(pdf, fmt.Sprintf("Highest day: %s (%s)", h.Summary.MaxDay.Date, money(h.Summary.MaxDay.Value)))
		}
		if len(h.Weekdays) > 0 {
			pdf.Ln(2)
			header(pdf, []float64{40, 50, 30, 40}, "Weekday", "Amount", "Count", "Average")
			pdf.SetFont("Helvetica", "", 10)
			for _, w := range h.Weekdays {
				row(pdf, []float64{40, 50, 30, 40}, weekdayNames[w.Weekday], money(w.Total), fmt.Sprintf("%d", w.Count), money(w.Average))
			}
		}
	}

	if f := d.Forecast; f != nil {
		section(pdf, "Forecast")
		pdf.SetFont("Helvetica", "", 10)
		line(pdf, fmt.Sprintf("Trend: %s    Confidence: %.0f%%", f.Trend, f.Confidence*100))
		pdf.Ln(2)
		header(pdf, []float64{40, 50}, "Month", "Predicted")
		pdf.SetFont("Helvetica", "", 10)
		for _, p := range f.Forecast {
			row(pdf, []float64{40, 50}, fmt.Sprintf("%s %d", monthNames[p.Month], p.Year), money(p.Predicted))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
}

func summaryTable(pdf *gofpdf.Fpdf, labels, values []string) {
	w := 182.0 / float64(len(labels))
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetFont("Helvetica", "B", 11)
	for i, l := range labels {
		pdf.CellFormat(w, 10, l, "1", boolInt(i == len(labels)-1), "C", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 11)
	for i, v := range values {
		pdf.CellFormat(w, 10, v, "1", boolInt(i == len(values)-1), "C", false, 0, "")
	}
}

func header(pdf *gofpdf.Fpdf, widths []float64, cols ...string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 7, col, "1", boolInt(i == len(cols)-1), "L", true, 0, "")
	}
}

func row(pdf *gofpdf.Fpdf, widths []float64, cols ...string) {
	for i, col := range cols {
		pdf.CellFormat(widths[i], 7, col, "1", boolInt(i == len(cols)-1), "L", false, 0, "")
	}
}

func line(pdf *gofpdf.Fpdf, text string) {
	pdf.Cell(0, 6, text)
	pdf.Ln(6)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
