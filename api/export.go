package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"spendlens/analytics"
	"spendlens/database"
	"spendlens/middleware"
	"spendlens/models"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// exportRange 导出的日期范围
type exportRange struct {
	Start string
	End   string
}

// loadExpenses 按必填的 start_date/end_date 查询当前用户的消费记录
func loadExpenses(c *gin.Context) ([]models.Expense, exportRange, bool) {
	userID := middleware.GetCurrentUserID(c)

	rng := exportRange{Start: c.Query("start_date"), End: c.Query("end_date")}
	if rng.Start == "" || rng.End == "" {
		BadRequest(c, "请提供开始日期和结束日期")
		return nil, rng, false
	}
	from, to, ok := parseDateRange(c, "start_date", "end_date")
	if !ok {
		return nil, rng, false
	}

	var expenses []models.Expense
	if err := database.DB.Where("user_id = ? AND date >= ? AND date <= ?",
		userID, from.Format(models.DateLayout), to.Format(models.DateLayout)).
		Order("date DESC, id DESC").
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return nil, rng, false
	}
	return expenses, rng, true
}

// ExportCSV 导出消费记录为 CSV
// @Summary 导出消费记录
// @Description 根据日期范围导出消费记录为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2024-01-01)"
// @Param end_date query string true "结束日期 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 429 {object} Response "请求过于频繁"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	expenses, rng, ok := loadExpenses(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)
	headers := []string{"ID", "日期", "类别", "金额", "描述", "创建时间"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}
	for _, e := range expenses {
		row := []string{
			fmt.Sprintf("%d", e.ID),
			e.Date.Format(models.DateLayout),
			string(e.Category),
			fmt.Sprintf("%.2f", e.Amount),
			e.Description,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("expenses_%s_%s.csv", rng.Start, rng.End)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出消费记录为 JSON
// @Summary 导出消费记录为 JSON
// @Description 根据日期范围导出消费记录及统计
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2024-01-01)"
// @Param end_date query string true "结束日期 (2024-12-31)"
// @Success 200 {object} Response "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 429 {object} Response "请求过于频繁"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	expenses, rng, ok := loadExpenses(c)
	if !ok {
		return
	}

	Success(c, gin.H{
		"start_date": rng.Start,
		"end_date":   rng.End,
		"stats":      analytics.ComputeStats(models.Records(expenses)),
		"expenses":   expenses,
	})
}

// ExportExcel 导出 Excel
// @Summary 导出消费记录为 Excel
// @Description 导出两个工作表：消费记录明细和按类别/月份的统计
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2024-01-01)"
// @Param end_date query string true "结束日期 (2024-12-31)"
// @Success 200 {file} file "Excel文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 429 {object} Response "请求过于频繁"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	expenses, rng, ok := loadExpenses(c)
	if !ok {
		return
	}

	f, err := buildWorkbook(expenses)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}

	filename := fmt.Sprintf("expenses_%s_%s.xlsx", rng.Start, rng.End)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

const (
	sheetRecords = "消费记录"
	sheetStats   = "统计"
)

var cellBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
}

type workbookStyles struct {
	header, data, summary int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorder,
	}); err != nil {
		return s, err
	}
	if s.data, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorder,
	}); err != nil {
		return s, err
	}
	s.summary, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorder,
	})
	return s, err
}

// buildWorkbook 生成明细和统计两个工作表
func buildWorkbook(expenses []models.Expense) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetRecords); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(sheetStats); err != nil {
		f.Close()
		return nil, err
	}
	styles, err := newWorkbookStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	writeRecordsSheet(f, styles, expenses)
	writeStatsSheet(f, styles, analytics.ComputeStats(models.Records(expenses)))
	return f, nil
}

func writeRecordsSheet(f *excelize.File, st workbookStyles, expenses []models.Expense) {
	sheet := sheetRecords
	for col, width := range map[string]float64{"A": 10, "B": 14, "C": 16, "D": 14, "E": 30} {
		f.SetColWidth(sheet, col, col, width)
	}

	headers := []string{"ID", "日期", "类别", "金额", "描述"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	f.SetCellStyle(sheet, "A1", "E1", st.header)

	var total float64
	for i, e := range expenses {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.Date.Format(models.DateLayout))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), string(e.Category))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), e.Amount)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), e.Description)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), st.data)
		total += e.Amount
	}

	summaryRow := len(expenses) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "合计")
	f.MergeCell(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("C%d", summaryRow))
	f.SetCellValue(sheet, fmt.Sprintf("D%d", summaryRow), total)
	f.SetCellValue(sheet, fmt.Sprintf("E%d", summaryRow), fmt.Sprintf("共 %d 条记录", len(expenses)))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("E%d", summaryRow), st.summary)
}

func writeStatsSheet(f *excelize.File, st workbookStyles, stats *analytics.Stats) {
	sheet := sheetStats
	f.SetColWidth(sheet, "A", "A", 16)
	f.SetColWidth(sheet, "B", "D", 14)

	for i, h := range []string{"类别", "金额", "笔数", "占比"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A1", "D1", st.header)

	row := 2
	for _, cat := range analytics.Categories() {
		t, ok := stats.CategoryTotals[cat]
		if !ok {
			continue
		}
		share := 0.0
		if stats.Overall.Total > 0 {
			share = t.Total / stats.Overall.Total
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), string(cat))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), t.Total)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), t.Count)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), fmt.Sprintf("%.1f%%", share*100))
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), st.data)
		row++
	}
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "合计")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), stats.Overall.Total)
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), stats.Overall.Count)
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), fmt.Sprintf("平均 %.2f", stats.Overall.Average))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), st.summary)

	row += 2
	for i, h := range []string{"月份", "金额", "笔数"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), st.header)
	for m := 1; m <= 12; m++ {
		row++
		t := stats.MonthTotals[m]
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%d 月", m))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), t.Total)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), t.Count)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), st.data)
	}
}
