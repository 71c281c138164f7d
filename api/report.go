package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spendlens/middleware"
	"spendlens/report"
	"spendlens/service"
)

// ReportHandler 报告处理器
type ReportHandler struct {
	svc *service.AnalyticsService
	now func() time.Time
}

// NewReportHandler 创建报告处理器
func NewReportHandler(svc *service.AnalyticsService) *ReportHandler {
	return &ReportHandler{svc: svc, now: time.Now}
}

// AnnualPDF 年度报告 PDF
// @Summary 年度消费报告
// @Description 生成包含类别、月度、每日活跃度和支出预测的年度 PDF 报告
// @Tags 导出
// @Produce application/pdf
// @Security BearerAuth
// @Param year query int false "年份，默认今年"
// @Success 200 {file} file "PDF 文件"
// @Failure 400 {object} Response "年份非法"
// @Failure 401 {object} Response "未授权"
// @Failure 429 {object} Response "请求过于频繁"
// @Router /api/v1/reports/pdf [get]
func (h *ReportHandler) AnnualPDF(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	now := h.now()

	year, ok := queryInt(c, "year", now.Year())
	if !ok {
		return
	}

	summary, err := h.svc.YearSummary(c.Request.Context(), userID, year, now)
	if err != nil {
		respondError(c, err, "生成报告失败")
		return
	}

	pdf, err := report.BuildAnnualPDF(report.Data{
		Year:        year,
		Owner:       middleware.GetCurrentUsername(c),
		GeneratedAt: now,
		Stats:       summary.Stats,
		Heatmap:     summary.Heatmap,
		Forecast:    summary.Forecast,
	})
	if err != nil {
		respondError(c, err, "生成报告失败")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=spendlens_%d.pdf", year))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
