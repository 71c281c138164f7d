package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"spendlens/config"
	"spendlens/middleware"
	"spendlens/service"
)

// AnalyticsHandler 统计分析处理器
type AnalyticsHandler struct {
	svc *service.AnalyticsService
	cfg config.AnalyticsConfig
	now func() time.Time
}

// NewAnalyticsHandler 创建统计分析处理器
func NewAnalyticsHandler(svc *service.AnalyticsService, cfg config.AnalyticsConfig) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, cfg: cfg, now: time.Now}
}

// Stats 消费统计
// @Summary 消费统计
// @Description 按类别、按自然月（1-12，跨年合并）汇总消费，并给出总额、笔数与平均值。不传日期则统计全部记录。
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=analytics.Stats} "获取成功"
// @Failure 400 {object} Response "日期格式错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/stats [get]
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	from, to, ok := parseDateRange(c, "start_date", "end_date")
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), userID, from, to)
	if err != nil {
		respondError(c, err, "统计失败")
		return
	}
	Success(c, stats)
}

// Forecast 支出预测
// @Summary 支出预测
// @Description 基于最近的月度支出做线性趋势外推，返回历史序列、未来各月预测、分类别预测以及整体趋势和置信度
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Param months query int false "预测月数" default(3)
// @Success 200 {object} Response{data=analytics.Forecast} "获取成功"
// @Failure 400 {object} Response "months 非法"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/forecast [get]
func (h *AnalyticsHandler) Forecast(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	months, ok := queryInt(c, "months", h.cfg.DefaultMonthsAhead)
	if !ok {
		return
	}

	forecast, err := h.svc.Forecast(c.Request.Context(), userID, months, h.now())
	if err != nil {
		respondError(c, err, "预测失败")
		return
	}
	Success(c, forecast)
}

// Heatmap 消费日历热力图
// @Summary 消费日历热力图
// @Description 按天汇总指定年份（不传 month）或某个月的消费，并按星期汇总
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Param year query int false "年份，默认今年"
// @Param month query int false "月份 1-12，不传则整年"
// @Success 200 {object} Response{data=analytics.Heatmap} "获取成功"
// @Failure 400 {object} Response "年份或月份非法"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/heatmap [get]
func (h *AnalyticsHandler) Heatmap(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	year, ok := queryInt(c, "year", h.now().Year())
	if !ok {
		return
	}
	month, ok := queryInt(c, "month", 0)
	if !ok {
		return
	}
	if c.Query("month") != "" && month == 0 {
		BadRequest(c, "month 必须在 1-12 之间")
		return
	}

	heatmap, err := h.svc.Heatmap(c.Request.Context(), userID, year, month)
	if err != nil {
		respondError(c, err, "生成热力图失败")
		return
	}
	Success(c, heatmap)
}

// Dashboard 首页看板
// @Summary 首页看板
// @Description 本月统计、与上月对比、预算执行情况、储蓄目标进度和未来三个月预测
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.Dashboard} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	d, err := h.svc.Dashboard(c.Request.Context(), userID, h.now())
	if err != nil {
		respondError(c, err, "获取看板数据失败")
		return
	}
	Success(c, d)
}
