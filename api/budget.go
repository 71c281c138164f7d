package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"spendlens/analytics"
	"spendlens/database"
	"spendlens/middleware"
	"spendlens/models"
	"spendlens/service"
)

// BudgetHandler 预算处理器
type BudgetHandler struct {
	svc *service.AnalyticsService
	now func() time.Time
}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler(svc *service.AnalyticsService) *BudgetHandler {
	return &BudgetHandler{svc: svc, now: time.Now}
}

// CreateBudgetRequest 创建预算请求；category 为空表示总预算
type CreateBudgetRequest struct {
	Category     string  `json:"category" example:"Food"`
	Amount       float64 `json:"amount" binding:"required,gt=0" example:"1500"`
	AlertEnabled *bool   `json:"alert_enabled" example:"true"`
}

// UpdateBudgetRequest 更新预算请求
type UpdateBudgetRequest struct {
	Amount       *float64 `json:"amount" binding:"omitempty,gt=0" example:"2000"`
	AlertEnabled *bool    `json:"alert_enabled" example:"false"`
}

// Create 创建预算
// @Summary 创建月度预算
// @Description 为某个类别或全部消费（category 为空）设置月度预算，每个类别只能有一条
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "创建成功"
// @Failure 400 {object} Response "请求参数错误或预算已存在"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var category analytics.Category
	if req.Category != "" {
		var err error
		if category, err = analytics.ParseCategory(req.Category); err != nil {
			BadRequest(c, "无效的消费类别: "+req.Category)
			return
		}
	}

	var existing models.Budget
	err := database.DB.Where("user_id = ? AND category = ?", userID, category).First(&existing).Error
	if err == nil {
		BadRequest(c, "该类别的预算已存在")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	budget := models.Budget{
		UserID:       userID,
		Category:     category,
		Amount:       req.Amount,
		AlertEnabled: req.AlertEnabled == nil || *req.AlertEnabled,
	}
	if err := database.DB.Create(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建预算失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", budget)
}

// List 获取预算列表
// @Summary 获取预算列表
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Budget} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var budgets []models.Budget
	if err := database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&budgets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, budgets)
}

// Update 更新预算
// @Summary 更新预算
// @Description 修改额度后会重置本月的提醒状态
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Param request body UpdateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [put]
func (h *BudgetHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Amount != nil {
		updates["amount"] = *req.Amount
		updates["last_alerted_month"] = ""
	}
	if req.AlertEnabled != nil {
		updates["alert_enabled"] = *req.AlertEnabled
	}
	if len(updates) == 0 {
		BadRequest(c, "没有需要更新的字段")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}
	if err := database.DB.Model(&budget).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", budget)
}

// Delete 删除预算
// @Summary 删除预算
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	res := database.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Budget{})
	if res.Error != nil {
		InternalError(c, SafeErrorMessage(res.Error, "删除失败"))
		return
	}
	if res.RowsAffected == 0 {
		NotFound(c, "预算不存在")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Progress 预算执行情况
// @Summary 预算执行情况
// @Description 计算指定月份各预算的已用金额、剩余额度和使用比例
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param year_month query string false "年月 (2024-01)，默认本月"
// @Success 200 {object} Response{data=[]service.BudgetProgress} "获取成功"
// @Failure 400 {object} Response "年月格式错误"
// @Router /api/v1/budgets/progress [get]
func (h *BudgetHandler) Progress(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	month := h.now()
	if ym := c.Query("year_month"); ym != "" {
		t, err := time.ParseInLocation(models.YearMonthLayout, ym, time.Local)
		if err != nil {
			BadRequest(c, "year_month 格式错误，应为: 2006-01")
			return
		}
		month = t
	}

	progress, err := h.svc.BudgetProgress(c.Request.Context(), userID, month.Year(), month.Month())
	if err != nil {
		respondError(c, err, "计算预算执行情况失败")
		return
	}
	Success(c, gin.H{
		"year_month": month.Format(models.YearMonthLayout),
		"budgets":    progress,
	})
}
