package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"spendlens/database"
	"spendlens/middleware"
	"spendlens/models"
	"spendlens/service"
)

// GoalHandler 储蓄目标处理器
type GoalHandler struct {
	now func() time.Time
}

// NewGoalHandler 创建储蓄目标处理器
func NewGoalHandler() *GoalHandler {
	return &GoalHandler{now: time.Now}
}

// CreateGoalRequest 创建储蓄目标请求
type CreateGoalRequest struct {
	Name         string  `json:"name" binding:"required,max=100" example:"日本旅行"`
	TargetAmount float64 `json:"target_amount" binding:"required,gt=0" example:"20000"`
	SavedAmount  float64 `json:"saved_amount" binding:"gte=0" example:"0"`
	Deadline     string  `json:"deadline" example:"2025-06-30"`
}

// UpdateGoalRequest 更新储蓄目标请求
type UpdateGoalRequest struct {
	Name         *string  `json:"name" binding:"omitempty,max=100" example:"日本旅行"`
	TargetAmount *float64 `json:"target_amount" binding:"omitempty,gt=0" example:"25000"`
	Deadline     *string  `json:"deadline" example:"2025-09-30"`
}

// ContributeRequest 存入请求
type ContributeRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0" example:"500"`
}

// Create 创建储蓄目标
// @Summary 创建储蓄目标
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateGoalRequest true "储蓄目标"
// @Success 200 {object} Response{data=service.GoalProgress} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	goal := models.SavingsGoal{
		UserID:       userID,
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		Status:       models.GoalStatusActive,
	}
	if req.Deadline != "" {
		d, err := parseDate(req.Deadline)
		if err != nil {
			BadRequest(c, "截止日期格式错误，应为: 2006-01-02")
			return
		}
		goal.Deadline = &d
	}
	goal.Contribute(req.SavedAmount)

	if err := database.DB.Create(&goal).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建储蓄目标失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", service.NewGoalProgress(goal, h.now()))
}

// List 获取储蓄目标列表
// @Summary 获取储蓄目标列表
// @Tags 储蓄目标
// @Produce json
// @Security BearerAuth
// @Param status query string false "状态筛选" Enums(active,achieved)
// @Success 200 {object} Response{data=[]service.GoalProgress} "获取成功"
// @Router /api/v1/goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		if status != models.GoalStatusActive && status != models.GoalStatusAchieved {
			BadRequest(c, "status 只能为 active 或 achieved")
			return
		}
		query = query.Where("status = ?", status)
	}

	var goals []models.SavingsGoal
	if err := query.Order("id ASC").Find(&goals).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	now := h.now()
	list := make([]service.GoalProgress, 0, len(goals))
	for _, g := range goals {
		list = append(list, service.NewGoalProgress(g, now))
	}
	Success(c, list)
}

// Update 更新储蓄目标
// @Summary 更新储蓄目标
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "储蓄目标ID"
// @Param request body UpdateGoalRequest true "储蓄目标"
// @Success 200 {object} Response{data=service.GoalProgress} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "储蓄目标不存在"
// @Router /api/v1/goals/{id} [put]
func (h *GoalHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var goal models.SavingsGoal
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&goal).Error; err != nil {
		NotFound(c, "储蓄目标不存在")
		return
	}

	if req.Name != nil {
		goal.Name = *req.Name
	}
	if req.TargetAmount != nil {
		goal.TargetAmount = *req.TargetAmount
		goal.Status = models.GoalStatusActive
		goal.Contribute(0)
	}
	if req.Deadline != nil {
		if *req.Deadline == "" {
			goal.Deadline = nil
		} else {
			d, err := parseDate(*req.Deadline)
			if err != nil {
				BadRequest(c, "截止日期格式错误，应为: 2006-01-02")
				return
			}
			goal.Deadline = &d
		}
	}

	if err := database.DB.Save(&goal).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", service.NewGoalProgress(goal, h.now()))
}

// Contribute 向储蓄目标存入金额
// @Summary 存入金额
// @Description 累加已存金额，达到目标金额后状态变为 achieved
// @Tags 储蓄目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "储蓄目标ID"
// @Param request body ContributeRequest true "存入金额"
// @Success 200 {object} Response{data=service.GoalProgress} "存入成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "储蓄目标不存在"
// @Router /api/v1/goals/{id}/contribute [post]
func (h *GoalHandler) Contribute(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var goal models.SavingsGoal
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// 在 SQL 中累加，并发存入不会互相覆盖
		res := tx.Model(&models.SavingsGoal{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("saved_amount", gorm.Expr("saved_amount + ?", req.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Model(&models.SavingsGoal{}).
			Where("id = ? AND saved_amount >= target_amount AND status <> ?", id, models.GoalStatusAchieved).
			Update("status", models.GoalStatusAchieved).Error; err != nil {
			return err
		}

		return tx.Where("id = ? AND user_id = ?", id, userID).First(&goal).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "储蓄目标不存在")
		return
	}
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "存入失败"))
		return
	}
	SuccessWithMessage(c, "存入成功", service.NewGoalProgress(goal, h.now()))
}

// Delete 删除储蓄目标
// @Summary 删除储蓄目标
// @Tags 储蓄目标
// @Produce json
// @Security BearerAuth
// @Param id path int true "储蓄目标ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "储蓄目标不存在"
// @Router /api/v1/goals/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	res := database.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.SavingsGoal{})
	if res.Error != nil {
		InternalError(c, SafeErrorMessage(res.Error, "删除失败"))
		return
	}
	if res.RowsAffected == 0 {
		NotFound(c, "储蓄目标不存在")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
