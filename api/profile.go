package api

import (
	"github.com/gin-gonic/gin"

	"spendlens/database"
	"spendlens/middleware"
	"spendlens/models"
	"spendlens/service"
)

// ProfileHandler 当前用户资料
// 账号由身份服务管理，这里只维护用于预算提醒的邮箱
type ProfileHandler struct {
	email *service.EmailService
}

// NewProfileHandler 创建用户资料处理器
func NewProfileHandler(email *service.EmailService) *ProfileHandler {
	return &ProfileHandler{email: email}
}

// UpdateProfileRequest 更新资料请求
type UpdateProfileRequest struct {
	Email string `json:"email" binding:"omitempty,email" example:"alice@example.com"`
}

// currentUser 按令牌中的用户信息查找本地用户，不存在则创建
func currentUser(c *gin.Context) (*models.User, error) {
	user := models.User{ID: middleware.GetCurrentUserID(c)}
	err := database.DB.
		Where(models.User{ID: user.ID}).
		Attrs(models.User{Username: middleware.GetCurrentUsername(c)}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Get 获取当前用户资料
// @Summary 获取当前用户资料
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "获取用户信息失败"))
		return
	}
	Success(c, user)
}

// Update 更新提醒邮箱
// @Summary 更新提醒邮箱
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "资料"
// @Success 200 {object} Response{data=models.User} "更新成功"
// @Failure 400 {object} Response "邮箱格式错误"
// @Router /api/v1/profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "邮箱格式错误")
		return
	}

	user, err := currentUser(c)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "获取用户信息失败"))
		return
	}
	if err := database.DB.Model(user).Update("email", req.Email).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", user)
}

// TestEmail 向当前用户邮箱发送测试邮件
// @Summary 发送测试邮件
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "发送成功"
// @Failure 400 {object} Response "未设置邮箱或邮件服务未启用"
// @Router /api/v1/profile/test-email [post]
func (h *ProfileHandler) TestEmail(c *gin.Context) {
	if !h.email.Enabled() {
		BadRequest(c, "邮件服务未启用")
		return
	}
	user, err := currentUser(c)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "获取用户信息失败"))
		return
	}
	if user.Email == "" {
		BadRequest(c, "请先设置邮箱")
		return
	}
	if err := h.email.SendTestEmail(user.Email); err != nil {
		InternalError(c, SafeErrorMessage(err, "发送失败"))
		return
	}
	SuccessWithMessage(c, "发送成功", nil)
}
