package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spendlens/middleware"
)

// Response 统一响应结构
// RequestID 与响应头 X-Request-ID 一致，便于按请求排查日志
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// PageResponse 分页数据
type PageResponse struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	List     interface{} `json:"list"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Code:      status,
		Message:   message,
		Data:      data,
		RequestID: middleware.GetRequestID(c),
	})
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, "success", data)
}

// SuccessWithMessage 带提示信息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusOK, message, data)
}

// Error 错误响应
func Error(c *gin.Context, status int, message string) {
	respond(c, status, message, nil)
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// InvalidArgument 统计参数非法，400 并返回具体原因
func InvalidArgument(c *gin.Context, err error) {
	Error(c, http.StatusBadRequest, err.Error())
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 500
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
