package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"spendlens/analytics"
	"spendlens/config"
	"spendlens/logger"
)

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情，避免信息泄露
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}

// respondError 参数错误返回 400 和具体原因，其余错误记录日志并返回 500
func respondError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, analytics.ErrInvalidArgument) {
		InvalidArgument(c, err)
		return
	}
	log := logger.FromContext(c.Request.Context())
	log.Error().Err(err).Msg(fallback)
	InternalError(c, SafeErrorMessage(err, fallback))
}
