package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"spendlens/models"
)

// parseDate 解析 YYYY-MM-DD 日期
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(models.DateLayout, s, time.Local)
}

// parseDateRange 解析可选的日期范围查询参数，格式错误时直接返回 400
func parseDateRange(c *gin.Context, startKey, endKey string) (from, to *time.Time, ok bool) {
	if s := c.Query(startKey); s != "" {
		t, err := parseDate(s)
		if err != nil {
			BadRequest(c, startKey+" 格式错误，应为: 2006-01-02")
			return nil, nil, false
		}
		from = &t
	}
	if s := c.Query(endKey); s != "" {
		t, err := parseDate(s)
		if err != nil {
			BadRequest(c, endKey+" 格式错误，应为: 2006-01-02")
			return nil, nil, false
		}
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		BadRequest(c, "开始日期不能晚于结束日期")
		return nil, nil, false
	}
	return from, to, true
}

// parseID 解析路径中的 id
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		BadRequest(c, "无效的ID")
		return 0, false
	}
	return uint(id), true
}

// queryInt 解析整数查询参数，未传时返回默认值
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	s := c.Query(key)
	if s == "" {
		return def, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		BadRequest(c, key+" 必须为整数")
		return 0, false
	}
	return v, true
}
