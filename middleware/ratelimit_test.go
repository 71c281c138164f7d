package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimit_ByIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 短窗口 200ms，最多 2 次
	router := gin.New()
	router.Use(RateLimit(testContext(t), 2, 200*time.Millisecond))
	router.GET("/export", func(c *gin.Context) {
		c.String(200, "ok")
	})

	doReq := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/export", nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, 200, doReq("192.168.1.1").Code)
	assert.Equal(t, 200, doReq("192.168.1.1").Code)
	w3 := doReq("192.168.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w3.Code)
	assert.Contains(t, w3.Body.String(), "频繁")
	assert.NotEmpty(t, w3.Header().Get("Retry-After"))

	// 不同 IP 互不影响
	assert.Equal(t, 200, doReq("192.168.1.2").Code)

	// 窗口过后恢复
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, 200, doReq("192.168.1.1").Code)
}

func TestRateLimit_ByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid == "1" {
			c.Set(ContextUserID, uint(1))
		} else {
			c.Set(ContextUserID, uint(2))
		}
		c.Next()
	})
	router.Use(RateLimit(testContext(t), 1, time.Minute))
	router.GET("/export", func(c *gin.Context) { c.String(200, "ok") })

	doReq := func(user string) int {
		req := httptest.NewRequest("GET", "/export", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		req.Header.Set("X-Test-User", user)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	// 同一 IP 下不同用户分别计数
	assert.Equal(t, 200, doReq("1"))
	assert.Equal(t, 200, doReq("2"))
	assert.Equal(t, http.StatusTooManyRequests, doReq("1"))
}

func TestRateLimiter_CleanupStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := newRateLimiter(ctx, 1, 10*time.Millisecond, 5*time.Millisecond)

	ok, _ := l.allow("ip:10.0.0.1", time.Now())
	require.True(t, ok)
	assert.Eventually(t, func() bool { return l.size() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-l.done:
	case <-time.After(time.Second):
		t.Fatal("清理协程未退出")
	}
}

func TestRateLimiter_RetryAfter(t *testing.T) {
	l := newRateLimiter(testContext(t), 1, time.Minute, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	ok, _ := l.allow("user:1", now)
	require.True(t, ok)
	ok, wait := l.allow("user:1", now.Add(20*time.Second))
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, wait)
}

// testContext mirrors testing.T.Context (Go 1.24+): a context cancelled
// when the test finishes.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
