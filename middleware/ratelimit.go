package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimitCleanupInterval 清理过期计数的间隔
const rateLimitCleanupInterval = time.Minute

// rateLimiter 滑动窗口计数，key 为 user:<id> 或 ip:<addr>
type rateLimiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	hits        map[string][]time.Time
	done        chan struct{}
}

func newRateLimiter(ctx context.Context, maxRequests int, window, cleanupEvery time.Duration) *rateLimiter {
	l := &rateLimiter{
		maxRequests: maxRequests,
		window:      window,
		hits:        make(map[string][]time.Time),
		done:        make(chan struct{}),
	}
	go l.cleanup(ctx, cleanupEvery)
	return l
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// cleanup 定期删除过期数据，ctx 结束时退出
func (l *rateLimiter) cleanup(ctx context.Context, every time.Duration) {
	defer close(l.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.mu.Lock()
			cutoff := now.Add(-l.window)
			for key, ts := range l.hits {
				if ts = prune(ts, cutoff); len(ts) == 0 {
					delete(l.hits, key)
				} else {
					l.hits[key] = ts
				}
			}
			l.mu.Unlock()
		}
	}
}

// allow 记录一次请求；超限时返回需要等待的时间
func (l *rateLimiter) allow(key string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := prune(l.hits[key], now.Add(-l.window))
	if len(ts) >= l.maxRequests {
		l.hits[key] = ts
		return false, ts[0].Add(l.window).Sub(now)
	}
	l.hits[key] = append(ts, now)
	return true, 0
}

func (l *rateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

// RateLimit 滑动窗口限流中间件
// 已认证请求按用户计数，否则按 IP；窗口内超过 maxRequests 次返回 429。
// 后台清理协程在 ctx 结束时退出。
func RateLimit(ctx context.Context, maxRequests int, window time.Duration) gin.HandlerFunc {
	l := newRateLimiter(ctx, maxRequests, window, rateLimitCleanupInterval)

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if uid := GetCurrentUserID(c); uid != 0 {
			key = fmt.Sprintf("user:%d", uid)
		}

		ok, retryAfter := l.allow(key, time.Now())
		if !ok {
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "请求过于频繁，请稍后再试",
			})
			return
		}
		c.Next()
	}
}
