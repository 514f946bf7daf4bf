package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 操作冷却 ====================

// CooldownLimiter 按 key 的最小间隔限制
// 发布这类重操作在冷却期内重复触发会被直接拒绝
type CooldownLimiter struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	interval time.Duration
}

// NewCooldownLimiter 创建冷却限制器
func NewCooldownLimiter(interval time.Duration) *CooldownLimiter {
	return &CooldownLimiter{
		lastSeen: make(map[string]time.Time),
		interval: interval,
	}
}

// Allow 判定 key 是否通过冷却检查，通过时记录本次时间
func (l *CooldownLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if last, ok := l.lastSeen[key]; ok && now.Sub(last) < l.interval {
		return false
	}
	l.lastSeen[key] = now
	return true
}

// Cooldown 按用户维度限制请求频率的中间件
func Cooldown(limiter *CooldownLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(CtxUserID)
		if key == "" {
			key = c.ClientIP()
		}
		key = c.FullPath() + ":" + key

		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": "操作过于频繁，请稍后再试",
			})
			return
		}
		c.Next()
	}
}
