package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"oracleprobe.com/pkg/common"
	"oracleprobe.com/pkg/logger"
	"oracleprobe.com/pkg/ratelimit"
)

// RateLimit 按路由限流（mock 只有本机探针在打，不区分 ip），store 为 nil 时不限
func RateLimit(store *ratelimit.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		if !store.Allow(route) {
			// 限流属于“可控拒绝”，不要打堆栈（压测会炸日志）
			logger.Warn(c.Request.Context(), "http rate limited",
				zap.String("ip", c.ClientIP()),
				zap.String("route", route),
			)
			common.Fail(c, http.StatusTooManyRequests, "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
