package middleware

import (
	"github.com/gin-gonic/gin"
	"oracleprobe.com/pkg/common"
	"oracleprobe.com/pkg/logger"
)

func ReqId() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := common.AcceptRequestID(c.GetHeader(common.HeaderRequestID))
		common.SetRequestID(c, rid)
		c.Header(common.HeaderRequestID, rid)
		// 写进 request context，后面 logger.Info(ctx, ...) 自动带上
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}
