package common

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"oracleprobe.com/pkg/logger"
)

// ApiResponse http 统一返回格式：成功 data 有值 error=null，失败反过来
type ApiResponse struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, ApiResponse{
		Success: true,
		Data:    data,
	})
}

func Fail(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, ApiResponse{
		Success: false,
		Data:    nil,
		Error:   &msg,
	})
}

func FailLogged(c *gin.Context, httpStatus int, msg string, err error) {
	logger.Warn(c.Request.Context(), "http error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", httpStatus),
		zap.String("message", msg),
		zap.Error(err),
		zap.ByteString("stack", debug.Stack()),
	)
	Fail(c, httpStatus, msg)
}
