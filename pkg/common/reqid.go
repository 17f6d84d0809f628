package common

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID intent 请求带上，mock oracle 原样用作推送事件里的 request_id
const HeaderRequestID = "X-Request-Id"

const (
	ctxKeyRequestID    = "request_id"
	maxRequestIDLength = 64
)

func NewRequestID() string { return uuid.NewString() }

// AcceptRequestID 复用调用方给的 id；为空、过长或带控制字符时重新生成。
// 这个 id 会进日志和 ws 事件，不能让客户端塞任意内容。
func AcceptRequestID(header string) string {
	if header == "" || len(header) > maxRequestIDLength {
		return NewRequestID()
	}
	for _, r := range header {
		if r < 0x21 || r > 0x7e {
			return NewRequestID()
		}
	}
	return header
}

func SetRequestID(c *gin.Context, rid string) { c.Set(ctxKeyRequestID, rid) }

// RequestID 取 ReqId 中间件放进 gin.Context 的 id，没经过中间件时为空
func RequestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}
