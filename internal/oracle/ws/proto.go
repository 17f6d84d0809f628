package ws

import "strings"

// ClientMsg 客户端 -> 服务端
//
//	{"type":"subscribe","channel":"oracle"}
//	{"type":"unsubscribe","channel":"oracle"}
//	{"type":"ping"}
//
// type 大小写不敏感（"Subscribe" 也认）
type ClientMsg struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// ServerMsg 服务端主动回给单个连接的控制消息（Pong / Error）。
// 频道推送的业务事件是 broker 里的原始 payload，不经过这个结构。
type ServerMsg struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

const (
	opSubscribe   = "subscribe"
	opUnsubscribe = "unsubscribe"
	opPing        = "ping"
)

func normalizeOp(t string) string { return strings.ToLower(strings.TrimSpace(t)) }

func normalizeChannel(c string) string { return strings.ToLower(strings.TrimSpace(c)) }
