package xerr

import (
	"errors"
	"fmt"
)

// 探针错误码
const (
	OK                = 200
	ServerCommonError = 500

	// 4.x: 探针侧
	CodeConnect        = 4001 // 建连 / 订阅失败，直接向上抛
	CodeReceiveTimeout = 4002 // listener 空闲太久，只结束 listener
	CodeReceive        = 4003 // listener 读失败 / 非 JSON，只结束 listener
	CodeIntent         = 4004 // intent HTTP 调用失败 / 响应不是 JSON，直接向上抛
)

type CodeError struct {
	Code  int    `json:"code"`
	Msg   string `json:"msg"`
	cause error
}

func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("ErrCode:%d, Msg:%s: %v", e.Code, e.Msg, e.cause)
	}
	return fmt.Sprintf("ErrCode:%d, Msg:%s", e.Code, e.Msg)
}

func (e *CodeError) Unwrap() error { return e.cause }

func New(code int, msg string) error {
	return &CodeError{Code: code, Msg: msg}
}


// Wrap 带上错误码，保留原始 cause（errors.Is / errors.As 都能穿透）
func Wrap(err error, code int, msg string) error {
	if err == nil {
		return nil
	}
	if msg == "" {
		msg = MapErrMsg(code)
	}
	return &CodeError{Code: code, Msg: msg, cause: err}
}

// CodeOf 取错误链上第一个 CodeError 的 code；普通 error 返回 ServerCommonError
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ServerCommonError
}

func MapErrMsg(code int) string {
	switch code {
	case OK:
		return "ok"
	case ServerCommonError:
		return "internal error"
	case CodeConnect:
		return "websocket connect failed"
	case CodeReceiveTimeout:
		return "idle too long"
	case CodeReceive:
		return "receive failed"
	case CodeIntent:
		return "intent request failed"
	default:
		return "unknown error"
	}
}
