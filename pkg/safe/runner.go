package safe

import (
	"context"
	"runtime/debug"

	"go.uber.org/zap"
	"oracleprobe.com/pkg/logger"
)

// Go 安全启动协程，panic 会被 recover 并记日志
func Go(fn func()) {
	go func() {
		defer recoverPanic(context.Background())
		fn()
	}()
}

// GoCtx 安全启动携带 context 的协程，便于在日志中保留请求链路信息。
func GoCtx(ctx context.Context, fn func(ctx context.Context)) {
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		defer recoverPanic(ctx)
		fn(ctx)
	}()
}

// GoDone 同 GoCtx，返回的 channel 在协程退出（包括 panic）后关闭
func GoDone(ctx context.Context, fn func(ctx context.Context)) <-chan struct{} {
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer recoverPanic(ctx)
		fn(ctx)
	}()
	return done
}

func recoverPanic(ctx context.Context) {
	if r := recover(); r != nil {
		logger.Error(ctx, "🚨 GOROUTINE PANIC RECOVERED",
			zap.Any("panic", r),
			zap.String("stack", string(debug.Stack())),
		)
	}
}
