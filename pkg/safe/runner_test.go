package safe

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"oracleprobe.com/pkg/logger"
)

func TestGoDone_ClosesAfterPanic(t *testing.T) {
	buffer := &bytes.Buffer{}
	old := logger.Log
	logger.Log = zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(buffer),
		zap.InfoLevel,
	))
	t.Cleanup(func() { logger.Log = old })

	done := GoDone(context.Background(), func(ctx context.Context) {
		panic("listener exploded")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done not closed after panic")
	}
	assert.Contains(t, buffer.String(), "listener exploded")
}

func TestGoCtx_PassesContext(t *testing.T) {
	ctx := logger.WithRequestID(context.Background(), "rid-1")
	got := make(chan string, 1)

	GoCtx(ctx, func(ctx context.Context) {
		got <- ctx.Value(logger.RequestIDKey).(string)
	})

	select {
	case rid := <-got:
		assert.Equal(t, "rid-1", rid)
	case <-time.After(time.Second):
		t.Fatal("goroutine never ran")
	}
}

func TestGo_RecoversPanic(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	old := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = old })

	Go(func() { panic("unsubscribe exploded") })

	require.Eventually(t, func() bool {
		return logs.FilterMessage("🚨 GOROUTINE PANIC RECOVERED").Len() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "unsubscribe exploded", logs.All()[0].ContextMap()["panic"])
}
