package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func hijack(t *testing.T) *bytes.Buffer {
	t.Helper()
	buffer := &bytes.Buffer{}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "msg"

	old := Log
	Log = zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(buffer),
		zap.DebugLevel,
	))
	t.Cleanup(func() { Log = old })
	return buffer
}

func TestLogger_Info_WithRequestID(t *testing.T) {
	buffer := hijack(t)

	ctx := WithRequestID(context.Background(), "rid-12345")
	Info(ctx, "intent sent", zap.String("text", "check my balance"), zap.Int("status", 200))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry), "日志输出必须是合法的 JSON")

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "intent sent", entry["msg"])
	assert.Equal(t, "check my balance", entry["text"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, "rid-12345", entry[RequestIDKey])
}

func TestLogger_Error_NoRequestID(t *testing.T) {
	buffer := hijack(t)

	Error(context.Background(), "dial failed", zap.String("url", "ws://localhost:8080/ws"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))

	_, exists := entry[RequestIDKey]
	assert.False(t, exists, "没有 request id 的 context 不应该输出 request_id 字段")
	assert.Equal(t, "error", entry["level"])
}

func TestLogger_NilContext(t *testing.T) {
	buffer := hijack(t)

	Warn(nil, "no ctx")
	assert.Contains(t, buffer.String(), `"msg":"no ctx"`)
}

func TestInitWithFile_WritesFile(t *testing.T) {
	old := Log
	t.Cleanup(func() { Log = old })

	path := filepath.Join(t.TempDir(), "logs", "oracle-probe.log")
	InitWithFile("oracle-probe", "debug", path)
	Debug(context.Background(), "hello file")
	Sync()

	assert.FileExists(t, path)
}
