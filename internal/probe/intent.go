package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
	"oracleprobe.com/pkg/common"
	"oracleprobe.com/pkg/logger"
	"oracleprobe.com/pkg/metrics"
	"oracleprobe.com/pkg/xerr"
)

// IntentClient POST 自由文本到 oracle。没有超时（只受 ctx 约束），没有重试。
type IntentClient struct {
	URL  string
	HTTP *http.Client
}

type IntentResult struct {
	Text      string
	RequestID string
	Status    int
	Body      json.RawMessage
	Duration  time.Duration
}

func NewIntentClient(url string) *IntentClient {
	return &IntentClient{URL: url, HTTP: &http.Client{}}
}

// Send 发一条 intent。网络错误或响应体不是 JSON 都返回 CodeIntent。
// 状态码不做判断：非 2xx 但 body 是 JSON 也照样返回给调用方打印。
func (c *IntentClient) Send(ctx context.Context, text string) (*IntentResult, error) {
	rid := common.NewRequestID()
	ctx = logger.WithRequestID(ctx, rid)

	start := time.Now()
	res, err := c.do(ctx, rid, text)
	metrics.ObserveIntent(time.Since(start), err)
	if err != nil {
		logger.Error(ctx, "intent failed", zap.String("text", text), zap.Error(err))
		return nil, err
	}
	res.Duration = time.Since(start)

	if res.Status >= http.StatusBadRequest {
		logger.Warn(ctx, "intent non-2xx", zap.Int("status", res.Status))
	} else {
		logger.Info(ctx, "intent ok", zap.Int("status", res.Status), zap.Duration("took", res.Duration))
	}
	return res, nil
}

func (c *IntentClient) do(ctx context.Context, rid, text string) (*IntentResult, error) {
	body, err := json.Marshal(IntentRequest{Text: text})
	if err != nil {
		return nil, xerr.Wrap(err, xerr.CodeIntent, "encode intent")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, xerr.Wrap(err, xerr.CodeIntent, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.HeaderRequestID, rid)

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, xerr.Wrap(err, xerr.CodeIntent, "post intent")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, xerr.Wrap(err, xerr.CodeIntent, "read response")
	}
	if !json.Valid(raw) {
		return nil, xerr.Wrap(
			fmt.Errorf("status %d, content-type %q, body %q", resp.StatusCode, resp.Header.Get("Content-Type"), truncate(raw, 64)),
			xerr.CodeIntent, "response is not json")
	}

	return &IntentResult{
		Text:      text,
		RequestID: rid,
		Status:    resp.StatusCode,
		Body:      json.RawMessage(raw),
	}, nil
}
