// Package probe drives one end-to-end pass against an oracle server: it
// subscribes to a push channel over WebSocket, posts free-text intents over
// HTTP and prints whatever the server pushes back in between.
package probe

import (
	"context"
	"io"
	"time"

	"github.com/coder/websocket"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
	"oracleprobe.com/internal/probe/config"
	"oracleprobe.com/pkg/logger"
	"oracleprobe.com/pkg/xerr"
)

const writeWait = 2 * time.Second

type Harness struct {
	cfg     config.ProbeConfig
	out     *Printer
	intents *IntentClient

	// OnEvent 透传给 Listener
	OnEvent func(json.RawMessage)
}

// Report 跑完后的观察结果，只用于日志和指标，不做 pass/fail 判定
type Report struct {
	Intents     []*IntentResult
	Events      int64
	Listener    State
	ListenerErr error
	Elapsed     time.Duration
}

func New(cfg config.ProbeConfig, w io.Writer) *Harness {
	return &Harness{
		cfg:     cfg,
		out:     NewPrinter(w),
		intents: NewIntentClient(cfg.Endpoint.OracleURL()),
	}
}

// Run 执行完整流程：建连 -> 订阅 -> 起 listener -> 逐条发 intent 并等推送 -> 停 listener。
// 建连失败和 intent 失败直接返回；listener 自己的超时/错误只影响 listener。
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	rep := &Report{Listener: StateNotStarted}
	wsURL := h.cfg.Endpoint.WebSocketURL()

	// 1) 建连，不重试
	h.out.Printf("🔌 Connecting to WebSocket...\n")
	conn, err := h.dial(ctx, wsURL)
	if err != nil {
		logger.Error(ctx, "dial failed", zap.String("url", wsURL), zap.Error(err))
		return rep, err
	}
	// 最后执行（listener 已停）：正常关闭握手，对端看到 1000。
	// 关闭也会让 listener 挂着的读返回。
	defer func() {
		if err := conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
			logger.Warn(ctx, "ws close handshake failed", zap.Error(err))
		}
	}()
	logger.Info(ctx, "connected", zap.String("url", wsURL))

	// 2) 订阅，不等 ack
	if err := writeJSON(ctx, conn, subscribe(h.cfg.Channel)); err != nil {
		return rep, xerr.Wrap(err, xerr.CodeConnect, "subscribe")
	}
	h.out.Printf("📡 Subscribed to %s channel\n", h.cfg.Channel)

	// 3) 后台 listener
	l := NewListener(conn, h.cfg.ReceiveTimeout, h.out, h.cfg.Channel)
	l.OnEvent = h.OnEvent
	l.Start(ctx)
	defer func() {
		rep.Listener = l.Stop()
		rep.ListenerErr = l.Err()
		rep.Events = l.Events()
		rep.Elapsed = time.Since(start)
	}()

	// 4) 给服务端一点时间登记订阅（启发式，不保证）
	if err := sleepCtx(ctx, h.cfg.SubscribeSettle); err != nil {
		return rep, err
	}

	// 5-7) 每条 intent：POST -> 打印响应 -> 等推送
	for _, step := range h.cfg.Intents {
		h.out.Printf("\n🗣️  Sending intent: '%s'...\n", step.Text)
		res, err := h.intents.Send(ctx, step.Text)
		if err != nil {
			return rep, err
		}
		rep.Intents = append(rep.Intents, res)
		if err := h.out.JSON("📬 HTTP Response", res.Body); err != nil {
			return rep, xerr.Wrap(err, xerr.CodeIntent, "print response")
		}

		if err := sleepCtx(ctx, step.Wait); err != nil {
			return rep, err
		}
	}

	// 8) 无条件停 listener，然后收尾
	st := l.Stop()
	h.out.Printf("\n✅ Test complete!\n")
	logger.Info(ctx, "probe finished",
		zap.Int("intents", len(rep.Intents)),
		zap.Int64("events", l.Events()),
		zap.String("listener", st.String()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rep, nil
}

func (h *Harness) dial(ctx context.Context, url string) (*websocket.Conn, error) {
	dctx := ctx
	if h.cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, h.cfg.DialTimeout)
		defer cancel()
	}
	conn, _, err := websocket.Dial(dctx, url, nil)
	if err != nil {
		return nil, xerr.Wrap(err, xerr.CodeConnect, "")
	}
	return conn, nil
}

func writeJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, b)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
