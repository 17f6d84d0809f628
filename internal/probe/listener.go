package probe

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
	"oracleprobe.com/pkg/logger"
	"oracleprobe.com/pkg/metrics"
	"oracleprobe.com/pkg/safe"
	"oracleprobe.com/pkg/xerr"
)

type State int32

const (
	StateNotStarted State = iota // 没建连就失败，listener 没起
	StateListening
	StateIdle    // 等下一条消息超时：idle too long
	StateFailed  // 读失败 / 非 JSON
	StateStopped // 还在听的时候被主流程取消，或连接被主流程关闭
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateListening:
		return "listening"
	case StateIdle:
		return "idle"
	case StateFailed:
		return "failed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// frameReader 只要读这一半，*websocket.Conn 满足
type frameReader interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
}

type frame struct {
	data []byte
	err  error
}

// Listener 后台读 ws 推送并打印。只读连接，不写，也不负责关连接。
//
// 读在单独的协程里进行，用的 ctx 不会被 Stop / idle 取消：
// coder/websocket 的读 ctx 一结束就会直接断开连接，而连接要留给主流程正常关闭。
// 等待上限由 run 里的 timer 控制。
type Listener struct {
	conn    frameReader
	timeout time.Duration // 0 表示不设
	out     *Printer
	channel string

	// OnEvent 可选：每个打印出去的事件（原始 JSON）回调一次
	OnEvent func(json.RawMessage)

	mu      sync.Mutex
	stopped bool
	err     error
	cancel  context.CancelFunc
	done    <-chan struct{}

	state  atomic.Int32
	events atomic.Int64
}

func NewListener(conn frameReader, timeout time.Duration, out *Printer, channel string) *Listener {
	return &Listener{conn: conn, timeout: timeout, out: out, channel: channel}
}

// Start 启动后台协程。一个 Listener 只能 Start 一次。
func (l *Listener) Start(ctx context.Context) {
	frames := make(chan frame)
	quit := make(chan struct{})
	// 连接关闭前一直读：listener 结束后继续读并丢弃，保证对端的 close 帧能被处理
	safe.GoCtx(context.WithoutCancel(ctx), func(rctx context.Context) {
		l.readLoop(rctx, frames, quit)
	})

	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()
	l.state.Store(int32(StateListening))
	l.done = safe.GoDone(ctx, func(ctx context.Context) {
		defer close(quit)
		l.run(ctx, frames)
	})
}

// Stop 无条件取消并等协程退出。返回后不会再有任何输出。可重复调用。
func (l *Listener) Stop() State {
	l.mu.Lock()
	l.stopped = true
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()

	if l.done != nil {
		<-l.done
	}
	return l.State()
}

func (l *Listener) Done() <-chan struct{} { return l.done }

func (l *Listener) State() State { return State(l.state.Load()) }

func (l *Listener) Events() int64 { return l.events.Load() }

// Err 结束原因：idle 是 CodeReceiveTimeout，failed 是 CodeReceive，其它为 nil
func (l *Listener) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *Listener) readLoop(ctx context.Context, frames chan<- frame, quit <-chan struct{}) {
	for {
		_, raw, err := l.conn.Read(ctx)
		select {
		case frames <- frame{data: raw, err: err}:
		case <-quit:
		}
		if err != nil {
			return
		}
	}
}

func (l *Listener) run(ctx context.Context, frames <-chan frame) {
	var idle *time.Timer
	if l.timeout > 0 {
		idle = time.NewTimer(l.timeout)
		defer idle.Stop()
	}

	for {
		var timeout <-chan time.Time
		if idle != nil {
			timeout = idle.C
		}

		select {
		case <-ctx.Done():
			l.finish(StateStopped, nil)
			return
		case <-timeout:
			l.finish(StateIdle, xerr.New(xerr.CodeReceiveTimeout,
				fmt.Sprintf("no message within %s", l.timeout)))
			return
		case fr := <-frames:
			if fr.err != nil {
				if ctx.Err() != nil {
					l.finish(StateStopped, nil)
				} else {
					l.finish(StateFailed, xerr.Wrap(fr.err, xerr.CodeReceive, ""))
				}
				return
			}
			if !l.emit(fr.data) {
				return
			}
			if idle != nil {
				// 每收到一条消息重新计时
				if !idle.Stop() {
					select {
					case <-idle.C:
					default:
					}
				}
				idle.Reset(l.timeout)
			}
		}
	}
}

func (l *Listener) emit(raw []byte) bool {
	pretty, err := indentJSON(raw)
	if err != nil {
		l.finish(StateFailed, xerr.Wrap(err, xerr.CodeReceive, "decode event"))
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return false
	}
	l.out.Printf("📨 WS Event: %s\n", pretty)
	l.events.Add(1)
	metrics.EventsTotal.WithLabelValues(l.channel).Inc()
	if l.OnEvent != nil {
		cp := make([]byte, len(raw))
		copy(cp, raw)
		l.OnEvent(json.RawMessage(cp))
	}
	return true
}

func (l *Listener) finish(st State, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		// 主流程已经 Stop：不管底层返回什么都算 stopped，也不再输出
		st, err = StateStopped, nil
	}
	l.state.Store(int32(st))
	l.err = err
	metrics.ListenerExitTotal.WithLabelValues(st.String()).Inc()

	switch st {
	case StateIdle:
		l.out.Printf("⏱️  No more messages (timeout)\n")
		logger.Info(context.Background(), "listener idle too long", zap.Duration("timeout", l.timeout))
	case StateFailed:
		l.out.Printf("❌ Error: %v\n", err)
		logger.Warn(context.Background(), "listener failed", zap.Error(err))
	case StateStopped:
		logger.Debug(context.Background(), "listener stopped", zap.Int64("events", l.events.Load()))
	}
}
