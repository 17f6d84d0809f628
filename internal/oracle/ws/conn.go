package ws

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
	"oracleprobe.com/internal/oracle/wsmetrics"
	"oracleprobe.com/pkg/logger"
)

type Conn struct {
	id string

	ws     *websocket.Conn
	hub    *Hub
	send   chan []byte // 一条 payload 一帧，顺序投递

	mu     sync.RWMutex // 保护 closed 和 close(send)
	closed bool
}

func NewConn(h *Hub, ws *websocket.Conn, sendBuf int) *Conn {
	return &Conn{
		id:   uuid.NewString(),
		ws:   ws,
		hub:  h,
		send: make(chan []byte, sendBuf),
	}
}

func (c *Conn) ID() string { return c.id }

// Offer 非阻塞投递：send 队列满直接丢（慢客户端自己承担）
func (c *Conn) Offer(payload []byte) bool {
	cp := make([]byte, len(payload))
	copy(cp, payload)

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- cp:
		return true
	default:
		return false
	}
}

// shutdown 关掉 send，writePump 读到 !ok 后发 close 帧退出
func (c *Conn) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

type Server struct {
	Hub      *Hub
	Upgrader websocket.Upgrader
	ctx      context.Context
	SendBuf  int // per-conn send chan size

	PongWait   time.Duration
	PingPeriod time.Duration
	PingJitter time.Duration
	WriteWait  time.Duration
	ReadLimit  int64
}

func NewServer(ctx context.Context, h *Hub) *Server {
	return &Server{
		Hub: h,
		ctx: ctx,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // mock：前端本地调试，不校验 Origin
		},
		SendBuf:    256,
		PongWait:   60 * time.Second,
		PingPeriod: 30 * time.Second,
		PingJitter: 100 * time.Millisecond,
		WriteWait:  5 * time.Second,
		ReadLimit:  1 << 12,
	}
}

func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := NewConn(s.Hub, wsConn, s.SendBuf)
	wsmetrics.OnOpen()
	logger.Info(r.Context(), "ws connected", zap.String("conn", c.id), zap.String("remote", r.RemoteAddr))
	go s.writePump(c)
	go s.readPump(c)
}

func (s *Server) readPump(c *Conn) {
	reason := "eof"
	defer func() {
		c.hub.RemoveConn(c)
		c.shutdown()
		wsmetrics.OnClose(reason)
	}()

	c.ws.SetReadLimit(s.ReadLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(s.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(s.PongWait))
	})

	for {
		if s.ctx.Err() != nil {
			reason = "shutdown"
			return
		}
		_, b, err := c.ws.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			switch {
			case errors.As(err, &ce):
				reason = "close"
			case isTimeout(err):
				reason = "pong_timeout"
			default:
				reason = "read_error"
			}
			logger.Debug(context.Background(), "ws read end", zap.String("conn", c.id), zap.Error(err))
			return
		}
		// 任何业务消息也算活跃
		_ = c.ws.SetReadDeadline(time.Now().Add(s.PongWait))
		s.handle(c, b)
	}
}

func (s *Server) handle(c *Conn, b []byte) {
	var msg ClientMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		c.reply(ServerMsg{Type: "Error", Message: "invalid json", Code: "bad_request"})
		return
	}
	switch normalizeOp(msg.Type) {
	case opSubscribe:
		c.hub.Subscribe(c, msg.Channel)
	case opUnsubscribe:
		c.hub.Unsubscribe(c, msg.Channel)
	case opPing:
		c.reply(ServerMsg{Type: "Pong"})
	default:
		c.reply(ServerMsg{Type: "Error", Message: "unknown type " + msg.Type, Code: "bad_request"})
	}
}

func (c *Conn) reply(m ServerMsg) {
	b, err := json.Marshal(m)
	if err != nil {
		return
	}
	if c.Offer(b) {
		wsmetrics.Reply(m.Type)
	}
}

func (s *Server) writePump(c *Conn) {
	// 随机错开 ping，避免所有连接同一时刻发
	if s.PingJitter > 0 {
		t := time.NewTimer(time.Duration(rand.Int63n(int64(s.PingJitter))))
		select {
		case <-t.C:
		case <-s.ctx.Done():
			t.Stop()
			_ = c.ws.Close()
			return
		}
	}

	ticker := time.NewTicker(s.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				_ = c.ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(s.WriteWait))
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(s.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Warn(context.Background(), "ws write failed", zap.String("conn", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(s.WriteWait)); err != nil {
				return
			}
		case <-s.ctx.Done():
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(s.WriteWait))
			return
		}
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
