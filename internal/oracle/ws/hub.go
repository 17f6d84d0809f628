package ws

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"oracleprobe.com/internal/oracle/wsmetrics"
	"oracleprobe.com/pkg/logger"
)

type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Conn]struct{} // channel -> set(conn)
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*Conn]struct{}, 16),
	}
}

func (h *Hub) Subscribe(c *Conn, channel string) {
	channel = normalizeChannel(channel)
	if channel == "" {
		return
	}
	h.mu.Lock()
	set := h.subs[channel]
	if set == nil {
		set = make(map[*Conn]struct{}, 16)
		h.subs[channel] = set
	}
	set[c] = struct{}{}
	wsmetrics.SetSubscribers(channel, len(set))
	h.mu.Unlock()

	logger.Debug(context.Background(), "subscribe", zap.String("conn", c.id), zap.String("channel", channel))
}

func (h *Hub) Unsubscribe(c *Conn, channel string) {
	channel = normalizeChannel(channel)
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[channel]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	// gauge 和 map 在同一把锁里改，不会乱序
	wsmetrics.SetSubscribers(channel, len(set))
	if len(set) == 0 {
		delete(h.subs, channel)
	}
}

func (h *Hub) RemoveConn(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch, m := range h.subs {
		if _, ok := m[c]; !ok {
			continue
		}
		delete(m, c)
		wsmetrics.SetSubscribers(ch, len(m))
		if len(m) == 0 {
			delete(h.subs, ch)
		}
	}
}

// Subscribers 当前频道订阅数
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[normalizeChannel(channel)])
}

// Publish 把 payload 广播给频道的所有订阅者。
// 对每个 conn 都是非阻塞 Offer；慢客户端不会卡住广播，返回实际投递数。
func (h *Hub) Publish(channel string, payload []byte) int {
	channel = normalizeChannel(channel)

	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.subs[channel]))
	for c := range h.subs[channel] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	n := 0
	for _, c := range targets {
		if c.Offer(payload) {
			n++
		}
	}
	wsmetrics.Fanout(channel, n, len(targets)-n)
	return n
}
