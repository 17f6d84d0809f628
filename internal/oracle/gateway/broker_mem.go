package gateway

import (
	"context"
	"sync"

	"oracleprobe.com/pkg/safe"
)

type MemBroker struct {
	mu   sync.RWMutex
	subs map[string][]chan Message
}

func NewMemBroker() *MemBroker {
	return &MemBroker{subs: make(map[string][]chan Message)}
}

func (b *MemBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := Message{Topic: topic, Payload: payload}

	// 持读锁发送，避免和 unsubscribe 的 close(ch) 竞争
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[topic] {
		// fanout：at-most-once，慢订阅者直接丢
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (b *MemBroker) Subscribe(ctx context.Context, topics []string) (<-chan Message, error) {
	ch := make(chan Message, 4096)
	b.mu.Lock()
	for _, t := range topics {
		b.subs[t] = append(b.subs[t], ch)
	}
	b.mu.Unlock()

	safe.GoCtx(ctx, func(ctx context.Context) {
		<-ctx.Done()
		b.unsubscribe(ch, topics)
	})

	return ch, nil
}

func (b *MemBroker) unsubscribe(ch chan Message, topics []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range topics {
		list := b.subs[t]
		for i, c := range list {
			if c == ch {
				list = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(list) == 0 {
			delete(b.subs, t)
		} else {
			b.subs[t] = list
		}
	}
	close(ch)
}

func (b *MemBroker) Close() error { return nil }
