package gateway

import (
	"context"
	"strings"

	"github.com/nats-io/nats.go"
	"oracleprobe.com/pkg/safe"
)

type NatsBroker struct {
	nc     *nats.Conn
	prefix string // subject 前缀，隔离不同环境
}

func NewNatsBroker(url, prefix string, opts ...nats.Option) (*NatsBroker, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NatsBroker{nc: nc, prefix: prefix}, nil
}

func (b *NatsBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.nc.Publish(b.subject(topic), payload)
}

func (b *NatsBroker) Subscribe(ctx context.Context, topics []string) (<-chan Message, error) {
	out := make(chan Message, 4096)
	done := make(chan struct{})

	subs := make([]*nats.Subscription, 0, len(topics))
	for _, t := range topics {
		sub, err := b.nc.Subscribe(b.subject(t), func(m *nats.Msg) {
			msg := Message{Topic: b.topic(m.Subject), Payload: m.Data}
			// at-most-once：慢消费者直接丢，避免把 NATS 回调卡死
			select {
			case <-done:
			case out <- msg:
			default:
			}
		})
		if err != nil {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			return nil, err
		}
		subs = append(subs, sub)
	}

	safe.Go(func() {
		<-ctx.Done()
		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		close(out)
	})

	return out, nil
}

func (b *NatsBroker) Close() error {
	if b.nc != nil {
		_ = b.nc.Drain()
		b.nc.Close()
	}
	return nil
}

func (b *NatsBroker) subject(topic string) string {
	subj := strings.ReplaceAll(topic, ":", ".")
	if b.prefix == "" {
		return subj
	}
	return b.prefix + "." + subj
}

func (b *NatsBroker) topic(subject string) string {
	if b.prefix != "" {
		subject = strings.TrimPrefix(subject, b.prefix+".")
	}
	return strings.ReplaceAll(subject, ".", ":")
}
