package gateway

import "context"

type Message struct {
	Topic   string
	Payload []byte
}

// Broker 事件总线：单机用 MemBroker，多实例用 NatsBroker
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe 返回的 channel 在 ctx 结束后关闭
	Subscribe(ctx context.Context, topics []string) (<-chan Message, error)
	Close() error
}
