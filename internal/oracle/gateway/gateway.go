package gateway

import (
	"context"

	"go.uber.org/zap"
	"oracleprobe.com/pkg/logger"
)

// Publisher 网关只需要 hub 的广播能力
type Publisher interface {
	Publish(channel string, payload []byte) int
}

const (
	TopicOracle = "oracle"
	TopicWallet = "wallet"
)

type Gateway struct {
	broker Broker
	hub    Publisher
	topics []string
}

func New(b Broker, hub Publisher, topics ...string) *Gateway {
	if len(topics) == 0 {
		topics = []string{TopicOracle, TopicWallet}
	}
	return &Gateway{broker: b, hub: hub, topics: topics}
}

// Run 把 broker 上的消息原样转给 hub，topic 即频道名。ctx 结束后返回。
func (g *Gateway) Run(ctx context.Context) error {
	msgs, err := g.broker.Subscribe(ctx, g.topics)
	if err != nil {
		return err
	}
	logger.Info(ctx, "gateway started", zap.Strings("topics", g.topics))

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			n := g.hub.Publish(m.Topic, m.Payload)
			logger.Debug(ctx, "gateway publish", zap.String("topic", m.Topic), zap.Int("delivered", n))
		}
	}
}
