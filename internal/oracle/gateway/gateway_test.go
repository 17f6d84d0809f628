package gateway

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordHub struct {
	mu  sync.Mutex
	got []Message
}

func (r *recordHub) Publish(channel string, payload []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, Message{Topic: channel, Payload: payload})
	return 1
}

func (r *recordHub) snapshot() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.got...)
}

func TestMemBroker_FanoutAndUnsubscribe(t *testing.T) {
	b := NewMemBroker()
	ctx, cancel := context.WithCancel(context.Background())

	ch1, err := b.Subscribe(ctx, []string{"oracle"})
	require.NoError(t, err)
	ch2, err := b.Subscribe(context.Background(), []string{"oracle", "wallet"})
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), "oracle", []byte(`{"a":1}`)))
	assert.Equal(t, `{"a":1}`, string((<-ch1).Payload))
	assert.Equal(t, `{"a":1}`, string((<-ch2).Payload))

	cancel()
	// ctx 结束后 channel 被关闭
	select {
	case _, ok := <-ch1:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}

	require.NoError(t, b.Publish(context.Background(), "wallet", []byte(`{"b":2}`)))
	m := <-ch2
	assert.Equal(t, "wallet", m.Topic)
}

func TestMemBroker_PublishCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMemBroker().Publish(ctx, "oracle", nil), context.Canceled)
}

func TestGateway_BridgesInOrder(t *testing.T) {
	b := NewMemBroker()
	hub := &recordHub{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- New(b, hub).Run(ctx) }()

	// 等订阅登记
	require.Eventually(t, func() bool {
		b.mu.RLock()
		defer b.mu.RUnlock()
		return len(b.subs["oracle"]) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, b.Publish(ctx, "oracle", []byte("1")))
	require.NoError(t, b.Publish(ctx, "oracle", []byte("2")))
	require.NoError(t, b.Publish(ctx, "wallet", []byte("3")))

	require.Eventually(t, func() bool { return len(hub.snapshot()) == 3 }, time.Second, 10*time.Millisecond)
	got := hub.snapshot()
	assert.Equal(t, "1", string(got[0].Payload))
	assert.Equal(t, "2", string(got[1].Payload))
	assert.Equal(t, "wallet", got[2].Topic)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("gateway did not stop")
	}
}

func TestNatsBroker_SubjectMapping(t *testing.T) {
	b := &NatsBroker{prefix: "mock"}
	assert.Equal(t, "mock.oracle", b.subject("oracle"))
	assert.Equal(t, "mock.wallet.user1", b.subject("wallet:user1"))
	assert.Equal(t, "wallet:user1", b.topic("mock.wallet.user1"))

	b = &NatsBroker{}
	assert.Equal(t, "oracle", b.subject("oracle"))
	assert.Equal(t, "oracle", b.topic("oracle"))
}
