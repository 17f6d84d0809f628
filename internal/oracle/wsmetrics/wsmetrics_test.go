package wsmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClients(t *testing.T) {
	before := testutil.ToFloat64(Clients)
	closes := testutil.ToFloat64(Disconnects.WithLabelValues("pong_timeout"))

	OnOpen()
	OnOpen()
	assert.Equal(t, before+2, testutil.ToFloat64(Clients))

	OnClose("pong_timeout")
	assert.Equal(t, before+1, testutil.ToFloat64(Clients))
	assert.Equal(t, closes+1, testutil.ToFloat64(Disconnects.WithLabelValues("pong_timeout")))
	OnClose("close")
}

func TestSetSubscribers(t *testing.T) {
	SetSubscribers("metrics-test", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(Subscribers.WithLabelValues("metrics-test")))
	SetSubscribers("metrics-test", 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(Subscribers.WithLabelValues("metrics-test")))
}

func TestFanout(t *testing.T) {
	Fanout("fanout-test", 2, 1)
	Fanout("fanout-test", 0, 0)
	assert.Equal(t, 2.0, testutil.ToFloat64(Events.WithLabelValues("fanout-test", "delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(Events.WithLabelValues("fanout-test", "dropped")))
}

func TestReply(t *testing.T) {
	before := testutil.ToFloat64(Replies.WithLabelValues("Pong"))
	Reply("Pong")
	assert.Equal(t, before+1, testutil.ToFloat64(Replies.WithLabelValues("Pong")))
}
