// Package wsmetrics mock oracle 推送侧的指标，挂在默认 registry 上，由 /metrics 暴露。
package wsmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Clients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mockoracle_ws_clients",
		Help: "Connected websocket clients",
	})
	Disconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mockoracle_ws_disconnects_total",
		Help: "Client disconnects by reason (close, pong_timeout, read_error, shutdown)",
	}, []string{"reason"})

	Subscribers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mockoracle_ws_subscribers",
		Help: "Current subscribers per channel",
	}, []string{"channel"})

	// Events 每个订阅者一次：delivered 进了发送队列，dropped 队列满被丢
	Events = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mockoracle_ws_events_total",
		Help: "Channel events fanned out to subscribers",
	}, []string{"channel", "result"})

	Replies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mockoracle_ws_replies_total",
		Help: "Control replies sent to a single client (Pong, Error)",
	}, []string{"type"})
)

func OnOpen() { Clients.Inc() }

func OnClose(reason string) {
	Clients.Dec()
	Disconnects.WithLabelValues(reason).Inc()
}

func SetSubscribers(channel string, n int) {
	Subscribers.WithLabelValues(channel).Set(float64(n))
}

func Fanout(channel string, delivered, dropped int) {
	if delivered > 0 {
		Events.WithLabelValues(channel, "delivered").Add(float64(delivered))
	}
	if dropped > 0 {
		Events.WithLabelValues(channel, "dropped").Add(float64(dropped))
	}
}

func Reply(typ string) { Replies.WithLabelValues(typ).Inc() }
