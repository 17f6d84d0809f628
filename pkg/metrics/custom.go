package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry 探针自己的 registry：一次性任务，结束时整体 push 到 Pushgateway
var Registry = prometheus.NewRegistry()

var (
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oracleprobe",
			Name:      "ws_events_total",
			Help:      "Total websocket events printed by the listener.",
		},
		[]string{"channel"},
	)

	ListenerExitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oracleprobe",
			Name:      "listener_exit_total",
			Help:      "Listener exits partitioned by final state.",
		},
		[]string{"state"}, // idle/failed/stopped
	)

	IntentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oracleprobe",
			Name:      "intent_requests_total",
			Help:      "Intent POSTs partitioned by outcome.",
		},
		[]string{"outcome"}, // ok/error
	)

	IntentDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "oracleprobe",
		Name:      "intent_duration_seconds",
		Help:      "Intent POST round trip latency.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms ~ 16s
	})
)

func init() {
	Registry.MustRegister(EventsTotal, ListenerExitTotal, IntentTotal, IntentDuration)
}

func ObserveIntent(dur time.Duration, err error) {
	IntentDuration.Observe(dur.Seconds())
	if err != nil {
		IntentTotal.WithLabelValues("error").Inc()
		return
	}
	IntentTotal.WithLabelValues("ok").Inc()
}

// Push 把 Registry 推到 Pushgateway；url 为空直接跳过
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(Registry).PushContext(ctx)
}
