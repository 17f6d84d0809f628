// Package app 组装 mock oracle：gin http + ws hub + broker 网关，
// 用 errgroup 管理生命周期，任一组件退出整体退出。
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"oracleprobe.com/internal/oracle/api"
	"oracleprobe.com/internal/oracle/gateway"
	"oracleprobe.com/internal/oracle/ws"
	"oracleprobe.com/pkg/logger"
	"oracleprobe.com/pkg/ratelimit"
)

type App struct {
	cfg    MockConfig
	State  *api.State
	Hub    *ws.Hub
	Limits *ratelimit.Store
	broker gateway.Broker
}

func New(cfg MockConfig) (*App, error) {
	b, err := newBroker(cfg.Broker)
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:    cfg,
		State:  api.NewState(cfg.Balance, cfg.EventDelay),
		Hub:    ws.NewHub(),
		Limits: ratelimit.NewStore(limitOf(cfg.RateLimit)),
		broker: b,
	}, nil
}

// rps<=0 不限流
func limitOf(c RateLimitConfig) (rate.Limit, int) {
	if c.RPS <= 0 {
		return rate.Inf, c.Burst
	}
	return rate.Limit(c.RPS), c.Burst
}

func newBroker(c BrokerConfig) (gateway.Broker, error) {
	if c.NatsURL == "" {
		return gateway.NewMemBroker(), nil
	}
	return gateway.NewNatsBroker(c.NatsURL, c.Prefix)
}

// Reload 配置热更新回调：balance / event_delay / 限流参数，其余要重启
func (a *App) Reload(cfg MockConfig) {
	a.State.Set(cfg.Balance, cfg.EventDelay)
	a.Limits.SetLimit(limitOf(cfg.RateLimit))
	logger.Info(context.Background(), "mock oracle reloaded",
		zap.Uint64("balance", cfg.Balance),
		zap.Duration("event_delay", cfg.EventDelay),
		zap.Float64("rps", cfg.RateLimit.RPS),
	)
}

// Run 监听 cfg.HTTP.Addr，直到 ctx 结束或某个组件出错
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.HTTP.Addr)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	defer a.broker.Close()

	g, ctx := errgroup.WithContext(ctx)

	h := api.NewHandler(ctx, a.broker, a.State)
	srv := api.NewServer(ln.Addr().String(), api.NewRouter(h, ws.NewServer(ctx, a.Hub), a.Limits))

	g.Go(func() error {
		return gateway.New(a.broker, a.Hub).Run(ctx)
	})
	g.Go(func() error {
		logger.Info(ctx, "mock oracle listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
