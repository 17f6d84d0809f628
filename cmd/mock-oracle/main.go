package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"
	"oracleprobe.com/internal/oracle/app"
	vipConfig "oracleprobe.com/pkg/config"
	"oracleprobe.com/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := app.Default()
	// 热更新回调跑在 fsnotify 协程里
	var current atomic.Pointer[app.App]
	_, err := vipConfig.LoadAndWatch("mock-oracle", &cfg,
		vipConfig.WithDefaults(app.SetDefaults),
		vipConfig.OnReload(func() {
			if a := current.Load(); a != nil {
				a.Reload(cfg)
			}
		}),
	)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.InitWithFile(cfg.Name, cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	a, err := app.New(cfg)
	if err != nil {
		logger.Fatal(ctx, "init mock oracle", zap.Error(err))
	}
	current.Store(a)
	if err := a.Run(ctx); err != nil {
		logger.Fatal(ctx, "mock oracle exited", zap.Error(err))
	}
	logger.Info(ctx, "mock oracle stopped")
}
