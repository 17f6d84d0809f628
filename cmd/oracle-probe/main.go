package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"oracleprobe.com/internal/probe"
	probeConfig "oracleprobe.com/internal/probe/config"
	vipConfig "oracleprobe.com/pkg/config"
	"oracleprobe.com/pkg/logger"
	"oracleprobe.com/pkg/metrics"
)

func main() {
	// Ctrl+C 直接取消整个流程
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := probeConfig.Default()
	if _, err := vipConfig.Load("oracle-probe", &cfg, vipConfig.WithDefaults(probeConfig.SetDefaults)); err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.InitWithFile(cfg.Name, cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	rep, err := probe.New(cfg, os.Stdout).Run(ctx)
	pushMetrics(cfg)
	if err != nil {
		logger.Error(ctx, "probe aborted", zap.Error(err))
		logger.Sync()
		log.Fatalf("probe: %v", err)
	}
	logger.Info(ctx, "probe report",
		zap.Int("intents", len(rep.Intents)),
		zap.Int64("events", rep.Events),
		zap.String("listener", rep.Listener.String()),
		zap.Duration("elapsed", rep.Elapsed),
	)
}

func pushMetrics(cfg probeConfig.ProbeConfig) {
	// 进程马上退出，单独给 push 一个超时，不受 Ctrl+C 影响
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metrics.Push(ctx, cfg.Metrics.Pushgateway, cfg.Metrics.Job); err != nil {
		logger.Warn(ctx, "push metrics failed", zap.String("gateway", cfg.Metrics.Pushgateway), zap.Error(err))
	}
}
