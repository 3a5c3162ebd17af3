// Package main 主题后台扫描进程入口。
// 周期性推进生命周期、执行时间流逝演化、检测冲突并清理过期主题。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rpg-motif-api/internal/config"
	"rpg-motif-api/internal/wire"
	"rpg-motif-api/pkg/logger"
	"rpg-motif-api/pkg/tracer"

	"github.com/joho/godotenv"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.FromContext(ctx)
	log.Info("starting motif-worker",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name + "-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	worker, cleanup, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize worker", err)
	}
	defer cleanup()

	interval := cfg.Motif.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Info("worker sweep loop started", "interval", interval.String())

	// 启动后立即执行一轮，之后按 ticker 周期执行
	sweep(ctx, worker)

	for {
		select {
		case <-ticker.C:
			sweep(ctx, worker)
		case <-quit:
			log.Info("worker shutting down")
			cancel()
			return
		}
	}
}

// sweep 执行一轮完整的后台维护。
// 各阶段相互独立，单阶段失败不阻断后续阶段。
func sweep(ctx context.Context, w *wire.Worker) {
	start := time.Now()

	if result, err := w.Scheduler.Advance(ctx); err != nil {
		logger.Error(ctx, "lifecycle advance failed", err)
	} else {
		logger.Debug(ctx, "lifecycle advance done",
			"advanced", result.Advanced, "skipped", result.Skipped, "failures", len(result.Failures))
	}

	if result, err := w.Engine.ProcessTimePassage(ctx); err != nil {
		logger.Error(ctx, "time passage evolution failed", err)
	} else {
		logger.Debug(ctx, "time passage evolution done",
			"processed", result.Processed, "fired", result.Fired)
	}

	if conflicts, err := w.Detector.Detect(ctx); err != nil {
		logger.Error(ctx, "conflict detection failed", err)
	} else {
		logger.Debug(ctx, "conflict detection done", "active_conflicts", len(conflicts))
	}

	if result, err := w.Scheduler.Cleanup(ctx); err != nil {
		logger.Error(ctx, "cleanup failed", err)
	} else {
		logger.Debug(ctx, "cleanup done",
			"expired", result.Expired, "removed", result.Removed)
	}

	logger.Info(ctx, "sweep completed", "duration_ms", time.Since(start).Milliseconds())
}
