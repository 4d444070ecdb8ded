package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"news-sentiment-index/internal/interfaces"
	"news-sentiment-index/internal/logger"
	"news-sentiment-index/internal/scheduler"
	"news-sentiment-index/internal/store"
	"news-sentiment-index/internal/trace"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	mode := flag.String("mode", "", "override config mode: RUN, DAEMON or RECOMPUTE")
	flag.Parse()

	if err := run(*configPath, *mode); err != nil {
		fmt.Fprintf(os.Stderr, "indexer: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, modeOverride string) error {
	if err := initializeSystem(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer trace.Shutdown(context.Background())

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}
	if modeOverride != "" {
		cfg.Mode = modeOverride
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	pipe, db, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "Shutting down...")
		cancel()
	}()

	switch cfg.Mode {
	case "RECOMPUTE":
		return pipe.Recompute(ctx)
	case "DAEMON":
		return runDaemon(ctx, cfg, pipe)
	default:
		return pipe.RunOnce(ctx)
	}
}

func runDaemon(ctx context.Context, cfg *store.Config, pipe interfaces.Pipeline) error {
	sched, err := scheduler.New(cfg.Schedule.Timezone)
	if err != nil {
		return err
	}
	err = sched.Schedule(cfg.Schedule.DailyTime, func() {
		if err := pipe.RunOnce(ctx); err != nil {
			logger.ErrorWithErr(ctx, "Scheduled run failed", err)
		}
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "Daemon started", "daily_time", cfg.Schedule.DailyTime, "timezone", cfg.Schedule.Timezone)
	sched.Start()
	defer sched.Stop()

	// Kick off one run immediately so a fresh deployment starts draining
	// the backlog without waiting a day.
	if err := pipe.RunOnce(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Initial run failed", err)
	}

	<-ctx.Done()
	return nil
}
