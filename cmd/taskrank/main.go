package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/taskrank/adapter/cli"
	"github.com/felixgeelhaar/taskrank/internal/app"
	"github.com/felixgeelhaar/taskrank/pkg/config"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}

	cli.SetApp(cli.NewApp(container))

	code := 0
	if err := cli.ExecuteContext(ctx); err != nil {
		code = 1
	}
	container.Close()
	os.Exit(code)
}

func newLogger(cfg *config.Config) *slog.Logger {
	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
		// stdout carries command output
		logCfg.Output = os.Stderr
	}
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.ServiceVersion = cli.Version
	return observability.NewLogger(logCfg)
}
