package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	mcplocal "github.com/felixgeelhaar/taskrank/adapter/mcp"
	"github.com/felixgeelhaar/taskrank/internal/app"
	mcpinternal "github.com/felixgeelhaar/taskrank/internal/mcp"
	"github.com/felixgeelhaar/taskrank/pkg/config"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		observability.LoggerFromEnv().Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.ServiceName = "taskrank-mcp"
	logCfg.ServiceVersion = version
	logger := observability.NewLogger(logCfg)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	deps := mcplocal.DependenciesFromContainer(container)
	if err := mcpinternal.Serve(ctx, cfg, deps, version, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		container.Close()
		os.Exit(1)
	}
}
