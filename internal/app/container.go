package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/analysis"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/infrastructure/cache"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/infrastructure/persistence"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/validation"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/taskrank/pkg/config"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Optional infrastructure; nil when not configured.
	DBConn      database.Connection
	RedisClient *redis.Client

	RunRepo        analysis.Repository
	ResultCache    commands.ResultCache
	EventPublisher eventbus.Publisher

	Decoder *validation.Decoder
	Scorer  *priority.Scorer

	// Command handlers
	AnalyzeTasksHandler *commands.AnalyzeTasksHandler
	SuggestTasksHandler *commands.SuggestTasksHandler

	// Query handlers
	ListStrategiesHandler *queries.ListStrategiesHandler
	ListRunsHandler       *queries.ListRunsHandler
	GetRunHandler         *queries.GetRunHandler
}

// NewContainer wires the application from configuration. History uses
// SQLite in local mode and PostgreSQL otherwise. Redis and RabbitMQ are
// only used when their URLs are set; in development an unreachable one is
// logged and skipped.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
		Decoder: validation.NewDecoder(
			validation.WithDefaultDueDays(cfg.DefaultDueDays),
			validation.WithMaxBatchSize(cfg.MaxBatchSize),
		),
		Scorer: priority.NewScorer(),
	}

	if cfg.HistoryEnabled {
		if err := c.initHistory(ctx); err != nil {
			return nil, err
		}
	}

	if cfg.RedisURL != "" {
		if err := c.initCache(ctx); err != nil {
			c.Close()
			return nil, err
		}
	}

	if err := c.initEvents(); err != nil {
		c.Close()
		return nil, err
	}

	dispatcher := eventbus.NewDispatcher(c.EventPublisher, logger)

	c.AnalyzeTasksHandler = commands.NewAnalyzeTasksHandler(c.Scorer, c.RunRepo, c.ResultCache, dispatcher, c.Metrics, logger)
	c.SuggestTasksHandler = commands.NewSuggestTasksHandler(c.AnalyzeTasksHandler)

	c.ListStrategiesHandler = queries.NewListStrategiesHandler()
	c.ListRunsHandler = queries.NewListRunsHandler(c.RunRepo)
	c.GetRunHandler = queries.NewGetRunHandler(c.RunRepo)

	return c, nil
}

func (c *Container) initHistory(ctx context.Context) error {
	cfg := c.Config
	conn, err := database.Open(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}

	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to migrate history database: %w", err)
	}

	repo, err := persistence.NewRunRepository(conn)
	if err != nil {
		_ = conn.Close()
		return err
	}

	c.DBConn = conn
	c.RunRepo = repo
	c.Health.Register("database", observability.PingChecker(conn.Ping, false))
	c.Logger.Info("history store ready", "driver", conn.Driver().String())
	return nil
}

func (c *Container) initCache(ctx context.Context) error {
	client, err := cache.Connect(ctx, c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, result cache disabled", "error", err)
		return nil
	}

	cacheCfg := cache.DefaultConfig()
	cacheCfg.TTL = c.Config.CacheTTL
	resultCache := cache.NewRedisResultCache(client, cacheCfg, c.Logger)

	c.RedisClient = client
	c.ResultCache = resultCache
	c.Health.Register("cache", observability.PingChecker(resultCache.Ping, true))
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) initEvents() error {
	if c.Config.RabbitMQURL == "" {
		bus := eventbus.NewInProcessBus(c.Logger)
		bus.Subscribe("priority.#", func(ctx context.Context, env eventbus.ReceivedEnvelope) error {
			c.Logger.DebugContext(ctx, "domain event",
				"routing_key", env.RoutingKey,
				"event_id", env.EventID,
			)
			return nil
		})
		c.EventPublisher = bus
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, eventbus.ExchangeName, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
		return nil
	}

	c.EventPublisher = eventbus.NewResilientPublisher(publisher, eventbus.DefaultRetryConfig(), c.Logger)
	c.Health.Register("events", observability.PingChecker(publisher.Ping, true))
	return nil
}

// HistoryEnabled reports whether analysis runs are being stored.
func (c *Container) HistoryEnabled() bool {
	return c.RunRepo != nil
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBConn.Driver().String())
		}
	}
}
