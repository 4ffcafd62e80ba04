// Package cache keeps ranked batches in Redis so that repeated requests for
// the same batch skip scoring.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("result cache unavailable")

// Config tunes the cache and its breaker.
type Config struct {
	TTL              time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultConfig returns a ten minute TTL and a breaker that opens after
// five consecutive failures for thirty seconds.
func DefaultConfig() Config {
	return Config{
		TTL:              10 * time.Minute,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// RedisResultCache implements the analyze result cache on Redis. Calls go
// through a circuit breaker so a dead Redis costs one fast failure per
// request instead of a dial timeout.
type RedisResultCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

// NewRedisResultCache creates a cache on an existing client.
func NewRedisResultCache(client *redis.Client, cfg Config, logger *slog.Logger) *RedisResultCache {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        "redis-result-cache",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &RedisResultCache{
		client:  client,
		ttl:     cfg.TTL,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		logger:  logger,
	}
}

// Get returns the cached ranking for key. A miss is (nil, false, nil).
func (c *RedisResultCache) Get(ctx context.Context, key string) ([]priority.ScoredTask, bool, error) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.client.Get(ctx, key).Bytes()
	})
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case isBreakerOpen(err):
		return nil, false, ErrUnavailable
	case err != nil:
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var tasks []priority.ScoredTask
	if err := json.Unmarshal(data, &tasks); err != nil {
		c.logger.WarnContext(ctx, "discarding unreadable cache entry", "key", key, "error", err)
		return nil, false, nil
	}
	return tasks, true, nil
}

// Set stores a ranking under key for the configured TTL.
func (c *RedisResultCache) Set(ctx context.Context, key string, tasks []priority.ScoredTask) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return err
	}

	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, key, data, c.ttl).Err()
	})
	if isBreakerOpen(err) {
		return ErrUnavailable
	}
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks connectivity, bypassing the breaker.
func (c *RedisResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// State reports the breaker state.
func (c *RedisResultCache) State() gobreaker.State {
	return c.breaker.State()
}

func isBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
