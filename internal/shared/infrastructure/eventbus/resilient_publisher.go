package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// RetryConfig configures retry and circuit breaking around a Publisher.
type RetryConfig struct {
	InitialInterval  time.Duration
	MaxInterval      time.Duration
	MaxElapsedTime   time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultRetryConfig returns the retry settings used for the broker.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:  100 * time.Millisecond,
		MaxInterval:      2 * time.Second,
		MaxElapsedTime:   10 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// ResilientPublisher retries failed publishes with exponential backoff and
// stops calling the broker while its circuit breaker is open.
type ResilientPublisher struct {
	inner   Publisher
	breaker *gobreaker.CircuitBreaker[struct{}]
	cfg     RetryConfig
	logger  *slog.Logger
}

// NewResilientPublisher wraps inner.
func NewResilientPublisher(inner Publisher, cfg RetryConfig, logger *slog.Logger) *ResilientPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultRetryConfig().FailureThreshold
	}
	threshold := cfg.FailureThreshold

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "eventbus",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("publisher circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about broker health.
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})

	return &ResilientPublisher{inner: inner, breaker: breaker, cfg: cfg, logger: logger}
}

// Publish sends the message through the breaker, retrying transient errors.
func (p *ResilientPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	attempt := 0
	operation := func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		attempt++

		_, err := p.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, p.inner.Publish(ctx, routingKey, payload)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		p.logger.Debug("publish attempt failed",
			"routing_key", routingKey,
			"attempt", attempt,
			"error", err,
		)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.cfg.InitialInterval
	policy.MaxInterval = p.cfg.MaxInterval
	policy.MaxElapsedTime = p.cfg.MaxElapsedTime

	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}

// State returns the breaker state.
func (p *ResilientPublisher) State() gobreaker.State {
	return p.breaker.State()
}

// Close closes the wrapped publisher.
func (p *ResilientPublisher) Close() error {
	return p.inner.Close()
}
