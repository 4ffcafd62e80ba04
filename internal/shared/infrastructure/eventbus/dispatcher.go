package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/taskrank/internal/shared/domain"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// Dispatcher turns domain events into envelopes and publishes them under
// their routing key.
type Dispatcher struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher over publisher.
func NewDispatcher(publisher Publisher, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{publisher: publisher, logger: logger}
}

// Dispatch publishes every event. It keeps going after a failure and returns
// the joined errors.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...domain.DomainEvent) error {
	var errs []error
	for _, event := range events {
		env := domain.NewEnvelope(event)
		if env.Metadata == (domain.EventMetadata{}) {
			env.Metadata = domain.EventMetadata{
				CorrelationID: observability.CorrelationIDFromContext(ctx),
				RequestID:     observability.RequestIDFromContext(ctx),
			}
		}

		payload, err := json.Marshal(env)
		if err != nil {
			errs = append(errs, fmt.Errorf("marshal %s: %w", env.RoutingKey, err))
			continue
		}

		if err := d.publisher.Publish(ctx, env.RoutingKey, payload); err != nil {
			d.logger.WarnContext(ctx, "event publish failed",
				"routing_key", env.RoutingKey,
				"event_id", env.EventID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("publish %s: %w", env.RoutingKey, err))
			continue
		}

		d.logger.DebugContext(ctx, "event published",
			"routing_key", env.RoutingKey,
			"event_id", env.EventID,
		)
	}
	return errors.Join(errs...)
}
