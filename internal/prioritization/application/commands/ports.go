package commands

import (
	"context"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/felixgeelhaar/taskrank/internal/shared/domain"
)

// ResultCache stores ranked batches by content key.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]priority.ScoredTask, bool, error)
	Set(ctx context.Context, key string, tasks []priority.ScoredTask) error
}

// EventDispatcher publishes domain events.
type EventDispatcher interface {
	Dispatch(ctx context.Context, events ...domain.DomainEvent) error
}
