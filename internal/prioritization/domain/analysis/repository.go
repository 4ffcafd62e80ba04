package analysis

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores analysis runs. Runs are append-only.
type Repository interface {
	Save(ctx context.Context, run *Run) error
	FindByID(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRecent(ctx context.Context, limit int) ([]*Run, error)
}
