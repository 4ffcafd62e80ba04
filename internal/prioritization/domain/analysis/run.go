// Package analysis models the record kept for every ranking request.
package analysis

import (
	"errors"
	"slices"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/felixgeelhaar/taskrank/internal/shared/domain"
	"github.com/google/uuid"
)

// TopTaskLimit is how many leading task ids a run remembers.
const TopTaskLimit = 5

// ErrRunNotFound is returned when no run matches an id.
var ErrRunNotFound = errors.New("analysis run not found")

// Run is the metadata of one analyze or suggest call. Task payloads are
// never part of it.
type Run struct {
	domain.BaseAggregateRoot
	strategy   string
	taskCount  int
	cyclePath  []int
	topTaskIDs []int
}

// NewRankedRun records a batch that was scored successfully.
func NewRankedRun(strategy string, ranked []priority.ScoredTask) *Run {
	top := priority.IDs(ranked)
	if len(top) > TopTaskLimit {
		top = top[:TopTaskLimit]
	}

	run := &Run{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		strategy:          strategy,
		taskCount:         len(ranked),
		topTaskIDs:        top,
	}
	run.AddDomainEvent(NewBatchAnalyzed(run.ID(), strategy, run.taskCount, top))
	return run
}

// NewCycleRun records a batch rejected because of a dependency cycle.
func NewCycleRun(strategy string, taskCount int, cyclePath []int) *Run {
	run := &Run{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		strategy:          strategy,
		taskCount:         taskCount,
		cyclePath:         slices.Clone(cyclePath),
	}
	run.AddDomainEvent(NewCycleDetected(run.ID(), run.cyclePath))
	return run
}

// RehydrateRun rebuilds a run from storage.
func RehydrateRun(id uuid.UUID, strategy string, taskCount int, cyclePath, topTaskIDs []int, createdAt time.Time) *Run {
	return &Run{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(id, createdAt),
		strategy:          strategy,
		taskCount:         taskCount,
		cyclePath:         cyclePath,
		topTaskIDs:        topTaskIDs,
	}
}

func (r *Run) Strategy() string    { return r.strategy }
func (r *Run) TaskCount() int      { return r.taskCount }
func (r *Run) CyclePath() []int    { return slices.Clone(r.cyclePath) }
func (r *Run) TopTaskIDs() []int   { return slices.Clone(r.topTaskIDs) }
func (r *Run) CycleDetected() bool { return len(r.cyclePath) > 0 }
