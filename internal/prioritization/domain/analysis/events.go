package analysis

import (
	"github.com/felixgeelhaar/taskrank/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "AnalysisRun"

	RoutingKeyBatchAnalyzed = "priority.batch.analyzed"
	RoutingKeyCycleDetected = "priority.cycle.detected"
)

// BatchAnalyzed is emitted when a batch has been ranked.
type BatchAnalyzed struct {
	domain.BaseEvent
	RunID      uuid.UUID `json:"run_id"`
	Strategy   string    `json:"strategy"`
	TaskCount  int       `json:"task_count"`
	TopTaskIDs []int     `json:"top_task_ids"`
}

// NewBatchAnalyzed creates a BatchAnalyzed event.
func NewBatchAnalyzed(runID uuid.UUID, strategy string, taskCount int, topTaskIDs []int) BatchAnalyzed {
	if topTaskIDs == nil {
		topTaskIDs = []int{}
	}
	return BatchAnalyzed{
		BaseEvent:  domain.NewBaseEvent(runID, AggregateType, RoutingKeyBatchAnalyzed),
		RunID:      runID,
		Strategy:   strategy,
		TaskCount:  taskCount,
		TopTaskIDs: topTaskIDs,
	}
}

// CycleDetected is emitted when a batch was rejected for a dependency cycle.
type CycleDetected struct {
	domain.BaseEvent
	RunID     uuid.UUID `json:"run_id"`
	CyclePath []int     `json:"cycle_path"`
}

// NewCycleDetected creates a CycleDetected event.
func NewCycleDetected(runID uuid.UUID, cyclePath []int) CycleDetected {
	return CycleDetected{
		BaseEvent: domain.NewBaseEvent(runID, AggregateType, RoutingKeyCycleDetected),
		RunID:     runID,
		CyclePath: cyclePath,
	}
}
