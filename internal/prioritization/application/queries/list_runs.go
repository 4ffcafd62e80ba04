package queries

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/analysis"
	"github.com/google/uuid"
)

const (
	DefaultRunLimit = 20
	MaxRunLimit     = 200
)

// ErrHistoryDisabled is returned when no run repository is configured.
var ErrHistoryDisabled = errors.New("analysis history is disabled")

// RunDTO is the read model of an analysis run.
type RunDTO struct {
	ID            uuid.UUID `json:"id"`
	Strategy      string    `json:"strategy"`
	TaskCount     int       `json:"task_count"`
	CycleDetected bool      `json:"cycle_detected"`
	CyclePath     []int     `json:"cycle_path"`
	TopTaskIDs    []int     `json:"top_task_ids"`
	CreatedAt     time.Time `json:"created_at"`
}

func toRunDTO(r *analysis.Run) RunDTO {
	dto := RunDTO{
		ID:            r.ID(),
		Strategy:      r.Strategy(),
		TaskCount:     r.TaskCount(),
		CycleDetected: r.CycleDetected(),
		CyclePath:     r.CyclePath(),
		TopTaskIDs:    r.TopTaskIDs(),
		CreatedAt:     r.CreatedAt(),
	}
	if dto.CyclePath == nil {
		dto.CyclePath = []int{}
	}
	if dto.TopTaskIDs == nil {
		dto.TopTaskIDs = []int{}
	}
	return dto
}

// ListRunsQuery selects the most recent runs.
type ListRunsQuery struct {
	Limit int
}

// ListRunsHandler lists recent analysis runs, newest first.
type ListRunsHandler struct {
	runs analysis.Repository
}

// NewListRunsHandler creates a new handler. runs may be nil when history
// is disabled.
func NewListRunsHandler(runs analysis.Repository) *ListRunsHandler {
	return &ListRunsHandler{runs: runs}
}

// Handle executes the query.
func (h *ListRunsHandler) Handle(ctx context.Context, query ListRunsQuery) ([]RunDTO, error) {
	if h.runs == nil {
		return nil, ErrHistoryDisabled
	}

	limit := query.Limit
	switch {
	case limit <= 0:
		limit = DefaultRunLimit
	case limit > MaxRunLimit:
		limit = MaxRunLimit
	}

	runs, err := h.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]RunDTO, len(runs))
	for i, r := range runs {
		out[i] = toRunDTO(r)
	}
	return out, nil
}

// GetRunQuery selects one run.
type GetRunQuery struct {
	ID uuid.UUID
}

// GetRunHandler loads a single analysis run.
type GetRunHandler struct {
	runs analysis.Repository
}

// NewGetRunHandler creates a new handler.
func NewGetRunHandler(runs analysis.Repository) *GetRunHandler {
	return &GetRunHandler{runs: runs}
}

// Handle executes the query. Missing runs yield analysis.ErrRunNotFound.
func (h *GetRunHandler) Handle(ctx context.Context, query GetRunQuery) (*RunDTO, error) {
	if h.runs == nil {
		return nil, ErrHistoryDisabled
	}
	run, err := h.runs.FindByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	dto := toRunDTO(run)
	return &dto, nil
}
