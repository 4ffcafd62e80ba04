package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/analysis"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/validation"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
	"github.com/google/uuid"
)

// Response headers describing an analysis.
const (
	HeaderRunID    = "X-Run-ID"
	HeaderStrategy = "X-Strategy"
	HeaderCache    = "X-Cache"
)

// CycleResponse is the body returned when a batch has a dependency cycle.
type CycleResponse struct {
	Error     string `json:"error"`
	CyclePath []int  `json:"cycle_path"`
	Message   string `json:"message"`
}

// ValidationResponse is the body returned for a malformed batch.
type ValidationResponse struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details"`
}

// Handler serves the task ranking endpoints.
type Handler struct {
	deps   Dependencies
	logger *slog.Logger
}

// NewHandler creates a new handler.
func NewHandler(deps Dependencies, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Scorer == nil {
		deps.Scorer = priority.NewScorer()
	}
	if deps.Decoder == nil {
		deps.Decoder = validation.NewDecoder()
	}
	return &Handler{deps: deps, logger: logger}
}

// Analyze handles POST /api/analyze/?strategy=<name>.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	tasks, ok := h.decodeBatch(w, r)
	if !ok {
		return
	}

	result, err := h.deps.Analyze.Handle(r.Context(), commands.AnalyzeTasksCommand{
		Tasks:    tasks,
		Strategy: r.URL.Query().Get("strategy"),
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeAnalysis(w, result)
}

// Suggest handles POST /api/suggest/.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	tasks, ok := h.decodeBatch(w, r)
	if !ok {
		return
	}

	result, err := h.deps.Suggest.Handle(r.Context(), commands.SuggestTasksCommand{Tasks: tasks})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeAnalysis(w, result)
}

// ListStrategies handles GET /api/strategies/.
func (h *Handler) ListStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Strategies.Handle(r.Context()))
}

// ListRuns handles GET /api/runs/?limit=.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := h.deps.ListRuns.Handle(r.Context(), queries.ListRunsQuery{Limit: limit})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun handles GET /api/runs/{id}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "run id must be a UUID")
		return
	}

	run, err := h.deps.GetRun.Handle(r.Context(), queries.GetRunQuery{ID: id})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.deps.Health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": string(observability.HealthStatusHealthy)})
		return
	}
	health := h.deps.Health.Check(r.Context())
	status := http.StatusOK
	if health.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// Metrics handles GET /metrics.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.deps.Metrics == nil {
		writeJSON(w, http.StatusOK, observability.MetricsSnapshot{})
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Metrics.Snapshot())
}

func (h *Handler) decodeBatch(w http.ResponseWriter, r *http.Request) ([]priority.Task, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeAPIError(w, ErrPayloadTooLarge)
			return nil, false
		}
		writeAPIError(w, ErrBadRequest)
		return nil, false
	}

	tasks, err := h.deps.Decoder.Decode(body, h.deps.Scorer.Today().Time())
	if err != nil {
		h.writeDomainError(w, r, err)
		return nil, false
	}
	return tasks, true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		cycleErr *priority.CycleError
		validErr *validation.ValidationError
	)
	switch {
	case errors.As(err, &cycleErr):
		writeJSON(w, http.StatusBadRequest, CycleResponse{
			Error:     priority.CycleDetectedMessage,
			CyclePath: cycleErr.Path,
			Message:   cycleErr.Message(),
		})
	case errors.As(err, &validErr):
		writeJSON(w, http.StatusBadRequest, ValidationResponse{
			Error:   "Invalid task batch.",
			Details: validErr.Errors,
		})
	case errors.Is(err, queries.ErrHistoryDisabled):
		writeAPIError(w, ErrHistoryUnavailable)
	case errors.Is(err, analysis.ErrRunNotFound):
		writeAPIError(w, ErrNotFound)
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"error", err,
		)
		writeAPIError(w, ErrInternalServer)
	}
}

func writeAnalysis(w http.ResponseWriter, result *commands.AnalyzeTasksResult) {
	w.Header().Set(HeaderRunID, result.RunID.String())
	w.Header().Set(HeaderStrategy, result.Strategy)
	if result.Cached {
		w.Header().Set(HeaderCache, "HIT")
	} else {
		w.Header().Set(HeaderCache, "MISS")
	}
	tasks := result.Tasks
	if tasks == nil {
		tasks = []priority.ScoredTask{}
	}
	writeJSON(w, http.StatusOK, tasks)
}
