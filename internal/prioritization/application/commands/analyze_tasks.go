package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/analysis"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
	"github.com/google/uuid"
)

// AnalyzeTasksCommand asks for a batch to be ranked.
type AnalyzeTasksCommand struct {
	Tasks    []priority.Task
	Strategy string
}

// AnalyzeTasksResult is a ranked batch.
type AnalyzeTasksResult struct {
	RunID    uuid.UUID
	Strategy string
	Tasks    []priority.ScoredTask
	Cached   bool
}

// AnalyzeTasksHandler checks a batch for dependency cycles and ranks it.
// History, cache and events are optional; a nil collaborator is skipped.
type AnalyzeTasksHandler struct {
	scorer  *priority.Scorer
	runs    analysis.Repository
	cache   ResultCache
	events  EventDispatcher
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewAnalyzeTasksHandler creates a new handler.
func NewAnalyzeTasksHandler(
	scorer *priority.Scorer,
	runs analysis.Repository,
	cache ResultCache,
	events EventDispatcher,
	metrics observability.Metrics,
	logger *slog.Logger,
) *AnalyzeTasksHandler {
	if scorer == nil {
		scorer = priority.NewScorer()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeTasksHandler{
		scorer:  scorer,
		runs:    runs,
		cache:   cache,
		events:  events,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle ranks the batch, or returns a *priority.CycleError when the
// dependencies form a cycle.
func (h *AnalyzeTasksHandler) Handle(ctx context.Context, cmd AnalyzeTasksCommand) (*AnalyzeTasksResult, error) {
	strategy, known := priority.LookupStrategy(cmd.Strategy)
	if !known && cmd.Strategy != "" {
		h.logger.DebugContext(ctx, "unknown strategy, using default", "requested", cmd.Strategy)
	}
	h.metrics.Histogram(observability.MetricAnalysisBatchSize, float64(len(cmd.Tasks)))

	timer := observability.StartTimer("analyze").
		WithLogger(h.logger).
		WithMetrics(h.metrics).
		WithTags(observability.T("strategy", strategy.Name))
	defer timer.Stop()

	if err := priority.CheckCycles(cmd.Tasks); err != nil {
		var cycleErr *priority.CycleError
		if errors.As(err, &cycleErr) {
			h.metrics.Counter(observability.MetricAnalysisCycles, 1)
			h.metrics.Counter(observability.MetricAnalysisTotal, 1,
				observability.T("strategy", strategy.Name), observability.T(observability.StatusKey, "cycle"))
			h.logger.InfoContext(ctx, "dependency cycle detected",
				"cycle_path", priority.FormatPath(cycleErr.Path),
				"task_count", len(cmd.Tasks),
			)
			h.record(ctx, analysis.NewCycleRun(strategy.Name, len(cmd.Tasks), cycleErr.Path))
		}
		return nil, err
	}

	ranked, cached := h.rank(ctx, cmd.Tasks, strategy)

	run := analysis.NewRankedRun(strategy.Name, ranked)
	h.record(ctx, run)

	h.metrics.Counter(observability.MetricAnalysisTotal, 1,
		observability.T("strategy", strategy.Name), observability.T(observability.StatusKey, "ranked"))
	h.logger.DebugContext(ctx, "batch ranked",
		"run_id", run.ID(),
		"strategy", strategy.Name,
		"task_count", len(ranked),
		"cached", cached,
	)

	return &AnalyzeTasksResult{
		RunID:    run.ID(),
		Strategy: strategy.Name,
		Tasks:    ranked,
		Cached:   cached,
	}, nil
}

// rank scores the batch, serving from the cache when possible. Cache
// failures never fail the request.
func (h *AnalyzeTasksHandler) rank(ctx context.Context, tasks []priority.Task, strategy priority.Strategy) ([]priority.ScoredTask, bool) {
	if h.cache == nil {
		return h.scorer.Score(tasks, strategy), false
	}

	key, err := CacheKey(tasks, strategy.Name, h.scorer.Today())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to build cache key", "error", err)
		return h.scorer.Score(tasks, strategy), false
	}

	if hit, ok, err := h.cache.Get(ctx, key); err != nil {
		h.logger.WarnContext(ctx, "result cache lookup failed", "error", err)
	} else if ok {
		h.metrics.Counter(observability.MetricCacheHits, 1)
		return hit, true
	}
	h.metrics.Counter(observability.MetricCacheMisses, 1)

	ranked := h.scorer.Score(tasks, strategy)
	if err := h.cache.Set(ctx, key, ranked); err != nil {
		h.logger.WarnContext(ctx, "result cache store failed", "error", err)
	}
	return ranked, false
}

// record saves the run and publishes its events. Both are best effort.
func (h *AnalyzeTasksHandler) record(ctx context.Context, run *analysis.Run) {
	if h.runs != nil {
		if err := h.runs.Save(ctx, run); err != nil {
			h.logger.WarnContext(ctx, "failed to save analysis run", "run_id", run.ID(), "error", err)
		}
	}

	if h.events != nil {
		events := run.DomainEvents()
		if err := h.events.Dispatch(ctx, events...); err != nil {
			h.metrics.Counter(observability.MetricEventsFailed, int64(len(events)))
			h.logger.WarnContext(ctx, "failed to publish analysis events", "run_id", run.ID(), "error", err)
		} else {
			h.metrics.Counter(observability.MetricEventsPublished, int64(len(events)))
		}
	}
	run.ClearDomainEvents()
}
