package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/taskrank/internal/app"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/validation"
	"github.com/google/uuid"
)

// ToolDependencies provides the handlers behind the MCP tools.
type ToolDependencies struct {
	Scorer     *priority.Scorer
	Decoder    *validation.Decoder
	Analyze    *commands.AnalyzeTasksHandler
	Suggest    *commands.SuggestTasksHandler
	Strategies *queries.ListStrategiesHandler
	ListRuns   *queries.ListRunsHandler
	GetRun     *queries.GetRunHandler
}

// DependenciesFromContainer picks the tool handlers out of the container.
func DependenciesFromContainer(c *app.Container) ToolDependencies {
	return ToolDependencies{
		Scorer:     c.Scorer,
		Decoder:    c.Decoder,
		Analyze:    c.AnalyzeTasksHandler,
		Suggest:    c.SuggestTasksHandler,
		Strategies: c.ListStrategiesHandler,
		ListRuns:   c.ListRunsHandler,
		GetRun:     c.GetRunHandler,
	}
}

type analyzeInput struct {
	Tasks    []map[string]any `json:"tasks" jsonschema:"required"`
	Strategy string           `json:"strategy,omitempty"`
}

type suggestInput struct {
	Tasks []map[string]any `json:"tasks" jsonschema:"required"`
	Limit int              `json:"limit,omitempty"`
}

type runsListInput struct {
	Limit int `json:"limit,omitempty"`
}

type runGetInput struct {
	RunID string `json:"run_id" jsonschema:"required"`
}

type emptyInput struct{}

// AnalysisOutput is the result of tasks.analyze and tasks.suggest.
type AnalysisOutput struct {
	RunID    string                `json:"run_id"`
	Strategy string                `json:"strategy"`
	Cached   bool                  `json:"cached"`
	Tasks    []priority.ScoredTask `json:"tasks"`
}

// RegisterTools registers the task ranking tools.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.Analyze == nil || deps.Suggest == nil {
		return errors.New("analyze and suggest handlers are required")
	}
	if deps.Scorer == nil {
		deps.Scorer = priority.NewScorer()
	}
	if deps.Decoder == nil {
		deps.Decoder = validation.NewDecoder()
	}
	if deps.Strategies == nil {
		deps.Strategies = queries.NewListStrategiesHandler()
	}

	srv.Tool("tasks.analyze").
		Description("Rank a batch of tasks by priority. Fails with the cycle path if dependencies are circular.").
		Handler(func(ctx context.Context, input analyzeInput) (*AnalysisOutput, error) {
			return analyzeTasks(ctx, deps, input)
		})

	srv.Tool("tasks.suggest").
		Description("Return the top tasks to work on next using the default strategy").
		Handler(func(ctx context.Context, input suggestInput) (*AnalysisOutput, error) {
			return suggestTasks(ctx, deps, input)
		})

	srv.Tool("strategies.list").
		Description("List the built-in scoring strategies and their weights").
		Handler(func(ctx context.Context, _ emptyInput) ([]queries.StrategyDTO, error) {
			return deps.Strategies.Handle(ctx), nil
		})

	srv.Tool("runs.list").
		Description("List recent analysis runs").
		Handler(func(ctx context.Context, input runsListInput) ([]queries.RunDTO, error) {
			if deps.ListRuns == nil {
				return nil, queries.ErrHistoryDisabled
			}
			return deps.ListRuns.Handle(ctx, queries.ListRunsQuery{Limit: input.Limit})
		})

	srv.Tool("runs.get").
		Description("Get one analysis run by id").
		Handler(func(ctx context.Context, input runGetInput) (*queries.RunDTO, error) {
			if deps.GetRun == nil {
				return nil, queries.ErrHistoryDisabled
			}
			id, err := uuid.Parse(input.RunID)
			if err != nil {
				return nil, fmt.Errorf("invalid run id: %w", err)
			}
			return deps.GetRun.Handle(ctx, queries.GetRunQuery{ID: id})
		})

	return nil
}

func analyzeTasks(ctx context.Context, deps ToolDependencies, input analyzeInput) (*AnalysisOutput, error) {
	tasks, err := decodeTasks(deps, input.Tasks)
	if err != nil {
		return nil, err
	}
	result, err := deps.Analyze.Handle(ctx, commands.AnalyzeTasksCommand{Tasks: tasks, Strategy: input.Strategy})
	if err != nil {
		return nil, toolError(err)
	}
	return toOutput(result), nil
}

func suggestTasks(ctx context.Context, deps ToolDependencies, input suggestInput) (*AnalysisOutput, error) {
	tasks, err := decodeTasks(deps, input.Tasks)
	if err != nil {
		return nil, err
	}
	result, err := deps.Suggest.Handle(ctx, commands.SuggestTasksCommand{Tasks: tasks, Limit: input.Limit})
	if err != nil {
		return nil, toolError(err)
	}
	return toOutput(result), nil
}

// decodeTasks runs tool input through the same validation as the HTTP API.
func decodeTasks(deps ToolDependencies, raw []map[string]any) ([]priority.Task, error) {
	if raw == nil {
		raw = []map[string]any{}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return deps.Decoder.Decode(data, deps.Scorer.Today().Time())
}

// toolError rewrites a cycle into the user-facing message.
func toolError(err error) error {
	var cycleErr *priority.CycleError
	if errors.As(err, &cycleErr) {
		return fmt.Errorf("%s %s: %w", priority.CycleDetectedMessage, cycleErr.Message(), err)
	}
	return err
}

func toOutput(result *commands.AnalyzeTasksResult) *AnalysisOutput {
	tasks := result.Tasks
	if tasks == nil {
		tasks = []priority.ScoredTask{}
	}
	return &AnalysisOutput{
		RunID:    result.RunID.String(),
		Strategy: result.Strategy,
		Cached:   result.Cached,
		Tasks:    tasks,
	}
}
