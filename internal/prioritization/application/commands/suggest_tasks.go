package commands

import (
	"context"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
)

// DefaultSuggestionLimit is how many tasks a suggestion returns.
const DefaultSuggestionLimit = 3

// SuggestTasksCommand asks for the few tasks to work on next.
type SuggestTasksCommand struct {
	Tasks []priority.Task
	Limit int
}

// SuggestTasksHandler returns the head of the default ranking.
type SuggestTasksHandler struct {
	analyze *AnalyzeTasksHandler
}

// NewSuggestTasksHandler creates a new handler.
func NewSuggestTasksHandler(analyze *AnalyzeTasksHandler) *SuggestTasksHandler {
	return &SuggestTasksHandler{analyze: analyze}
}

// Handle ranks the batch with the default strategy and keeps the first
// Limit tasks (three when Limit is not positive).
func (h *SuggestTasksHandler) Handle(ctx context.Context, cmd SuggestTasksCommand) (*AnalyzeTasksResult, error) {
	limit := cmd.Limit
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	result, err := h.analyze.Handle(ctx, AnalyzeTasksCommand{
		Tasks:    cmd.Tasks,
		Strategy: priority.DefaultStrategyName,
	})
	if err != nil {
		return nil, err
	}

	if len(result.Tasks) > limit {
		result.Tasks = result.Tasks[:limit]
	}
	return result, nil
}
