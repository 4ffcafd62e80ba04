package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
)

// RegisterPrompts registers MCP prompts.
func RegisterPrompts(srv *mcp.Server) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("prioritize_backlog").
		Description("Walk through ranking a backlog: collect tasks, run tasks.analyze, and explain the order.").
		Argument("strategy", "Scoring strategy (default, fastest_wins, high_impact, deadline)", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			strategy, _ := priority.LookupStrategy(args["strategy"])
			w := strategy.Weights
			return &mcp.PromptResult{
				Description: "Backlog prioritization",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Help me prioritize my backlog.

1. List my open tasks with a title, an integer id, a due date (YYYY-MM-DD), estimated hours, importance (1-10) and the ids each task depends on.
2. Call tasks.analyze with strategy %q (urgency %.2f, importance %.2f, effort %.2f, dependencies %.2f).
3. If a circular dependency is reported, show me the cycle and ask which dependency to drop.
4. Otherwise explain the top five tasks using their score breakdown.`,
								strategy.Name, w.Urgency, w.Importance, w.Effort, w.Deps),
						},
					},
				},
			}, nil
		})

	return nil
}
