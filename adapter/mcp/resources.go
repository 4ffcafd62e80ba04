package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
)

// RegisterResources registers read-only resources.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Resource("taskrank://strategies").
		Name("Strategies").
		Description("Built-in scoring strategies and their weights").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			strategies := queries.NewListStrategiesHandler().Handle(ctx)
			data, err := json.Marshal(strategies)
			if err != nil {
				return nil, err
			}
			return &mcp.ResourceContent{
				URI:      uri,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})

	srv.Resource("taskrank://runs/recent").
		Name("Recent runs").
		Description("The most recent analysis runs").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if deps.ListRuns == nil {
				return nil, queries.ErrHistoryDisabled
			}
			runs, err := deps.ListRuns.Handle(ctx, queries.ListRunsQuery{})
			if err != nil {
				return nil, err
			}
			data, err := json.Marshal(runs)
			if err != nil {
				return nil, err
			}
			return &mcp.ResourceContent{
				URI:      uri,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})

	return nil
}
