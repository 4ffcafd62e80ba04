package mcp

import (
	"testing"

	"github.com/felixgeelhaar/mcp-go/middleware"
	mcplocal "github.com/felixgeelhaar/taskrank/adapter/mcp"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	analyze := commands.NewAnalyzeTasksHandler(nil, nil, nil, nil, nil, nil)
	srv, err := NewServer(mcplocal.ToolDependencies{
		Analyze: analyze,
		Suggest: commands.NewSuggestTasksHandler(analyze),
	}, "", nil)
	require.NoError(t, err)
	assert.NotNil(t, srv)
}

func TestNewServer_MissingHandlers(t *testing.T) {
	_, err := NewServer(mcplocal.ToolDependencies{}, "1.0.0", nil)
	assert.Error(t, err)
}

func TestFieldsToArgs(t *testing.T) {
	args := fieldsToArgs([]middleware.Field{{Key: "tool", Value: "tasks.analyze"}, {Key: "ms", Value: 3}})
	assert.Equal(t, []any{"tool", "tasks.analyze", "ms", 3}, args)
}
