package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskrank/pkg/config"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:         "test",
		MaxBatchSize:   1000,
		DefaultDueDays: 7,
		HistoryEnabled: true,
		LocalMode:      true,
		DatabaseDriver: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "history.db"),
	}
}

func intPtr(v int) *int { return &v }

func TestNewContainer_LocalMode(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, localConfig(t), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.HistoryEnabled())
	assert.NotNil(t, c.DBConn)
	assert.Nil(t, c.RedisClient)
	assert.Nil(t, c.ResultCache)
	assert.IsType(t, &eventbus.InProcessBus{}, c.EventPublisher)
	assert.Equal(t, []string{"database"}, c.Health.Names())
	assert.Equal(t, observability.HealthStatusHealthy, c.Health.Check(ctx).Status)
}

func TestNewContainer_AnalyzeIsRecorded(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, localConfig(t), nil)
	require.NoError(t, err)
	defer c.Close()

	tasks := []priority.Task{
		{ID: intPtr(1), Title: "Write report"},
		{ID: intPtr(2), Title: "Review", Dependencies: []int{1}},
	}
	result, err := c.AnalyzeTasksHandler.Handle(ctx, commands.AnalyzeTasksCommand{Tasks: tasks})
	require.NoError(t, err)
	require.Len(t, result.Tasks, 2)

	runs, err := c.ListRunsHandler.Handle(ctx, queries.ListRunsQuery{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].ID)
	assert.Equal(t, 2, runs[0].TaskCount)

	bus := c.EventPublisher.(*eventbus.InProcessBus)
	msgs := bus.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "priority.batch.analyzed", msgs[0].RoutingKey)
}

func TestNewContainer_HistoryDisabled(t *testing.T) {
	cfg := localConfig(t)
	cfg.HistoryEnabled = false

	c, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.False(t, c.HistoryEnabled())
	assert.Nil(t, c.DBConn)

	_, err = c.ListRunsHandler.Handle(context.Background(), queries.ListRunsQuery{})
	assert.ErrorIs(t, err, queries.ErrHistoryDisabled)
}

func TestNewContainer_UnreachableRedisInDevelopment(t *testing.T) {
	cfg := localConfig(t)
	cfg.AppEnv = "development"
	cfg.HistoryEnabled = false
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	c, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.ResultCache)
}

func TestNewContainer_UnreachableRedisInProduction(t *testing.T) {
	cfg := localConfig(t)
	cfg.AppEnv = "production"
	cfg.HistoryEnabled = false
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	_, err := NewContainer(context.Background(), cfg, nil)
	assert.Error(t, err)
}
