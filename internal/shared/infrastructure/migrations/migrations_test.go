package migrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/migrations"
)

func TestRun_SQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, migrations.Run(ctx, conn))
	// Second run is a no-op.
	require.NoError(t, migrations.Run(ctx, conn))

	var count int
	err = conn.QueryRow(ctx, `SELECT COUNT(*) FROM analysis_runs`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
