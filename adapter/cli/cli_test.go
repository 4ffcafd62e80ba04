package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/taskrank/internal/app"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/felixgeelhaar/taskrank/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonBatch = `[
	{"id": 1, "title": "Someday", "due_date": "2999-01-01", "estimated_hours": 20, "importance": 1},
	{"id": 2, "title": "Ship release", "due_date": "2000-01-01", "estimated_hours": 1, "importance": 10},
	{"id": 3, "title": "Write notes", "dependencies": [2]}
]`

const yamlBatch = `
- id: 1
  title: Someday
  due_date: 2999-01-01
  estimated_hours: 20
  importance: 1
- id: 2
  title: Ship release
  due_date: "2000-01-01"
  estimated_hours: 1
  importance: 10
`

func setupApp(t *testing.T, history bool) {
	t.Helper()
	cfg := &config.Config{
		AppEnv:         "test",
		MaxBatchSize:   100,
		DefaultDueDays: 7,
		HistoryEnabled: history,
		LocalMode:      true,
		DatabaseDriver: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "history.db"),
	}
	c, err := app.NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	SetApp(NewApp(c))
	t.Cleanup(func() { SetApp(nil) })
}

func resetFlags() {
	analyzeFile, analyzeStrategy, analyzeJSON = "-", priority.DefaultStrategyName, false
	suggestFile, suggestLimit, suggestJSON = "-", 3, false
	strategiesJSON = false
	historyLimit, historyJSON = 10, false
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	setupApp(t, false)
	path := writeFile(t, "tasks.json", jsonBatch)

	out, err := executeCommand(t, "", "analyze", "-f", path, "--json")
	require.NoError(t, err)

	var tasks []priority.ScoredTask
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 3)
	assert.Equal(t, 2, *tasks[0].ID)
	assert.Equal(t, 1, *tasks[2].ID)
}

func TestAnalyzeCommand_Table(t *testing.T) {
	setupApp(t, false)

	out, err := executeCommand(t, jsonBatch, "analyze", "-s", "deadline")
	require.NoError(t, err)

	assert.Contains(t, out, "Strategy: deadline")
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "Ship release")
}

func TestAnalyzeCommand_YAML(t *testing.T) {
	setupApp(t, false)
	path := writeFile(t, "tasks.yaml", yamlBatch)

	out, err := executeCommand(t, "", "analyze", "-f", path, "--json")
	require.NoError(t, err)

	var tasks []priority.ScoredTask
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	assert.Equal(t, []int{2, 1}, priority.IDs(tasks))
	assert.Equal(t, "2999-01-01", tasks[1].DueDate.String())
}

func TestAnalyzeCommand_Cycle(t *testing.T) {
	setupApp(t, false)

	_, err := executeCommand(t, `[{"id": 1, "title": "a", "dependencies": [2]}, {"id": 2, "title": "b", "dependencies": [1]}]`, "analyze")
	require.Error(t, err)
	assert.ErrorIs(t, err, priority.ErrCycleDetected)
	assert.Contains(t, err.Error(), "[1, 2, 1]")
}

func TestAnalyzeCommand_Invalid(t *testing.T) {
	setupApp(t, false)

	_, err := executeCommand(t, `[{"id": 1, "importance": 42}]`, "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid task batch")
}

func TestSuggestCommand(t *testing.T) {
	setupApp(t, false)

	out, err := executeCommand(t, jsonBatch, "suggest", "-n", "1", "--json")
	require.NoError(t, err)

	var tasks []priority.ScoredTask
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	assert.Equal(t, []int{2}, priority.IDs(tasks))
}

func TestStrategiesCommand(t *testing.T) {
	SetApp(nil)

	out, err := executeCommand(t, "", "strategies")
	require.NoError(t, err)

	for _, name := range []string{"default *", "fastest_wins", "high_impact", "deadline"} {
		assert.Contains(t, out, name)
	}
}

func TestHistoryCommand(t *testing.T) {
	setupApp(t, true)

	out, err := executeCommand(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet.")

	_, err = executeCommand(t, jsonBatch, "analyze")
	require.NoError(t, err)
	_, err = executeCommand(t, `[{"id": 5, "title": "loop", "dependencies": [5]}]`, "analyze")
	require.Error(t, err)

	out, err = executeCommand(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "cycle [5, 5]")
	assert.Contains(t, out, "top [2, 3, 1]")
}

func TestHistoryCommand_Disabled(t *testing.T) {
	setupApp(t, false)

	out, err := executeCommand(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "History is disabled")
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "taskrank dev")
}

func TestNormalizeYAML(t *testing.T) {
	data, err := yamlToJSON([]byte("- title: a\n  dependencies: [1, 2]\n"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title": "a", "dependencies": [1, 2]}]`, string(data))

	_, err = yamlToJSON([]byte("- title: [unclosed"))
	assert.Error(t, err)
}
