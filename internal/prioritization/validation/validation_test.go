package validation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

func requireValidationError(t *testing.T, err error) *validation.ValidationError {
	t.Helper()
	var ve *validation.ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
	require.NotEmpty(t, ve.Errors)
	return ve
}

func paths(ve *validation.ValidationError) []string {
	out := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		out[i] = fe.Path
	}
	return out
}

func TestDecodeBatch_AppliesDefaults(t *testing.T) {
	tasks, err := validation.DecodeBatch([]byte(`[{"title": "Write report"}]`), today)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	task := tasks[0]
	assert.Nil(t, task.ID)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, "2025-06-09", task.DueDate.String())
	assert.Equal(t, 1.0, *task.EstimatedHours)
	assert.Equal(t, 5, *task.Importance)
	assert.Equal(t, []int{}, task.Dependencies)
}

func TestDecodeBatch_FullTask(t *testing.T) {
	body := `[
		{"id": 1, "title": "A", "due_date": "2025-06-01", "estimated_hours": 2.5, "importance": 9, "dependencies": [2, 3.0]},
		{"id": 2, "title": "B", "extra": "ignored"}
	]`

	tasks, err := validation.DecodeBatch([]byte(body), today)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, 1, *tasks[0].ID)
	assert.Equal(t, "2025-06-01", tasks[0].DueDate.String())
	assert.Equal(t, 2.5, *tasks[0].EstimatedHours)
	assert.Equal(t, 9, *tasks[0].Importance)
	assert.Equal(t, []int{2, 3}, tasks[0].Dependencies)
	assert.Equal(t, 2, *tasks[1].ID)
}

func TestDecodeBatch_EmptyArray(t *testing.T) {
	tasks, err := validation.DecodeBatch([]byte(`[]`), today)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDecodeBatch_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		path string
	}{
		{name: "malformed json", body: `[{"title": }]`, path: "/"},
		{name: "not an array", body: `{"title": "x"}`, path: "/"},
		{name: "missing title", body: `[{"id": 1}]`, path: "/0"},
		{name: "empty title", body: `[{"title": ""}]`, path: "/0/title"},
		{name: "importance too high", body: `[{"title": "x", "importance": 11}]`, path: "/0/importance"},
		{name: "importance too low", body: `[{"title": "x", "importance": 0}]`, path: "/0/importance"},
		{name: "negative hours", body: `[{"title": "x", "estimated_hours": -1}]`, path: "/0/estimated_hours"},
		{name: "fractional id", body: `[{"id": 1.5, "title": "x"}]`, path: "/0/id"},
		{name: "null id", body: `[{"id": null, "title": "x"}]`, path: "/0/id"},
		{name: "string dependency", body: `[{"title": "x", "dependencies": ["a"]}]`, path: "/0/dependencies/0"},
		{name: "bad date format", body: `[{"title": "x", "due_date": "06/01/2025"}]`, path: "/0/due_date"},
		{name: "impossible date", body: `[{"title": "x", "due_date": "2025-02-30"}]`, path: "/0/due_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validation.DecodeBatch([]byte(tt.body), today)
			ve := requireValidationError(t, err)
			assert.Contains(t, paths(ve), tt.path)
		})
	}
}

func TestDecodeBatch_ReportsEveryProblem(t *testing.T) {
	body := `[{"title": "ok"}, {"title": "x", "importance": 20}, {"importance": 3}]`

	_, err := validation.DecodeBatch([]byte(body), today)

	ve := requireValidationError(t, err)
	assert.Contains(t, paths(ve), "/1/importance")
	assert.Contains(t, paths(ve), "/2")
	assert.Contains(t, ve.Error(), "invalid task batch")
}

func TestDecoder_Options(t *testing.T) {
	t.Run("default due days", func(t *testing.T) {
		d := validation.NewDecoder(validation.WithDefaultDueDays(1))

		tasks, err := d.Decode([]byte(`[{"title": "x"}]`), today)
		require.NoError(t, err)
		assert.Equal(t, "2025-06-03", tasks[0].DueDate.String())
	})

	t.Run("max batch size", func(t *testing.T) {
		d := validation.NewDecoder(validation.WithMaxBatchSize(1))

		_, err := d.Decode([]byte(`[{"title": "a"}, {"title": "b"}]`), today)
		ve := requireValidationError(t, err)
		assert.Contains(t, ve.Errors[0].Message, "limit is 1")
	})
}
