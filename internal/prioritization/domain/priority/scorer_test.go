package priority_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.January, 10, 15, 30, 0, 0, time.UTC)

func fixedScorer() *priority.Scorer {
	return priority.NewScorer(priority.WithClock(func() time.Time { return fixedNow }))
}

func ptr[T any](v T) *T { return &v }

func dueIn(days int) *priority.Date {
	d := priority.DateOf(fixedNow).AddDays(days)
	return &d
}

func TestUrgencyScore(t *testing.T) {
	today := priority.DateOf(fixedNow)

	assert.Equal(t, 50.0, priority.UrgencyScore(nil, today))
	assert.Equal(t, 100.0, priority.UrgencyScore(dueIn(-1), today))
	assert.Equal(t, 100.0, priority.UrgencyScore(dueIn(-400), today))
	assert.Equal(t, 90.0, priority.UrgencyScore(dueIn(0), today))
	assert.InDelta(t, 78.02, priority.UrgencyScore(dueIn(1), today), 0.01)
	assert.InDelta(t, 58.63, priority.UrgencyScore(dueIn(3), today), 0.01)
	assert.InDelta(t, 33.11, priority.UrgencyScore(dueIn(7), today), 0.01)
	assert.InDelta(t, 1.24, priority.UrgencyScore(dueIn(30), today), 0.01)

	prev := priority.UrgencyScore(dueIn(0), today)
	for d := 1; d < 60; d++ {
		cur := priority.UrgencyScore(dueIn(d), today)
		assert.Less(t, cur, prev, "delta %d", d)
		assert.GreaterOrEqual(t, cur, 0.0)
		prev = cur
	}
}

func TestEffortScore(t *testing.T) {
	assert.Equal(t, 100.0, priority.EffortScore(0))
	assert.InDelta(t, 95.8, priority.EffortScore(1), 1e-9)
	assert.InDelta(t, 79.0, priority.EffortScore(5), 1e-9)
	assert.Equal(t, 0.0, priority.EffortScore(24))
	assert.Equal(t, 0.0, priority.EffortScore(1000))
}

func TestDependencyScore(t *testing.T) {
	assert.Equal(t, 0.0, priority.DependencyScore(0))
	assert.InDelta(t, 35.0, priority.DependencyScore(1), 1e-9)
	assert.InDelta(t, 70.0, priority.DependencyScore(3), 1e-9)
	assert.Equal(t, 100.0, priority.DependencyScore(7))
	assert.Equal(t, 100.0, priority.DependencyScore(50))
}

func TestImportanceScore(t *testing.T) {
	assert.Equal(t, 10.0, priority.ImportanceScore(1))
	assert.Equal(t, 100.0, priority.ImportanceScore(10))
}

func sampleBatch() []priority.Task {
	return []priority.Task{
		{ID: ptr(1), Title: "Fix login", DueDate: dueIn(-1), EstimatedHours: ptr(2.0), Importance: ptr(5)},
		{ID: ptr(2), Title: "Write docs", DueDate: dueIn(0), EstimatedHours: ptr(1.0), Importance: ptr(8), Dependencies: []int{1}},
		{ID: ptr(3), Title: "Refactor", Dependencies: []int{1, 2}},
	}
}

func TestScorer_Score(t *testing.T) {
	t.Run("default strategy", func(t *testing.T) {
		strategy, _ := priority.LookupStrategy("default")

		got := fixedScorer().Score(sampleBatch(), strategy)

		require.Len(t, got, 3)
		assert.Equal(t, 2, *got[0].ID)
		assert.Equal(t, 76.9, got[0].Score)
		assert.Equal(t, 1, *got[1].ID)
		assert.Equal(t, 74.8, got[1].Score)
		assert.Equal(t, 3, *got[2].ID)
		assert.Equal(t, 46.9, got[2].Score)

		assert.Equal(t, 100.0, got[1].Breakdown.Urgency)
		assert.Equal(t, 50.0, got[1].Breakdown.Importance)
		assert.InDelta(t, 91.6, got[1].Breakdown.Effort, 1e-9)
		assert.InDelta(t, 55.47, got[1].Breakdown.Dependency, 0.01)
		assert.Equal(t, 50.0, got[2].Breakdown.Urgency)
	})

	t.Run("fastest wins strategy", func(t *testing.T) {
		strategy, ok := priority.LookupStrategy("fastest_wins")
		require.True(t, ok)

		got := fixedScorer().Score(sampleBatch(), strategy)

		assert.Equal(t, []int{2, 1, 3}, priority.IDs(got))
		assert.Equal(t, []float64{83.2, 81.6, 65.4}, []float64{got[0].Score, got[1].Score, got[2].Score})
	})

	t.Run("ties keep input order", func(t *testing.T) {
		tasks := []priority.Task{
			{ID: ptr(10), Title: "a"},
			{ID: ptr(11), Title: "b"},
			{ID: ptr(12), Title: "c"},
		}
		got := fixedScorer().Score(tasks, priority.Strategies()[0])
		assert.Equal(t, []int{10, 11, 12}, priority.IDs(got))
	})

	t.Run("duplicate and unknown dependencies", func(t *testing.T) {
		tasks := []priority.Task{
			{ID: ptr(1), Title: "blocker"},
			{ID: ptr(2), Title: "dup", Dependencies: []int{1, 1, 42}},
			{Title: "no id", Dependencies: []int{1}},
		}
		got := fixedScorer().Score(tasks, priority.Strategies()[0])

		byTitle := map[string]priority.ScoredTask{}
		for _, s := range got {
			byTitle[s.Title] = s
		}
		assert.InDelta(t, 70.0, byTitle["blocker"].Breakdown.Dependency, 1e-9)
		assert.Equal(t, 0.0, byTitle["no id"].Breakdown.Dependency)
	})

	t.Run("does not modify input", func(t *testing.T) {
		tasks := sampleBatch()
		strategy, _ := priority.LookupStrategy("deadline")

		first := fixedScorer().Score(tasks, strategy)
		second := fixedScorer().Score(tasks, strategy)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, *tasks[0].ID)
	})

	t.Run("empty batch", func(t *testing.T) {
		assert.Empty(t, fixedScorer().Score(nil, priority.Strategies()[0]))
	})
}

func TestLookupStrategy(t *testing.T) {
	s, ok := priority.LookupStrategy("high_impact")
	assert.True(t, ok)
	assert.Equal(t, 0.5, s.Weights.Importance)

	s, ok = priority.LookupStrategy("no_such")
	assert.False(t, ok)
	assert.Equal(t, priority.DefaultStrategyName, s.Name)

	names := []string{}
	for _, s := range priority.Strategies() {
		names = append(names, s.Name)
		sum := s.Weights.Urgency + s.Weights.Importance + s.Weights.Effort + s.Weights.Deps
		assert.InDelta(t, 1.0, sum, 1e-9, s.Name)
	}
	assert.Equal(t, []string{"default", "fastest_wins", "high_impact", "deadline"}, names)
}

func TestScoredTask_JSON(t *testing.T) {
	due := priority.NewDate(2025, time.March, 3)
	st := priority.ScoredTask{
		Task:      priority.Task{ID: ptr(4), Title: "Ship", DueDate: &due, EstimatedHours: ptr(1.5), Importance: ptr(7)},
		Score:     61.2,
		Breakdown: priority.Breakdown{Urgency: 1, Importance: 70, Effort: 93.7},
	}

	data, err := json.Marshal(st)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "2025-03-03", raw["due_date"])
	assert.Equal(t, []any{}, raw["dependencies"])
	assert.Equal(t, 61.2, raw["score"])
	assert.Contains(t, raw["breakdown"], "urgency_score")

	var back priority.ScoredTask
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "2025-03-03", back.DueDate.String())
	assert.Equal(t, 61.2, back.Score)
}

func TestDate(t *testing.T) {
	d, err := priority.ParseDate("2024-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, 2, d.DaysUntil(d.AddDays(2)))
	assert.Equal(t, -3, d.DaysUntil(d.AddDays(-3)))

	_, err = priority.ParseDate("28/02/2024")
	assert.Error(t, err)
}
