package priority

import (
	"math"
	"slices"
	"strconv"
	"time"
)

// Scorer ranks a batch of tasks against a strategy.
// It holds no per-call state and is safe for concurrent use.
type Scorer struct {
	now func() time.Time
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithClock sets the source of "today" used for urgency.
func WithClock(now func() time.Time) ScorerOption {
	return func(s *Scorer) {
		s.now = now
	}
}

// NewScorer creates a scorer using the local wall clock by default.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the scorer's current calendar date.
func (s *Scorer) Today() Date {
	return DateOf(s.now())
}

// Score computes a score for every task and returns them sorted by score,
// highest first. Equal scores keep their input order.
func (s *Scorer) Score(tasks []Task, strategy Strategy) []ScoredTask {
	today := s.Today()
	blocks := blockCounts(tasks)
	w := strategy.Weights

	scored := make([]ScoredTask, 0, len(tasks))
	for _, t := range tasks {
		b := Breakdown{
			Urgency:    UrgencyScore(t.DueDate, today),
			Importance: ImportanceScore(t.ImportanceOrDefault()),
			Effort:     EffortScore(t.HoursOrDefault()),
		}
		if t.ID != nil {
			b.Dependency = DependencyScore(blocks[*t.ID])
		}

		total := b.Urgency*w.Urgency +
			b.Importance*w.Importance +
			b.Effort*w.Effort +
			b.Dependency*w.Deps

		scored = append(scored, ScoredTask{Task: t, Score: roundScore(total), Breakdown: b})
	}

	slices.SortStableFunc(scored, func(a, b ScoredTask) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	return scored
}

// blockCounts counts, for every task id in the batch, how many dependency
// entries name it. Every occurrence counts, repeats included.
func blockCounts(tasks []Task) map[int]int {
	counts := make(map[int]int, len(tasks))
	for _, t := range tasks {
		if t.ID != nil {
			counts[*t.ID] = 0
		}
	}
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := counts[dep]; ok {
				counts[dep]++
			}
		}
	}
	return counts
}

// UrgencyScore is 50 without a due date, 100 when overdue, and otherwise
// decays from 90 with a time constant of seven days.
func UrgencyScore(due *Date, today Date) float64 {
	if due == nil {
		return 50.0
	}
	delta := today.DaysUntil(*due)
	if delta < 0 {
		return 100.0
	}
	return math.Max(0, 90.0*math.Exp(-float64(delta)/7))
}

// ImportanceScore maps importance 1..10 onto 10..100.
func ImportanceScore(importance int) float64 {
	return float64(importance * 10)
}

// EffortScore favours short tasks: 100 at zero hours, 4.2 points less per
// hour, never negative.
func EffortScore(hours float64) float64 {
	return math.Max(0, 100-hours*4.2)
}

// DependencyScore grows with the log of the number of tasks blocked,
// capped at 100.
func DependencyScore(blocked int) float64 {
	if blocked == 0 {
		return 0.0
	}
	return math.Min(100, 35.0*math.Log2(float64(blocked+1)))
}

// roundScore rounds to one decimal place based on the exact binary value of
// v, so 0.25 becomes 0.2 and 0.35 becomes 0.3.
func roundScore(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return math.Round(v*10) / 10
	}
	return r
}
