package priority

import (
	"encoding/json"
	"fmt"
	"time"
)

// Defaults applied when a task omits the corresponding field.
const (
	DefaultImportance     = 5
	DefaultEstimatedHours = 1.0
	DefaultDueDays        = 7
)

// Task is one entry of a batch submitted for ranking. Optional fields are
// pointers so that absence can be told apart from a zero value.
type Task struct {
	ID             *int     `json:"id,omitempty"`
	Title          string   `json:"title"`
	DueDate        *Date    `json:"due_date"`
	EstimatedHours *float64 `json:"estimated_hours"`
	Importance     *int     `json:"importance"`
	Dependencies   []int    `json:"dependencies"`
}

// HasID reports whether the task carries an id.
func (t Task) HasID() bool {
	return t.ID != nil
}

// ImportanceOrDefault returns the importance, or 5 when absent.
func (t Task) ImportanceOrDefault() int {
	if t.Importance == nil {
		return DefaultImportance
	}
	return *t.Importance
}

// HoursOrDefault returns the estimated hours, or 1 when absent.
func (t Task) HoursOrDefault() float64 {
	if t.EstimatedHours == nil {
		return DefaultEstimatedHours
	}
	return *t.EstimatedHours
}

// MarshalJSON always renders dependencies as an array.
func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	p := plain(t)
	if p.Dependencies == nil {
		p.Dependencies = []int{}
	}
	return json.Marshal(p)
}

// Breakdown holds the unrounded normalized sub-scores behind a final score.
type Breakdown struct {
	Urgency    float64 `json:"urgency_score"`
	Importance float64 `json:"importance_score"`
	Effort     float64 `json:"effort_score"`
	Dependency float64 `json:"dependency_score"`
}

// ScoredTask is a task with its final score and breakdown.
type ScoredTask struct {
	Task
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// MarshalJSON flattens the task fields next to score and breakdown.
func (s ScoredTask) MarshalJSON() ([]byte, error) {
	deps := s.Dependencies
	if deps == nil {
		deps = []int{}
	}
	return json.Marshal(struct {
		ID             *int      `json:"id,omitempty"`
		Title          string    `json:"title"`
		DueDate        *Date     `json:"due_date"`
		EstimatedHours *float64  `json:"estimated_hours"`
		Importance     *int      `json:"importance"`
		Dependencies   []int     `json:"dependencies"`
		Score          float64   `json:"score"`
		Breakdown      Breakdown `json:"breakdown"`
	}{
		ID:             s.ID,
		Title:          s.Title,
		DueDate:        s.DueDate,
		EstimatedHours: s.EstimatedHours,
		Importance:     s.Importance,
		Dependencies:   deps,
		Score:          s.Score,
		Breakdown:      s.Breakdown,
	})
}

// UnmarshalJSON restores a scored task from its flattened form.
func (s *ScoredTask) UnmarshalJSON(data []byte) error {
	var aux struct {
		Task
		Score     float64   `json:"score"`
		Breakdown Breakdown `json:"breakdown"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Task = aux.Task
	s.Score = aux.Score
	s.Breakdown = aux.Breakdown
	return nil
}

// IDs returns the ids of the given scored tasks, skipping tasks without one.
func IDs(tasks []ScoredTask) []int {
	ids := make([]int, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != nil {
			ids = append(ids, *t.ID)
		}
	}
	return ids
}

const dateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct {
	t time.Time
}

// NewDate builds a date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t: t}, nil
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysUntil returns the whole number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t) / (24 * time.Hour))
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) String() string {
	return d.t.Format(dateLayout)
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
