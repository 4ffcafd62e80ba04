package priority

// DefaultStrategyName is used whenever a caller names no strategy or an
// unknown one.
const DefaultStrategyName = "default"

// Weights is the share of each normalized factor in the final score.
type Weights struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
	Effort     float64 `json:"effort"`
	Deps       float64 `json:"deps"`
}

// Strategy is a named weighting of the scoring factors.
type Strategy struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weights     Weights `json:"weights"`
}

var strategies = [...]Strategy{
	{
		Name:        DefaultStrategyName,
		Description: "Balanced mix of urgency, importance, effort and blocking",
		Weights:     Weights{Urgency: 0.35, Importance: 0.30, Effort: 0.15, Deps: 0.20},
	},
	{
		Name:        "fastest_wins",
		Description: "Prefer quick tasks",
		Weights:     Weights{Urgency: 0.20, Importance: 0.15, Effort: 0.50, Deps: 0.15},
	},
	{
		Name:        "high_impact",
		Description: "Prefer important tasks",
		Weights:     Weights{Urgency: 0.20, Importance: 0.50, Effort: 0.10, Deps: 0.20},
	},
	{
		Name:        "deadline",
		Description: "Prefer tasks due soonest",
		Weights:     Weights{Urgency: 0.50, Importance: 0.20, Effort: 0.15, Deps: 0.15},
	},
}

// Strategies returns the built-in strategies in table order.
func Strategies() []Strategy {
	out := make([]Strategy, len(strategies))
	copy(out, strategies[:])
	return out
}

// LookupStrategy resolves a strategy by name. Unknown names resolve to the
// default strategy and report false.
func LookupStrategy(name string) (Strategy, bool) {
	for _, s := range strategies {
		if s.Name == name {
			return s, true
		}
	}
	return strategies[0], false
}
