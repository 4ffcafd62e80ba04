package queries

import (
	"context"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
)

// StrategyDTO describes a built-in strategy.
type StrategyDTO struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Weights     priority.Weights `json:"weights"`
	Default     bool             `json:"default"`
}

// ListStrategiesHandler lists the built-in strategies.
type ListStrategiesHandler struct{}

// NewListStrategiesHandler creates a new handler.
func NewListStrategiesHandler() *ListStrategiesHandler {
	return &ListStrategiesHandler{}
}

// Handle returns the strategies in table order.
func (h *ListStrategiesHandler) Handle(_ context.Context) []StrategyDTO {
	strategies := priority.Strategies()
	out := make([]StrategyDTO, len(strategies))
	for i, s := range strategies {
		out[i] = StrategyDTO{
			Name:        s.Name,
			Description: s.Description,
			Weights:     s.Weights,
			Default:     s.Name == priority.DefaultStrategyName,
		}
	}
	return out
}
