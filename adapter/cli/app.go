package cli

import (
	"github.com/felixgeelhaar/taskrank/internal/app"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/validation"
)

// App holds the CLI application dependencies.
type App struct {
	Scorer  *priority.Scorer
	Decoder *validation.Decoder

	// Command handlers
	AnalyzeTasksHandler *commands.AnalyzeTasksHandler
	SuggestTasksHandler *commands.SuggestTasksHandler

	// Query handlers
	ListStrategiesHandler *queries.ListStrategiesHandler
	ListRunsHandler       *queries.ListRunsHandler

	// Container is set when the app was built from one; serve needs it.
	Container *app.Container
}

// NewApp creates a CLI app backed by the container.
func NewApp(c *app.Container) *App {
	return &App{
		Scorer:                c.Scorer,
		Decoder:               c.Decoder,
		AnalyzeTasksHandler:   c.AnalyzeTasksHandler,
		SuggestTasksHandler:   c.SuggestTasksHandler,
		ListStrategiesHandler: c.ListStrategiesHandler,
		ListRunsHandler:       c.ListRunsHandler,
		Container:             c,
	}
}

var cliApp *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	cliApp = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return cliApp
}
