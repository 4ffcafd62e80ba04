package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/spf13/cobra"
)

var (
	analyzeFile     string
	analyzeStrategy string
	analyzeJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rank a batch of tasks",
	Long: `Rank a batch of tasks read from a JSON or YAML file.

Examples:
  taskrank analyze -f tasks.json
  taskrank analyze -f backlog.yaml -s deadline
  cat tasks.json | taskrank analyze -f - --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.AnalyzeTasksHandler == nil {
			return errors.New("app not initialized")
		}

		tasks, err := loadTasks(cmd, app, analyzeFile)
		if err != nil {
			return err
		}

		result, err := app.AnalyzeTasksHandler.Handle(cmd.Context(), commands.AnalyzeTasksCommand{
			Tasks:    tasks,
			Strategy: analyzeStrategy,
		})
		if err != nil {
			return err
		}

		return printAnalysis(cmd, result, analyzeJSON)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "-", "task batch file (.json, .yaml, .yml) or - for stdin")
	analyzeCmd.Flags().StringVarP(&analyzeStrategy, "strategy", "s", priority.DefaultStrategyName, "scoring strategy")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the ranked tasks as JSON")

	rootCmd.AddCommand(analyzeCmd)
}

func loadTasks(cmd *cobra.Command, app *App, path string) ([]priority.Task, error) {
	data, err := readBatch(path, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	return app.Decoder.Decode(data, app.Scorer.Today().Time())
}

func printAnalysis(cmd *cobra.Command, result *commands.AnalyzeTasksResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		tasks := result.Tasks
		if tasks == nil {
			tasks = []priority.ScoredTask{}
		}
		return writeJSON(out, tasks)
	}

	fmt.Fprintf(out, "Strategy: %s", result.Strategy)
	if result.Cached {
		fmt.Fprint(out, " (cached)")
	}
	fmt.Fprintln(out)
	if len(result.Tasks) == 0 {
		fmt.Fprintln(out, "No tasks.")
		return nil
	}
	return writeScoredTable(out, result.Tasks)
}
