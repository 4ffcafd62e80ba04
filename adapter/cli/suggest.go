package cli

import (
	"errors"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/spf13/cobra"
)

var (
	suggestFile  string
	suggestLimit int
	suggestJSON  bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Show the tasks to work on next",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.SuggestTasksHandler == nil {
			return errors.New("app not initialized")
		}

		tasks, err := loadTasks(cmd, app, suggestFile)
		if err != nil {
			return err
		}

		result, err := app.SuggestTasksHandler.Handle(cmd.Context(), commands.SuggestTasksCommand{
			Tasks: tasks,
			Limit: suggestLimit,
		})
		if err != nil {
			return err
		}

		return printAnalysis(cmd, result, suggestJSON)
	},
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestFile, "file", "f", "-", "task batch file (.json, .yaml, .yml) or - for stdin")
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", commands.DefaultSuggestionLimit, "number of tasks to suggest")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "print the suggested tasks as JSON")

	rootCmd.AddCommand(suggestCmd)
}
