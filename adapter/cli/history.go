package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent analysis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.ListRunsHandler == nil {
			return errors.New("app not initialized")
		}

		runs, err := app.ListRunsHandler.Handle(cmd.Context(), queries.ListRunsQuery{Limit: historyLimit})
		if errors.Is(err, queries.ErrHistoryDisabled) {
			fmt.Fprintln(cmd.OutOrStdout(), "History is disabled. Set HISTORY_ENABLED=true to record runs.")
			return nil
		}
		if err != nil {
			return err
		}

		if historyJSON {
			return writeJSON(cmd.OutOrStdout(), runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
			return nil
		}
		return writeRunsTable(cmd.OutOrStdout(), runs)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print runs as JSON")

	rootCmd.AddCommand(historyCmd)
}
