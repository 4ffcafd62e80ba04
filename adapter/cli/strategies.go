package cli

import (
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/spf13/cobra"
)

var strategiesJSON bool

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List scoring strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		handler := queries.NewListStrategiesHandler()
		if app := GetApp(); app != nil && app.ListStrategiesHandler != nil {
			handler = app.ListStrategiesHandler
		}

		strategies := handler.Handle(cmd.Context())
		if strategiesJSON {
			return writeJSON(cmd.OutOrStdout(), strategies)
		}
		return writeStrategiesTable(cmd.OutOrStdout(), strategies)
	},
}

func init() {
	strategiesCmd.Flags().BoolVar(&strategiesJSON, "json", false, "print strategies as JSON")

	rootCmd.AddCommand(strategiesCmd)
}
