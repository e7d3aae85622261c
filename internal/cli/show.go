package cli

import (
	"github.com/spf13/cobra"

	"prediction-dashboard/internal/app"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Run one refresh cycle and print the snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ShowOptions{
			JSON: showJSON,
		}
		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the raw snapshot JSON")
}
