package cmd

import (
	"github.com/spf13/cobra"
)

var inspireCmd = &cobra.Command{
	Use:   "inspire",
	Short: "Print a motivational line for today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			cmd.Println(a.gateway.DailyInspiration(cmd.Context(), a.tracker.Names()))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(inspireCmd)
}
