package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneDate string

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a habit's completion for a day",
	Long: `The "done" command marks a habit complete for today, or for --date. Running
it again for the same day clears the mark.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			date := doneDate
			if date == "" {
				date = a.tracker.Today()
			}
			h, changed, err := a.tracker.ToggleCompletion(args[0], date)
			if !changed {
				if err != nil {
					return err
				}
				return fmt.Errorf("habit %q not found", args[0])
			}
			if h.CompletedOn(date) {
				cmd.Printf("%s %s done for %s\n", swatch(h.Color), h.Name, date)
			} else {
				cmd.Printf("%s %s not done for %s\n", swatch(h.Color), h.Name, date)
			}
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(doneCmd)
	doneCmd.Flags().StringVar(&doneDate, "date", "", "day to toggle as YYYY-MM-DD (default today)")
}
