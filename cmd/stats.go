package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/brk3/habitflow/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion statistics",
	Long: `The "stats" command shows the last seven days of completions across all
habits, the weekly completion rate and which habits you complete most.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			habits := a.tracker.Snapshot()
			now := a.tracker.Now()
			o := stats.ComputeOverview(habits, now)

			cmd.Printf("Completed this week: %d\n", o.TotalCompleted)
			cmd.Printf("Weekly rate:         %d%%\n", o.WeeklyRate)
			cmd.Printf("Active habits:       %d\n", o.ActiveHabits)
			if o.TrackingSince != nil {
				cmd.Printf("Tracking since:      %s\n", o.TrackingSince.Local().Format("2 Jan 2006"))
			}

			cmd.Println()
			bar := lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
			for _, p := range stats.WeeklySeries(habits, now) {
				cmd.Printf("%s %s %d\n", p.Label, bar.Render(strings.Repeat("█", p.Completed)), p.Completed)
			}

			ranking := stats.Ranking(habits)
			if len(ranking) > 0 {
				cmd.Println()
				for i, r := range ranking {
					cmd.Printf("%d. %s %s (%d)\n", i+1, swatch(r.Color), r.Name, r.Completions)
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
