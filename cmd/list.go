package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/brk3/habitflow/internal/stats"
	"github.com/brk3/habitflow/pkg/habit"
)

var (
	nameStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits",
	Long:  `The "list" command lets you list your tracked habits.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			habits := a.tracker.Snapshot()
			if len(habits) == 0 {
				cmd.Println("No habits yet. Create one with \"habitflow add\".")
				return nil
			}
			today := a.tracker.Today()
			for _, h := range habits {
				cmd.Println(renderHabit(h, today))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func renderHabit(h habit.Habit, today string) string {
	status := mutedStyle.Render("○ not done today")
	if h.CompletedOn(today) {
		status = doneStyle.Render("✓ done today")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", swatch(h.Color), nameStyle.Render(h.Name), mutedStyle.Render(h.ID))
	fmt.Fprintf(&b, "  %s · %d%% success · %s · reminder %s", h.Frequency, stats.CompletionRate(h), status, h.ReminderTime)
	if h.Description != "" {
		fmt.Fprintf(&b, "\n  %s", h.Description)
	}
	if s := h.AISuggestion; s != nil {
		fmt.Fprintf(&b, "\n  %s", mutedStyle.Render(s.IdentityStatement))
		for _, tip := range s.Tips {
			fmt.Fprintf(&b, "\n    - %s", tip)
		}
	}
	return b.String()
}
