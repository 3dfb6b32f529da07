package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/brk3/habitflow/internal/validation"
	"github.com/brk3/habitflow/pkg/habit"
)

var (
	addDescription string
	addFrequency   string
	addReminder    string
	addColor       string
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a habit",
	Long: `The "add" command creates a new habit. Without a name on an interactive
terminal a form asks for the details. An AI suggestion is fetched in the
background and attached once it arrives.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := habit.Draft{
			Description:  addDescription,
			Frequency:    habit.Frequency(addFrequency),
			ReminderTime: addReminder,
			Color:        addColor,
		}
		switch {
		case len(args) == 1:
			d.Name = args[0]
		case interactive():
			if err := runHabitForm(&d); err != nil {
				return err
			}
		default:
			return errors.New("a habit name is required")
		}
		return add(cmd, d)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "what the habit involves")
	addCmd.Flags().StringVarP(&addFrequency, "frequency", "f", "", "daily or weekly (default daily)")
	addCmd.Flags().StringVarP(&addReminder, "reminder", "r", "", "reminder time as HH:mm (default 09:00)")
	addCmd.Flags().StringVarP(&addColor, "color", "c", "", "display colour as #rrggbb")
}

func add(cmd *cobra.Command, d habit.Draft) error {
	if err := validation.Draft(d); err != nil {
		return fmt.Errorf("invalid habit: %s", validation.Summary(err))
	}
	return withApp(cmd, func(a *app) error {
		h, err := a.tracker.Create(d)
		if err != nil {
			return err
		}
		cmd.Printf("Created habit %s %q (%s)\n", swatch(h.Color), h.Name, h.ID)
		return nil
	})
}

func runHabitForm(d *habit.Draft) error {
	frequency := habit.Daily
	if d.Color == "" {
		d.Color = habit.DefaultColor
	}

	colors := make([]huh.Option[string], 0, len(habit.Palette))
	for _, c := range habit.Palette {
		colors = append(colors, huh.NewOption(swatch(c)+" "+c, c))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&d.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Value(&d.Description),
			huh.NewSelect[habit.Frequency]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", habit.Daily),
					huh.NewOption("Weekly", habit.Weekly),
				).
				Value(&frequency),
			huh.NewInput().
				Title("Reminder (HH:MM)").
				Placeholder(habit.DefaultReminderTime).
				Value(&d.ReminderTime).
				Validate(func(s string) error {
					if s == "" || habit.ValidReminderTime(s) {
						return nil
					}
					return fmt.Errorf("invalid time format, use HH:MM")
				}),
			huh.NewSelect[string]().
				Title("Colour").
				Options(colors...).
				Value(&d.Color),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		return err
	}
	d.Frequency = frequency
	return nil
}

func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}
