package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/brk3/habitflow/internal/logger"
	"github.com/brk3/habitflow/internal/tracker"
	"github.com/brk3/habitflow/pkg/habit"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a habit and its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if _, ok := a.tracker.Get(args[0]); !ok {
				return fmt.Errorf("habit %q not found", args[0])
			}
			deleted, err := a.tracker.Delete(args[0], deleteConfirmer())
			if err != nil {
				return err
			}
			if !deleted {
				cmd.Println("Deletion cancelled. Pass --yes to delete without a prompt.")
				return nil
			}
			cmd.Printf("Deleted habit %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
}

func deleteConfirmer() tracker.Confirmer {
	return tracker.ConfirmFunc(func(h habit.Habit) bool {
		if deleteYes {
			return true
		}
		if !interactive() {
			return false
		}
		var ok bool
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete %q and all of its history?", h.Name)).
					Affirmative("Delete").
					Negative("Keep").
					Value(&ok),
			),
		).WithTheme(huh.ThemeDracula()).Run()
		if err != nil {
			logger.Debug("Confirmation prompt aborted", "error", err)
			return false
		}
		return ok
	})
}
