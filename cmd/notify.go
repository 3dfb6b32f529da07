package cmd

import (
	"github.com/spf13/cobra"

	"github.com/brk3/habitflow/internal/reminder"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Manage reminder notifications",
}

var notifyEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Allow reminder notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPermission(cmd, reminder.Granted)
	},
}

var notifyDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop reminder notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPermission(cmd, reminder.Denied)
	},
}

var notifyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether reminder notifications are allowed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			cmd.Printf("Notifications: %s\n", a.perms.Load())
			return nil
		})
	},
}

func init() {
	notifyCmd.AddCommand(notifyEnableCmd, notifyDisableCmd, notifyStatusCmd)
	rootCmd.AddCommand(notifyCmd)
}

func setPermission(cmd *cobra.Command, p reminder.Permission) error {
	return withApp(cmd, func(a *app) error {
		state, err := a.scheduler().RequestPermission(p)
		if err != nil {
			return err
		}
		cmd.Printf("Notifications: %s (scheduler %s)\n", p, state)
		return nil
	})
}
