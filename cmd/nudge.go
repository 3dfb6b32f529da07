package cmd

import (
	"github.com/spf13/cobra"

	"github.com/brk3/habitflow/internal/config"
	"github.com/brk3/habitflow/internal/logger"
	"github.com/brk3/habitflow/internal/reminder"
	"github.com/brk3/habitflow/internal/storage"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run the reminder scheduler in the foreground",
	Long: `The "remind" command checks every minute for habits whose reminder time has
come and sends a notification for each. Enable notifications first with
"habitflow notify enable"; until then due reminders are only logged.

Habits and the notification setting are read from the store on every check,
so changes made with other commands apply without a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newRemindScheduler(cfg)
		if err != nil {
			return err
		}
		if s.Restore() != reminder.Armed {
			logger.Warn("Notifications are not enabled, reminders will only be logged")
		}
		s.Start(cmd.Context())
		s.Wait()
		return nil
	},
}

// newRemindScheduler builds a scheduler that reloads habits and the stored
// permission on every tick. The store is only open while a tick reads it.
func newRemindScheduler(c *config.Config) (*reminder.Scheduler, error) {
	kv, err := remindStore(c.Storage)
	if err != nil {
		return nil, err
	}
	habits := storage.NewHabits(kv)
	return reminder.New(reminder.SourceFunc(habits.Load), newNotifier(c.Reminders),
		reminder.NewPermissionStore(kv),
		reminder.WithInterval(c.Reminders.Interval),
		reminder.WithPermissionRefresh()), nil
}

func remindStore(c config.StorageConfig) (storage.KV, error) {
	if c.Backend == "memory" {
		return storage.NewMemStore(), nil
	}
	// Fail on a bad path or back end before the first tick.
	kv, err := openKV(c)
	if err != nil {
		return nil, err
	}
	if err := kv.Close(); err != nil {
		return nil, err
	}
	return storage.NewReopening(func() (storage.KV, error) { return openKV(c) }), nil
}

func init() {
	rootCmd.AddCommand(remindCmd)
}
