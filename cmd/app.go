package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/brk3/habitflow/internal/config"
	"github.com/brk3/habitflow/internal/insight"
	"github.com/brk3/habitflow/internal/keyring"
	"github.com/brk3/habitflow/internal/logger"
	"github.com/brk3/habitflow/internal/nudge"
	"github.com/brk3/habitflow/internal/nudge/resend"
	"github.com/brk3/habitflow/internal/reminder"
	"github.com/brk3/habitflow/internal/storage"
	"github.com/brk3/habitflow/internal/storage/bolt"
	"github.com/brk3/habitflow/internal/storage/sqlite"
	"github.com/brk3/habitflow/internal/tracker"
)

// app is the wiring shared by every command that touches habits.
type app struct {
	kv      storage.KV
	tracker *tracker.Tracker
	gateway insight.Gateway
	perms   *reminder.PermissionStore
}

func openApp(ctx context.Context) (*app, error) {
	kv, err := openKV(cfg.Storage)
	if err != nil {
		return nil, err
	}

	gateway, enabled := newGateway(ctx, cfg.Insight)
	var enrich insight.Gateway
	if enabled {
		enrich = gateway
	}

	return &app{
		kv:      kv,
		tracker: tracker.New(storage.NewHabits(kv), enrich),
		gateway: gateway,
		perms:   reminder.NewPermissionStore(kv),
	}, nil
}

// Close waits for pending insight requests so they are saved before the
// store goes away.
func (a *app) Close() {
	a.tracker.Close()
	if err := a.kv.Close(); err != nil {
		logger.Warn("Failed to close store", "error", err)
	}
}

func (a *app) scheduler() *reminder.Scheduler {
	return reminder.New(a.tracker, newNotifier(cfg.Reminders), a.perms,
		reminder.WithInterval(cfg.Reminders.Interval))
}

func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func openKV(c config.StorageConfig) (storage.KV, error) {
	switch c.Backend {
	case "bolt":
		s, err := bolt.Open(c.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.Open(c.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return storage.NewMemStore(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", c.Backend)
}

// newGateway returns a usable gateway and whether a model is behind it.
// Without an API key the gateway only ever yields fallbacks.
func newGateway(ctx context.Context, c config.InsightConfig) (insight.Gateway, bool) {
	key := keyring.ResolveAPIKey(c.APIKey)
	gen, err := insight.NewGemini(ctx, key, c.Model)
	if err != nil {
		if !errors.Is(err, insight.ErrDisabled) {
			logger.Warn("Gemini client unavailable", "error", err)
		}
		return insight.NewClient(insight.Disabled{}, c.Timeout), false
	}
	return insight.NewClient(gen, c.Timeout), true
}

func newNotifier(c config.ReminderConfig) nudge.Notifier {
	if c.ResendAPIKey != "" && c.NotifyEmail != "" {
		logger.Debug("Sending reminders by e-mail", "to", c.NotifyEmail)
		return resend.New(c.ResendAPIKey, c.FromEmail, c.NotifyEmail)
	}
	return nudge.LogNotifier{}
}

// interactive reports whether prompts can be shown on stdin.
var interactive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
