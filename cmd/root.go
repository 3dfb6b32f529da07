package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brk3/habitflow/internal/config"
	"github.com/brk3/habitflow/internal/logger"
)

var (
	cfgFile string
	debug   bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "habitflow",
	Short: "Track daily habits with AI coaching and reminders",
	Long: `
	Habitflow keeps a list of the habits you are building, lets you tick them off
	day by day and shows how consistent you have been. New habits are enriched with
	an AI-written identity statement and tips, and reminders fire at each habit's
	chosen time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default config.yaml, or $HABITFLOW_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func setup() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile, true)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if debug {
		level = slog.LevelDebug
	}
	logger.Setup(logger.Options{Level: level, Format: cfg.Log.Format, File: cfg.Log.File})
	logger.Debug("Config loaded", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)
	return nil
}
