package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/brk3/habitflow/internal/apiclient"
	"github.com/brk3/habitflow/pkg/versioninfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `The "version" command displays the current version info for both client
and server if available.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version(cmd)
	},
}

func version(cmd *cobra.Command) {
	cmd.Printf("Client Version: %s\n", versioninfo.Version)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
	defer cancel()
	info, err := apiclient.New(cfg.APIBaseURL).Version(ctx)
	if err != nil {
		cmd.Println("Server Version: unavailable")
		return
	}
	cmd.Printf("Server Version: %s\n", info.Version)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
