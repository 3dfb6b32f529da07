package cmd

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/brk3/habitflow/internal/server"
)

var serverCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the HTTP server and reminder scheduler",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			s := a.scheduler()
			s.Restore()
			go s.Start(cmd.Context())
			defer func() {
				s.Stop()
				s.Wait()
			}()

			srv := server.New(a.tracker, a.gateway, s)
			defer srv.Close()
			if err := srv.ListenAndServe(cmd.Context(), cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
