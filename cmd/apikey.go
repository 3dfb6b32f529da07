package cmd

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/brk3/habitflow/internal/keyring"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage the Gemini API key stored in the OS keyring",
}

var apikeySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the Gemini API key",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		switch {
		case len(args) == 1:
			key = args[0]
		case interactive():
			err := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Gemini API key").
						EchoMode(huh.EchoModePassword).
						Value(&key),
				),
			).WithTheme(huh.ThemeDracula()).Run()
			if err != nil {
				return err
			}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return errors.New("an API key is required")
		}
		if err := keyring.SetAPIKey(key); err != nil {
			return err
		}
		cmd.Println("API key saved to keyring")
		return nil
	},
}

var apikeyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the Gemini API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keyring.DeleteAPIKey(); err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				cmd.Println("No API key stored")
				return nil
			}
			return err
		}
		cmd.Println("API key removed from keyring")
		return nil
	},
}

func init() {
	apikeyCmd.AddCommand(apikeySetCmd, apikeyDeleteCmd)
	rootCmd.AddCommand(apikeyCmd)
}
