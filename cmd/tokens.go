package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/eduverse-backend/internal/app"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Maintain stored session tokens",
}

var tokensCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired refresh tokens once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := app.New(cmd.Context(), app.Options{SkipMigrate: true})
		if err != nil {
			return fmt.Errorf("initialize app: %w", err)
		}
		defer a.Close()

		n, err := a.Services.Auth.CleanupExpiredTokens(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired tokens\n", n)
		return nil
	},
}

func init() {
	tokensCmd.AddCommand(tokensCleanupCmd)
}
