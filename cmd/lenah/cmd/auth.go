package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/lenah/internal/mail"
)

const authTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorise Gmail access",
	Long: `Open the Google consent page in a browser and cache the resulting
token at gmail.token_path. The scope requested is gmail.compose, which
allows sending and saving drafts, unless gmail.scopes overrides it.

Run this again after changing gmail.scopes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
		defer cancel()
		return mail.Authorize(ctx, cfg.Gmail, cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
