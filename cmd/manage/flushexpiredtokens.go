package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func flushExpiredTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flushexpiredtokens",
		Short: "Delete blacklist entries for refresh tokens that have expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, cfg, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := newAuthService(db, cfg, cmd.ErrOrStderr()).FlushExpiredTokens(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired tokens\n", n)
			return nil
		},
	}
}
