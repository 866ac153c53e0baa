package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gurkanbulca/tasktracker/internal/service"
)

const superuserPasswordEnv = "TASKTRACKER_SUPERUSER_PASSWORD"

func createSuperuserCmd() *cobra.Command {
	var in service.RegisterInput

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a user with elevated privileges",
		Long: `Create an active user that sees task owners in API responses.

The password is read from --password or, when the flag is omitted, from
the ` + superuserPasswordEnv + ` environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				in.Password = os.Getenv(superuserPasswordEnv)
			}
			if in.Password == "" {
				return errors.New("a password is required")
			}

			ctx := cmd.Context()

			db, cfg, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := newAuthService(db, cfg, cmd.ErrOrStderr()).CreateSuperuser(ctx, in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Superuser %s created (%s)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "username of the superuser")
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "optional email address")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "password (prefer the environment variable)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}
