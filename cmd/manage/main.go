package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bornholm/go-x/slogx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gurkanbulca/tasktracker/internal/config"
	"github.com/gurkanbulca/tasktracker/internal/database"
	"github.com/gurkanbulca/tasktracker/internal/repository"
	"github.com/gurkanbulca/tasktracker/internal/service"
	"github.com/gurkanbulca/tasktracker/pkg/auth"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "manage",
		Short:         "Administrative commands for the task tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file
			_ = godotenv.Load()
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createSuperuserCmd())
	rootCmd.AddCommand(flushExpiredTokensCmd())

	return rootCmd
}

// openDatabase connects using the same DB_ settings as the server.
func openDatabase(ctx context.Context) (*database.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	slog.SetDefault(slog.New(slogx.ContextHandler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}),
	}))

	db, err := database.Open(ctx, cfg.ToDatabaseConfig())
	if err != nil {
		return nil, nil, err
	}

	return db, cfg, nil
}

func newAuthService(db *database.DB, cfg *config.Config, out io.Writer) *service.AuthService {
	return service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewTokenBlacklist(db),
		auth.NewTokenManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTokenDuration, cfg.JWT.RefreshTokenDuration),
		auth.NewPasswordManager(cfg.PasswordOptions()...),
		service.NewSecurityLogger(slog.New(slog.NewTextHandler(out, nil))),
	)
}
