// Package cli holds the cobra command tree of the veridia binary.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"veridia_hiring/internal/config"
	"veridia_hiring/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const serviceName = "veridia-hiring"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg *config.Config
	log *slog.Logger
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	a, _ := cmd.Context().Value(appKey{}).(*app)
	return a
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "veridia",
		Short:         "Veridia hiring platform API",
		Long:          "Veridia serves the hiring platform REST API and offers offline tooling for its database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envErr := godotenv.Load()

			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			log := logger.New(serviceName, cfg.LogLevel)
			if envErr != nil {
				log.Debug("no .env file loaded, relying on environment variables", "error", envErr)
			}

			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, &app{cfg: cfg, log: log}))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml, json, toml or env)")

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newAdminCommand(),
		newStatsCommand(),
		newApplicationsCommand(),
	)
	return rootCmd
}

// Execute runs the root command until it returns or the process is signalled.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// connect opens the pool used by the database backed subcommands.
func (a *app) connect(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := config.ConnectDB(ctx, a.cfg, a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}
