package cli

import (
	"veridia_hiring/internal/config"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				a := appFrom(cmd)
				return config.NewMigrator(a.cfg, a.log).Up(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				a := appFrom(cmd)
				return config.NewMigrator(a.cfg, a.log).Down(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				a := appFrom(cmd)
				return config.NewMigrator(a.cfg, a.log).Status(cmd.Context())
			},
		},
	)
	return cmd
}
