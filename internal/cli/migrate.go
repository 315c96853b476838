package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	postgres_adapter "valuation-service/internal/adapters/postgres"
)

// NewMigrateCmd - управление схемой omi_* через встроенные миграции
func NewMigrateCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		newMigrateUpCmd(opts),
		newMigrateDownCmd(opts),
		newMigrateStatusCmd(opts),
	)

	return cmd
}

func newMigrateUpCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL(opts)
			if err != nil {
				return err
			}
			if err := postgres_adapter.RunMigrations(url); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}

func newMigrateDownCmd(opts *RootOptions) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL(opts)
			if err != nil {
				return err
			}
			if err := postgres_adapter.RollbackMigrations(url, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s).\n", steps)
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	return cmd
}

func newMigrateStatusCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL(opts)
			if err != nil {
				return err
			}
			version, dirty, err := postgres_adapter.MigrationStatus(url)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version: %d, dirty: %t\n", version, dirty)
			return nil
		},
	}
}

func databaseURL(opts *RootOptions) (string, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return "", err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return "", err
	}
	return cfg.Database.URL, nil
}
