package main

import (
	"fmt"

	"github.com/orgball2608/wedding-gallery/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	withMigrator := func(use, short string, fn func(cmd *cobra.Command, m *db.Migrator) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := db.NewMigrator(cmd.Context(), ctx.config().GetDSN())
				if err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				defer m.Close()
				return fn(cmd, m)
			},
		}
	}

	migrateCmd.AddCommand(
		withMigrator("up", "Apply all pending migrations", func(cmd *cobra.Command, m *db.Migrator) error {
			if err := m.Up(cmd.Context()); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
			return nil
		}),
		withMigrator("down", "Roll back the latest migration", func(cmd *cobra.Command, m *db.Migrator) error {
			if err := m.Down(cmd.Context()); err != nil {
				return fmt.Errorf("failed to rollback migration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration rollback successful")
			return nil
		}),
		withMigrator("status", "Print migration status", func(cmd *cobra.Command, m *db.Migrator) error {
			return m.Status(cmd.Context())
		}),
		withMigrator("reset", "Roll back every migration", func(cmd *cobra.Command, m *db.Migrator) error {
			if err := m.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("failed to reset migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All migrations have been rolled back")
			return nil
		}),
		withMigrator("version", "Print the current schema version", func(cmd *cobra.Command, m *db.Migrator) error {
			v, err := m.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		}),
	)

	var dir string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Creating migration in: %s\n", dir)
			return db.CreateMigration(dir, args[0])
		},
	}
	createCmd.Flags().StringVar(&dir, "dir", "internal/migrations", "Migrations directory")
	migrateCmd.AddCommand(createCmd)

	return migrateCmd
}
