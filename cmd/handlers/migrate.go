package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
	"newsdesk/internal/logger"
	"newsdesk/internal/persistence"
)

// NewMigrateCmd creates the migrate command for database migrations
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Manage database schema migrations.

Subcommands:
  up       Apply all pending migrations
  status   Show migration status

The migration system tracks applied migrations in the schema_migrations table
and applies new migrations in sequential order. Both PostgreSQL and SQLite
databases are supported.

Examples:
  # Apply all pending migrations
  newsdesk migrate up

  # Check migration status
  newsdesk migrate status`,
	}

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateStatusCmd())

	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateUp(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateStatus(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runMigrateUp(ctx context.Context, out io.Writer) error {
	db, err := openDatabase(ctx, config.Get())
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := persistence.NewMigrationManager(db).WithLogger(logger.Get()).Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if applied == 0 {
		fmt.Fprintln(out, "✅ Database is up to date")
		return nil
	}
	fmt.Fprintf(out, "✅ Applied %d migration(s)\n", applied)
	return nil
}

func runMigrateStatus(ctx context.Context, out io.Writer) error {
	db, err := openDatabase(ctx, config.Get())
	if err != nil {
		return err
	}
	defer db.Close()

	status, err := persistence.NewMigrationManager(db).WithLogger(logger.Get()).Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	if len(status) == 0 {
		fmt.Fprintln(out, "No migrations found")
		return nil
	}

	fmt.Fprintf(out, "Migration Status (%s)\n", db.Dialect())
	fmt.Fprintf(out, "%-10s %-10s %s\n", "Version", "Status", "Description")

	pending := 0
	for _, m := range status {
		state := "applied"
		if !m.Applied {
			state = "pending"
			pending++
		}
		fmt.Fprintf(out, "%-10d %-10s %s\n", m.Version, state, m.Description)
	}

	fmt.Fprintf(out, "\nApplied: %d | Pending: %d | Total: %d\n", len(status)-pending, pending, len(status))
	if pending > 0 {
		fmt.Fprintln(out, "Run 'newsdesk migrate up' to apply pending migrations")
	}
	return nil
}
