package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"statflow/internal/migration"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "statflow-migrate",
		Short: "Manage the statflow run history schema",
	}

	rootCmd.AddCommand(
		newUpCmd(),
		newSQLCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newUpCmd() *cobra.Command {
	var databaseURL string
	var timeout time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply the schema to the database",
		Long: `Create or upgrade the analysis_runs table and its indexes. Every
statement is idempotent, so running it twice is harmless.

Example: statflow-migrate up --database-url postgres://localhost/statflow?sslmode=disable`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := migration.NewRunner()
			if dryRun {
				printStatements(cmd, runner)
				return nil
			}
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if err := runner.Run(ctx, db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema %s applied\n", runner.Version())
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Time limit for the whole migration")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the statements instead of executing them")

	return cmd
}

func newSQLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sql",
		Short: "Print the schema statements",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printStatements(cmd, migration.NewRunner())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the schema version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), migration.NewRunner().Version())
		},
	}
}

func printStatements(cmd *cobra.Command, runner *migration.MigrationRunner) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "-- statflow schema %s\n", runner.Version())
	for _, stmt := range runner.Statements() {
		fmt.Fprintf(out, "%s;\n\n", strings.TrimRight(strings.TrimSpace(stmt), ";"))
	}
}
