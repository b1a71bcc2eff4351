package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bioclock/internal/platform/config"
	"bioclock/internal/platform/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending Postgres migrations",
	Long: `Apply every embedded schema migration that DATABASE_URL has not seen yet.
Use --status to list applied migrations without changing anything.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Bool("status", false, "List applied migrations only")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx := cmd.Context()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	out := cmd.OutOrStdout()
	if mustGetBool(cmd, "status") {
		applied, err := pool.MigrationsApplied(ctx)
		if err != nil {
			return fmt.Errorf("failed to list migrations: %w", err)
		}
		for _, v := range applied {
			fmt.Fprintln(out, v)
		}
		return nil
	}

	applied, err := pool.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if len(applied) == 0 {
		fmt.Fprintln(out, "schema is up to date")
		return nil
	}
	for _, v := range applied {
		fmt.Fprintf(out, "applied %s\n", v)
	}
	return nil
}
