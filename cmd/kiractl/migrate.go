package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"kira/internal/infra"
	"kira/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema migrations",
	Long: `Apply the embedded migrations for the configured store driver.
PostgREST deployments manage their schema through the database behind PostgREST.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		switch cfg.StoreDriver {
		case infra.StorePostgres:
			db, err := sql.Open("postgres", cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("open postgres: %w", err)
			}
			defer db.Close()
			if err := migrations.RunPostgres(ctx, db); err != nil {
				return err
			}
		case infra.StoreSQLite:
			db, err := infra.OpenSQLite(ctx, cfg.SQLitePath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := migrations.RunSQLite(ctx, db); err != nil {
				return err
			}
		default:
			return fmt.Errorf("migrations are not managed for store driver %q", cfg.StoreDriver)
		}

		logger.Info().Str("driver", cfg.StoreDriver).Msg("migrations applied")
		return nil
	},
}
