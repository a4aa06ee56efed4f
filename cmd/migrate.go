package main

import (
	"github.com/spf13/cobra"

	"github.com/mark47B/rostersync/internal/infra/storage/pg"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			db, err := pg.Connect(cmd.Context(), cfg.PostgresURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := pg.Migrate(db, cfg.MigrationsPath); err != nil {
				return err
			}
			log.Infow("migrations applied", "path", cfg.MigrationsPath)
			return nil
		},
	}
}
