package cli

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.DBPassword == "" {
				return errors.New("DB_PASSWORD environment variable is required")
			}

			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			slog.Info("migration complete")
			return nil
		},
	}
}
