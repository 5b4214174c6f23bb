package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hmhhmm/apex-insurance/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Database.URL == "" {
			return eris.New("database.url (or DATABASE_URL) is required")
		}

		database, err := db.Connect(cmd.Context(), cfg.Database.URL)
		if err != nil {
			return eris.Wrap(err, "connect database")
		}
		defer database.Close()

		if err := database.Migrate(cmd.Context()); err != nil {
			return eris.Wrap(err, "migrate database")
		}
		zap.L().Info("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
