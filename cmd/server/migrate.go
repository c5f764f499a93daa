package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		version, err := database.Migrate(cmd.Context(), db)
		if err != nil {
			return err
		}

		log.WithField("version", version).Info("migrations complete")
		return nil
	},
}
