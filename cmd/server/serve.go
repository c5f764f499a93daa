package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/api"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/database"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Apply pending migrations and serve the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		schemaVersion, err := database.Migrate(cmd.Context(), db)
		if err != nil {
			return err
		}
		log.WithField("version", schemaVersion).Info("database schema is up to date")

		services, err := newServices(cfg, db)
		if err != nil {
			return err
		}

		stopAudit, err := services.Audit.StartSchedule(cfg.Ledger.AuditSchedule)
		if err != nil {
			return err
		}
		defer stopAudit()

		server := &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      api.NewRouter(services, cfg),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErr := make(chan error, 1)
		go func() {
			log.WithField("addr", cfg.Server.Addr).Info("starting server")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
			close(serverErr)
		}()

		// Wait for interrupt signal for graceful shutdown
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-serverErr:
			return err
		case <-quit:
		}

		log.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return err
		}

		log.Info("server exited")
		return nil
	},
}
