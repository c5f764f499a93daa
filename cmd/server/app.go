package main

import (
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/api"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/config"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/database"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/logging"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/secret"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/service"
)

// bootstrap loads the configuration, sets up logging and opens the database.
// The caller closes the returned handle.
func bootstrap() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, nil, err
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.WithField("path", cfg.Database.Path).Info("connected to database")

	return cfg, db, nil
}

// newServices wires the services the way every command uses them.
func newServices(cfg *config.Config, db *sql.DB) (api.Services, error) {
	cipher, err := secret.New(cfg.Ledger.NotesKey)
	if err != nil {
		return api.Services{}, fmt.Errorf("invalid NOTES_KEY: %w", err)
	}

	store := repository.NewSQLStore(db, cipher)
	locks := ledger.NewLocks()
	portfolioService := service.NewPortfolioService(store, cfg.Ledger.SummaryCacheTTL)

	return api.Services{
		System:       service.NewSystemService(db),
		Positions:    service.NewPositionService(store, locks, portfolioService),
		Transactions: service.NewTransactionService(store, locks, portfolioService),
		Portfolio:    portfolioService,
		Audit:        service.NewAuditService(store),
	}, nil
}
