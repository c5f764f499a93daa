package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/secret"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/service"
)

// Services bundles the services wired the way main wires them: one store,
// one lock table and the portfolio service as the summary invalidator.
type Services struct {
	Store        *repository.SQLStore
	Positions    *service.PositionService
	Transactions *service.TransactionService
	Portfolio    *service.PortfolioService
	Audit        *service.AuditService
	System       *service.SystemService
}

// NewTestServices wires every service against db. Notes are stored in plaintext.
func NewTestServices(t *testing.T, db *sql.DB) Services {
	t.Helper()

	store := repository.NewSQLStore(db, secret.Plaintext{})
	locks := ledger.NewLocks()
	portfolio := service.NewPortfolioService(store, time.Minute)

	return Services{
		Store:        store,
		Positions:    service.NewPositionService(store, locks, portfolio),
		Transactions: service.NewTransactionService(store, locks, portfolio),
		Portfolio:    portfolio,
		Audit:        service.NewAuditService(store),
		System:       service.NewSystemService(db),
	}
}
