package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/secret"
)

// PositionStore persists positions. Every lookup is scoped to an owner; a
// position owned by someone else is reported as not found.
type PositionStore interface {
	GetPosition(ctx context.Context, ownerID, positionID string) (model.Position, error)
	GetPositionBySymbol(ctx context.Context, ownerID, symbol string) (model.Position, error)
	ListPositions(ctx context.Context, ownerID string) ([]model.Position, error)
	ListAllPositions(ctx context.Context) ([]model.Position, error)
	InsertPosition(ctx context.Context, p *model.Position) error
	UpdatePosition(ctx context.Context, p *model.Position) error
	DeletePosition(ctx context.Context, ownerID, positionID string) error
}

// JournalStore persists the append-only transaction journal.
type JournalStore interface {
	Append(ctx context.Context, t *model.Transaction) error
	LatestTimestamp(ctx context.Context, positionID string) (time.Time, error)
	ListForPosition(ctx context.Context, positionID string) ([]model.Transaction, error)
	ListTransactions(ctx context.Context, ownerID string, filter model.TransactionFilter) ([]model.TransactionResponse, error)
	ListForOwner(ctx context.Context, ownerID string) ([]model.TransactionResponse, error)
	GetTransaction(ctx context.Context, ownerID, transactionID string) (model.TransactionResponse, error)
	CountForOwner(ctx context.Context, ownerID string) (int, error)
	DeleteEntry(ctx context.Context, ownerID, transactionID string) error
	DeleteAllFor(ctx context.Context, positionID string) (int64, error)
}

// UnitOfWork exposes the stores bound to one database transaction.
type UnitOfWork interface {
	Positions() PositionStore
	Journal() JournalStore
}

// Store is the storage handle injected into the services. Reads outside
// WithinTx run directly against the database.
type Store interface {
	UnitOfWork
	WithinTx(ctx context.Context, readOnly bool, fn func(UnitOfWork) error) error
	Ping(ctx context.Context) error
}

// SQLStore implements Store on top of database/sql.
type SQLStore struct {
	db        *sql.DB
	positions *PositionRepository
	journal   *TransactionRepository
}

// NewSQLStore creates a SQLStore. cipher seals journal notes at rest; pass
// secret.Plaintext{} to store them unchanged.
func NewSQLStore(db *sql.DB, cipher secret.Cipher) *SQLStore {
	return &SQLStore{
		db:        db,
		positions: NewPositionRepository(db),
		journal:   NewTransactionRepository(db, cipher),
	}
}

func (s *SQLStore) Positions() PositionStore { return s.positions }
func (s *SQLStore) Journal() JournalStore { return s.journal }

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type txUnit struct {
	positions *PositionRepository
	journal   *TransactionRepository
}

func (u txUnit) Positions() PositionStore { return u.positions }
func (u txUnit) Journal() JournalStore { return u.journal }

// WithinTx runs fn inside a database transaction. The transaction commits
// when fn returns nil and rolls back when fn returns an error or panics; a
// panic is re-raised after the rollback. A read-only unit is always rolled
// back, so it can never persist a write.
func (s *SQLStore) WithinTx(ctx context.Context, readOnly bool, fn func(UnitOfWork) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	unit := txUnit{
		positions: s.positions.WithTx(tx),
		journal:   s.journal.WithTx(tx),
	}
	if err = fn(unit); err != nil {
		return err
	}

	if readOnly {
		return tx.Rollback()
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
