package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/secret"
)

var symbolCounter atomic.Int64

// MakeID returns a new random UUID string.
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol returns a unique ticker-like symbol.
func MakeSymbol() string {
	return fmt.Sprintf("TST%d", symbolCounter.Add(1))
}

// PositionBuilder provides a fluent interface for creating test positions.
// The built position is stored directly, without an opening journal entry;
// add entries with NewTransaction when the journal matters.
//
// Example usage:
//
//	// Simple creation with defaults
//	position := testutil.NewPosition(ownerID).Build(t, db)
//
//	// Customized position
//	position := testutil.NewPosition(ownerID).
//	    WithSymbol("AAPL").
//	    WithHolding(10, 100).
//	    Build(t, db)
type PositionBuilder struct {
	ID              string
	OwnerID         string
	Symbol          string
	Name            string
	AssetKind       model.AssetKind
	Quantity        float64
	AverageCost     float64
	LastTradedPrice float64
}

// NewPosition creates a PositionBuilder with sensible defaults.
func NewPosition(ownerID string) *PositionBuilder {
	return &PositionBuilder{
		ID:              MakeID(),
		OwnerID:         ownerID,
		Symbol:          MakeSymbol(),
		Name:            "Test Position",
		AssetKind:       model.AssetKindStock,
		Quantity:        10,
		AverageCost:     100,
		LastTradedPrice: 100,
	}
}

// WithSymbol sets a custom symbol. It is stored as given.
func (b *PositionBuilder) WithSymbol(symbol string) *PositionBuilder {
	b.Symbol = symbol
	return b
}

// WithName sets a custom name.
func (b *PositionBuilder) WithName(name string) *PositionBuilder {
	b.Name = name
	return b
}

// WithAssetKind sets a custom asset kind.
func (b *PositionBuilder) WithAssetKind(kind model.AssetKind) *PositionBuilder {
	b.AssetKind = kind
	return b
}

// WithHolding sets quantity and average cost; the last traded price follows the cost.
func (b *PositionBuilder) WithHolding(quantity, averageCost float64) *PositionBuilder {
	b.Quantity = quantity
	b.AverageCost = averageCost
	b.LastTradedPrice = averageCost
	return b
}

// WithLastTradedPrice sets a custom last traded price.
func (b *PositionBuilder) WithLastTradedPrice(price float64) *PositionBuilder {
	b.LastTradedPrice = price
	return b
}

// Build inserts the position into the database and returns it.
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	now := time.Now().UTC()
	p := model.Position{
		ID:              b.ID,
		OwnerID:         b.OwnerID,
		Symbol:          b.Symbol,
		Name:            b.Name,
		AssetKind:       b.AssetKind,
		Quantity:        b.Quantity,
		AverageCost:     b.AverageCost,
		LastTradedPrice: b.LastTradedPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := repository.NewPositionRepository(db).InsertPosition(context.Background(), &p); err != nil {
		t.Fatalf("Failed to create position: %v", err)
	}
	return p
}

// TransactionBuilder provides a fluent interface for creating journal entries.
// Entries are written straight to the journal and do not change the position.
type TransactionBuilder struct {
	ID           string
	OwnerID      string
	PositionID   string
	Kind         model.TransactionKind
	Quantity     float64
	PricePerUnit float64
	Timestamp    time.Time
	Notes        string
}

// NewTransaction creates a TransactionBuilder for a BUY of 10 units at 100.
func NewTransaction(p model.Position) *TransactionBuilder {
	return &TransactionBuilder{
		ID:           MakeID(),
		OwnerID:      p.OwnerID,
		PositionID:   p.ID,
		Kind:         model.TransactionKindBuy,
		Quantity:     10,
		PricePerUnit: 100,
		Timestamp:    time.Now().UTC(),
	}
}

// WithSell turns the entry into a SELL.
func (b *TransactionBuilder) WithSell() *TransactionBuilder {
	b.Kind = model.TransactionKindSell
	return b
}

// WithTrade sets quantity and price.
func (b *TransactionBuilder) WithTrade(quantity, price float64) *TransactionBuilder {
	b.Quantity = quantity
	b.PricePerUnit = price
	return b
}

// WithTimestamp sets a custom timestamp.
func (b *TransactionBuilder) WithTimestamp(ts time.Time) *TransactionBuilder {
	b.Timestamp = ts
	return b
}

// WithNotes sets custom notes.
func (b *TransactionBuilder) WithNotes(notes string) *TransactionBuilder {
	b.Notes = notes
	return b
}

// Build appends the entry to the journal and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	tx := model.Transaction{
		ID:           b.ID,
		OwnerID:      b.OwnerID,
		PositionID:   b.PositionID,
		Kind:         b.Kind,
		Quantity:     b.Quantity,
		PricePerUnit: b.PricePerUnit,
		TotalAmount:  b.Quantity * b.PricePerUnit,
		Timestamp:    b.Timestamp,
		Notes:        b.Notes,
	}

	journal := repository.NewTransactionRepository(db, secret.Plaintext{})
	if err := journal.Append(context.Background(), &tx); err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}
	return tx
}
