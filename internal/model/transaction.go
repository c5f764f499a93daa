package model

import "time"

// TransactionKind is the direction of a journal entry.
type TransactionKind string

const (
	TransactionKindBuy  TransactionKind = "BUY"
	TransactionKindSell TransactionKind = "SELL"
)

// Valid reports whether k is BUY or SELL.
func (k TransactionKind) Valid() bool {
	return k == TransactionKindBuy || k == TransactionKindSell
}

// Transaction is an immutable journal entry recording one applied trade.
// TotalAmount is fixed at creation and never recomputed.
type Transaction struct {
	ID           string          `json:"id"`
	Seq          int64           `json:"-"`
	OwnerID      string          `json:"ownerId"`
	PositionID   string          `json:"positionId"`
	Kind         TransactionKind `json:"kind"`
	Quantity     float64         `json:"quantity"`
	PricePerUnit float64         `json:"pricePerUnit"`
	TotalAmount  float64         `json:"totalAmount"`
	Timestamp    time.Time       `json:"timestamp"`
	Notes        string          `json:"notes,omitempty"`
}

// TransactionResponse represents a journal entry enriched with its position's
// symbol and name for API responses.
type TransactionResponse struct {
	Transaction
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// TransactionFilter narrows a journal listing.
// An empty PositionID lists the owner's whole journal.
type TransactionFilter struct {
	PositionID string
	Offset     int
	Limit      int
}

// TransactionExportRow is one CSV line of a journal export.
type TransactionExportRow struct {
	ID           string  `csv:"id"`
	Timestamp    string  `csv:"timestamp"`
	Symbol       string  `csv:"symbol"`
	Kind         string  `csv:"kind"`
	Quantity     float64 `csv:"quantity"`
	PricePerUnit float64 `csv:"price_per_unit"`
	TotalAmount  float64 `csv:"total_amount"`
	Notes        string  `csv:"notes"`
}
