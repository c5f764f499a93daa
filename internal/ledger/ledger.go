// Package ledger holds the position arithmetic: how a holding's quantity and
// cost basis evolve as trades are applied, and how a journal is replayed.
// It performs no I/O; callers own persistence and locking.
package ledger

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
)

// State is the part of a position affected by trades.
type State struct {
	Quantity        float64
	AverageCost     float64
	LastTradedPrice float64
}

// StateOf extracts the trade-affected fields of p.
func StateOf(p model.Position) State {
	return State{
		Quantity:        p.Quantity,
		AverageCost:     p.AverageCost,
		LastTradedPrice: p.LastTradedPrice,
	}
}

// Set copies s into p.
func (s State) Set(p *model.Position) {
	p.Quantity = s.Quantity
	p.AverageCost = s.AverageCost
	p.LastTradedPrice = s.LastTradedPrice
}

// NormalizeSymbol trims and upper-cases a symbol. All symbol comparisons
// happen on the normalized form.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Field length limits, counted in runes.
const (
	MaxNameLength  = 100
	MaxNotesLength = 500
)

// ValidateName checks a position's display name.
func ValidateName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return apperrors.ErrNameTooLong
	}
	return nil
}

// ValidateNotes checks the free-text notes of a journal entry.
func ValidateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return apperrors.ErrNotesTooLong
	}
	return nil
}

// ValidateTrade checks the arguments shared by every trade.
func ValidateTrade(kind model.TransactionKind, quantity, price float64) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidTransactionKind, kind)
	}
	if !(quantity > 0) {
		return apperrors.ErrNonPositiveQuantity
	}
	if !(price > 0) {
		return apperrors.ErrNonPositivePrice
	}
	return nil
}

// Apply returns the state that results from applying one trade to s.
// s itself is never modified, so a rejected trade leaves nothing to undo.
//
// BUY moves the average cost to the quantity-weighted mean of the existing
// holding and the new lot. SELL reduces the quantity and keeps the cost basis
// of the remaining units. Either way the trade price becomes the last traded price.
func Apply(s State, kind model.TransactionKind, quantity, price float64) (State, error) {
	if err := ValidateTrade(kind, quantity, price); err != nil {
		return s, err
	}

	next := s
	switch kind {
	case model.TransactionKindBuy:
		newQuantity := s.Quantity + quantity
		if newQuantity > 0 {
			next.AverageCost = (s.Quantity*s.AverageCost + quantity*price) / newQuantity
		} else {
			next.AverageCost = price
		}
		next.Quantity = newQuantity
	case model.TransactionKindSell:
		if quantity > s.Quantity {
			return s, fmt.Errorf("%w: selling %g but holding %g", apperrors.ErrInsufficientHoldings, quantity, s.Quantity)
		}
		next.Quantity = s.Quantity - quantity
	}
	next.LastTradedPrice = price

	return next, nil
}

// Replay rebuilds a position's state from an empty holding by applying the
// given journal entries in order (oldest first). The last traded price of the
// result is zero when entries is empty.
func Replay(entries []model.Transaction) (State, error) {
	var s State
	for i, e := range entries {
		next, err := Apply(s, e.Kind, e.Quantity, e.PricePerUnit)
		if err != nil {
			return s, fmt.Errorf("replay entry %d (%s): %w", i, e.ID, err)
		}
		s = next
	}
	return s, nil
}

// ApplyPatch merges an administrative correction into p. Fields are applied
// one by one with their own rule; nothing is changed if any rule fails.
// AverageCost is never touched.
func ApplyPatch(p model.Position, patch model.PositionPatch) (model.Position, error) {
	if patch.Symbol != nil {
		symbol := NormalizeSymbol(*patch.Symbol)
		if symbol == "" {
			return p, apperrors.ErrInvalidSymbol
		}
		p.Symbol = symbol
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := ValidateName(name); err != nil {
			return p, err
		}
		p.Name = name
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			return p, apperrors.ErrNegativeQuantity
		}
		p.Quantity = *patch.Quantity
	}
	if patch.LastTradedPrice != nil {
		if !(*patch.LastTradedPrice > 0) {
			return p, apperrors.ErrNonPositivePrice
		}
		p.LastTradedPrice = *patch.LastTradedPrice
	}
	return p, nil
}
