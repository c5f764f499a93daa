package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/repository"
)

// Journal page sizes.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// TransactionService handles journal reads and entry deletion.
type TransactionService struct {
	store     repository.Store
	locks     *ledger.Locks
	summaries SummaryInvalidator
}

// NewTransactionService creates a new TransactionService. It must share its
// lock table with the PositionService. summaries may be nil.
func NewTransactionService(store repository.Store, locks *ledger.Locks, summaries SummaryInvalidator) *TransactionService {
	return &TransactionService{
		store:     store,
		locks:     locks,
		summaries: summaries,
	}
}

// ListTransactions returns a page of the owner's journal, newest first.
// A zero limit selects DefaultPageLimit; larger limits are capped at MaxPageLimit.
// Filtering by a position the owner does not hold returns ErrPositionNotFound.
func (s *TransactionService) ListTransactions(ctx context.Context, ownerID string, filter model.TransactionFilter) ([]model.TransactionResponse, error) {
	if ownerID == "" {
		return nil, apperrors.ErrInvalidOwner
	}
	if filter.Offset < 0 || filter.Limit < 0 {
		return nil, apperrors.ErrInvalidPagination
	}
	if filter.Limit == 0 {
		filter.Limit = DefaultPageLimit
	}
	if filter.Limit > MaxPageLimit {
		filter.Limit = MaxPageLimit
	}

	if filter.PositionID == "" {
		return s.store.Journal().ListTransactions(ctx, ownerID, filter)
	}

	var page []model.TransactionResponse
	err := s.store.WithinTx(ctx, true, func(u repository.UnitOfWork) error {
		if _, err := u.Positions().GetPosition(ctx, ownerID, filter.PositionID); err != nil {
			return err
		}
		var err error
		page, err = u.Journal().ListTransactions(ctx, ownerID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// GetTransaction retrieves a single journal entry.
func (s *TransactionService) GetTransaction(ctx context.Context, ownerID, transactionID string) (model.TransactionResponse, error) {
	if ownerID == "" {
		return model.TransactionResponse{}, apperrors.ErrInvalidOwner
	}
	if transactionID == "" {
		return model.TransactionResponse{}, apperrors.ErrInvalidTransactionID
	}
	return s.store.Journal().GetTransaction(ctx, ownerID, transactionID)
}

// DeleteTransaction removes a journal entry and rebuilds its position by
// replaying the remaining entries, so the stored quantity, average cost and
// last traded price stay consistent with the journal. If the remaining
// journal would oversell, nothing is deleted and ErrInsufficientHoldings is
// returned. When no entries remain the last traded price is kept.
func (s *TransactionService) DeleteTransaction(ctx context.Context, ownerID, transactionID string) error {
	if ownerID == "" {
		return apperrors.ErrInvalidOwner
	}
	if transactionID == "" {
		return apperrors.ErrInvalidTransactionID
	}

	target, err := s.store.Journal().GetTransaction(ctx, ownerID, transactionID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(target.PositionID)
	defer unlock()

	var remaining int
	err = s.store.WithinTx(ctx, false, func(u repository.UnitOfWork) error {
		position, err := u.Positions().GetPosition(ctx, ownerID, target.PositionID)
		if err != nil {
			return err
		}
		if err := u.Journal().DeleteEntry(ctx, ownerID, transactionID); err != nil {
			return err
		}

		entries, err := u.Journal().ListForPosition(ctx, position.ID)
		if err != nil {
			return err
		}
		replayed, err := ledger.Replay(entries)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			replayed.LastTradedPrice = position.LastTradedPrice
		}
		remaining = len(entries)

		replayed.Set(&position)
		position.UpdatedAt = time.Now().UTC()
		return u.Positions().UpdatePosition(ctx, &position)
	})
	if err != nil {
		return err
	}

	if s.summaries != nil {
		s.summaries.Invalidate(ownerID)
	}
	log.WithFields(log.Fields{
		"owner":       ownerID,
		"position":    target.PositionID,
		"transaction": transactionID,
		"remaining":   remaining,
	}).Debug("transaction deleted and position replayed")

	return nil
}

// ExportTransactions renders the owner's whole journal, oldest first, as CSV
// with a header row.
func (s *TransactionService) ExportTransactions(ctx context.Context, ownerID string) ([]byte, error) {
	if ownerID == "" {
		return nil, apperrors.ErrInvalidOwner
	}

	entries, err := s.store.Journal().ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	rows := make([]model.TransactionExportRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, model.TransactionExportRow{
			ID:           e.ID,
			Timestamp:    e.Timestamp.UTC().Format(time.RFC3339Nano),
			Symbol:       e.Symbol,
			Kind:         string(e.Kind),
			Quantity:     e.Quantity,
			PricePerUnit: e.PricePerUnit,
			TotalAmount:  e.TotalAmount,
			Notes:        e.Notes,
		})
	}

	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transactions: %w", err)
	}
	return out, nil
}
