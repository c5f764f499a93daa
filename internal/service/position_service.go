package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/valuation"
)

// PositionService owns every mutation of a position. Mutations of one
// position are serialized through the shared lock table; each one commits
// its position write and journal append in a single unit of work.
type PositionService struct {
	store     repository.Store
	locks     *ledger.Locks
	summaries SummaryInvalidator
}

// NewPositionService creates a new PositionService. summaries may be nil.
func NewPositionService(store repository.Store, locks *ledger.Locks, summaries SummaryInvalidator) *PositionService {
	return &PositionService{
		store:     store,
		locks:     locks,
		summaries: summaries,
	}
}

// OpenPosition creates a position and journals its opening BUY.
// Returns ErrDuplicatePosition if the owner already holds the symbol,
// matched case-insensitively.
func (s *PositionService) OpenPosition(ctx context.Context, ownerID string, req request.CreatePositionRequest) (model.PositionValuation, error) {
	if ownerID == "" {
		return model.PositionValuation{}, apperrors.ErrInvalidOwner
	}
	symbol := ledger.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		return model.PositionValuation{}, apperrors.ErrInvalidSymbol
	}
	name := strings.TrimSpace(req.Name)
	if err := ledger.ValidateName(name); err != nil {
		return model.PositionValuation{}, err
	}
	kind := model.AssetKind(req.AssetKind)
	if !kind.Valid() {
		return model.PositionValuation{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidAssetKind, req.AssetKind)
	}
	opening, err := ledger.Apply(ledger.State{}, model.TransactionKindBuy, req.Quantity, req.Price)
	if err != nil {
		return model.PositionValuation{}, err
	}

	unlock := s.locks.Lock(ledger.SymbolKey(ownerID, symbol))
	defer unlock()

	now := time.Now().UTC()
	position := model.Position{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Symbol:    symbol,
		Name:      name,
		AssetKind: kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	opening.Set(&position)

	entry := model.Transaction{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		PositionID:   position.ID,
		Kind:         model.TransactionKindBuy,
		Quantity:     req.Quantity,
		PricePerUnit: req.Price,
		TotalAmount:  req.Quantity * req.Price,
		Timestamp:    now,
	}

	err = s.store.WithinTx(ctx, false, func(u repository.UnitOfWork) error {
		if err := u.Positions().InsertPosition(ctx, &position); err != nil {
			return err
		}
		return u.Journal().Append(ctx, &entry)
	})
	if err != nil {
		return model.PositionValuation{}, err
	}

	s.invalidate(ownerID)
	log.WithFields(log.Fields{
		"owner":    ownerID,
		"position": position.ID,
		"symbol":   symbol,
	}).Debug("position opened")

	return valuation.Value(position), nil
}

// ApplyTransaction applies a BUY or SELL to a position and appends it to the
// journal. A SELL larger than the holding fails with ErrInsufficientHoldings
// and changes nothing. The entry's timestamp is never earlier than the
// newest entry already journaled for the position.
func (s *PositionService) ApplyTransaction(ctx context.Context, ownerID string, req request.CreateTransactionRequest) (model.TransactionResponse, error) {
	if ownerID == "" {
		return model.TransactionResponse{}, apperrors.ErrInvalidOwner
	}
	if req.PositionID == "" {
		return model.TransactionResponse{}, apperrors.ErrInvalidPositionID
	}
	kind := model.TransactionKind(strings.ToUpper(req.Kind))
	if err := ledger.ValidateTrade(kind, req.Quantity, req.PricePerUnit); err != nil {
		return model.TransactionResponse{}, err
	}
	if err := ledger.ValidateNotes(req.Notes); err != nil {
		return model.TransactionResponse{}, err
	}

	unlock := s.locks.Lock(req.PositionID)
	defer unlock()

	var entry model.Transaction
	var position model.Position

	err := s.store.WithinTx(ctx, false, func(u repository.UnitOfWork) error {
		var err error
		position, err = u.Positions().GetPosition(ctx, ownerID, req.PositionID)
		if err != nil {
			return err
		}

		next, err := ledger.Apply(ledger.StateOf(position), kind, req.Quantity, req.PricePerUnit)
		if err != nil {
			return err
		}

		latest, err := u.Journal().LatestTimestamp(ctx, position.ID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		tradedAt := now
		if tradedAt.Before(latest) {
			tradedAt = latest
		}

		next.Set(&position)
		position.UpdatedAt = now
		if err := u.Positions().UpdatePosition(ctx, &position); err != nil {
			return err
		}

		entry = model.Transaction{
			ID:           uuid.New().String(),
			OwnerID:      ownerID,
			PositionID:   position.ID,
			Kind:         kind,
			Quantity:     req.Quantity,
			PricePerUnit: req.PricePerUnit,
			TotalAmount:  req.Quantity * req.PricePerUnit,
			Timestamp:    tradedAt,
			Notes:        req.Notes,
		}
		return u.Journal().Append(ctx, &entry)
	})
	if err != nil {
		return model.TransactionResponse{}, err
	}

	s.invalidate(ownerID)
	log.WithFields(log.Fields{
		"owner":    ownerID,
		"position": position.ID,
		"kind":     kind,
		"quantity": req.Quantity,
	}).Debug("transaction applied")

	return model.TransactionResponse{
		Transaction: entry,
		Symbol:      position.Symbol,
		Name:        position.Name,
	}, nil
}

// UpdatePosition applies an administrative correction. It is not journaled
// and never changes the average cost, so a later audit reports the position
// as drifted when quantity is overridden.
func (s *PositionService) UpdatePosition(ctx context.Context, ownerID, positionID string, req request.UpdatePositionRequest) (model.PositionValuation, error) {
	if ownerID == "" {
		return model.PositionValuation{}, apperrors.ErrInvalidOwner
	}
	if positionID == "" {
		return model.PositionValuation{}, apperrors.ErrInvalidPositionID
	}

	patch := model.PositionPatch{
		Symbol:          req.Symbol,
		Name:            req.Name,
		Quantity:        req.Quantity,
		LastTradedPrice: req.LastTradedPrice,
	}

	keys := []string{positionID}
	if patch.Symbol != nil {
		keys = append(keys, ledger.SymbolKey(ownerID, *patch.Symbol))
	}
	unlock := s.locks.LockAll(keys...)
	defer unlock()

	var position model.Position
	err := s.store.WithinTx(ctx, false, func(u repository.UnitOfWork) error {
		current, err := u.Positions().GetPosition(ctx, ownerID, positionID)
		if err != nil {
			return err
		}

		position, err = ledger.ApplyPatch(current, patch)
		if err != nil {
			return err
		}
		if patch.Empty() {
			return nil
		}

		if position.Symbol != current.Symbol {
			existing, err := u.Positions().GetPositionBySymbol(ctx, ownerID, position.Symbol)
			switch {
			case err == nil && existing.ID != position.ID:
				return apperrors.ErrDuplicatePosition
			case err != nil && !errors.Is(err, apperrors.ErrNotFound):
				return err
			}
		}

		position.UpdatedAt = time.Now().UTC()
		return u.Positions().UpdatePosition(ctx, &position)
	})
	if err != nil {
		return model.PositionValuation{}, err
	}

	if !patch.Empty() {
		s.invalidate(ownerID)
		log.WithFields(log.Fields{
			"owner":    ownerID,
			"position": positionID,
		}).Debug("position updated")
	}

	return valuation.Value(position), nil
}

// ClosePosition deletes a position together with its whole journal.
func (s *PositionService) ClosePosition(ctx context.Context, ownerID, positionID string) error {
	if ownerID == "" {
		return apperrors.ErrInvalidOwner
	}
	if positionID == "" {
		return apperrors.ErrInvalidPositionID
	}

	unlock := s.locks.Lock(positionID)
	defer unlock()

	var removed int64
	err := s.store.WithinTx(ctx, false, func(u repository.UnitOfWork) error {
		if _, err := u.Positions().GetPosition(ctx, ownerID, positionID); err != nil {
			return err
		}

		var err error
		removed, err = u.Journal().DeleteAllFor(ctx, positionID)
		if err != nil {
			return err
		}
		return u.Positions().DeletePosition(ctx, ownerID, positionID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ownerID)
	log.WithFields(log.Fields{
		"owner":    ownerID,
		"position": positionID,
		"entries":  removed,
	}).Debug("position closed")

	return nil
}

// GetPosition retrieves a single position with its valuation.
func (s *PositionService) GetPosition(ctx context.Context, ownerID, positionID string) (model.PositionValuation, error) {
	if ownerID == "" {
		return model.PositionValuation{}, apperrors.ErrInvalidOwner
	}
	p, err := s.store.Positions().GetPosition(ctx, ownerID, positionID)
	if err != nil {
		return model.PositionValuation{}, err
	}
	return valuation.Value(p), nil
}

// ListPositions retrieves the owner's positions ordered by symbol.
func (s *PositionService) ListPositions(ctx context.Context, ownerID string) ([]model.PositionValuation, error) {
	if ownerID == "" {
		return nil, apperrors.ErrInvalidOwner
	}
	positions, err := s.store.Positions().ListPositions(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return valuation.ValueAll(positions), nil
}

func (s *PositionService) invalidate(ownerID string) {
	if s.summaries != nil {
		s.summaries.Invalidate(ownerID)
	}
}
