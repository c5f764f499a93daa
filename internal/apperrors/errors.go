package apperrors

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the ledger wraps exactly one of
// these, so callers can branch with errors.Is without knowing the specific cause.
var (
	// ErrInvalidArgument indicates caller input that can never succeed
	// (non-positive quantity or price, unknown kind, empty symbol).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict indicates that an entity with the same unique key already exists.
	ErrConflict = errors.New("conflict")

	// ErrNotFound indicates that a referenced entity does not exist or is not
	// owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientHoldings indicates that a sell exceeds the quantity held.
	ErrInsufficientHoldings = errors.New("insufficient holdings for sale")
)

// Domain entity errors.
var (
	// ErrPositionNotFound indicates that a position with the given ID does not exist for the owner.
	ErrPositionNotFound = fmt.Errorf("position %w", ErrNotFound)

	// ErrTransactionNotFound indicates that a journal entry with the given ID does not exist for the owner.
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)

	// ErrDuplicatePosition indicates that the owner already holds a position in the symbol.
	ErrDuplicatePosition = fmt.Errorf("%w: position with this symbol already exists", ErrConflict)
)

// Validation errors raised by the ledger itself.
var (
	ErrNonPositiveQuantity    = fmt.Errorf("%w: quantity must be positive", ErrInvalidArgument)
	ErrNonPositivePrice       = fmt.Errorf("%w: price must be positive", ErrInvalidArgument)
	ErrNegativeQuantity       = fmt.Errorf("%w: quantity cannot be negative", ErrInvalidArgument)
	ErrInvalidTransactionKind = fmt.Errorf("%w: transaction kind must be BUY or SELL", ErrInvalidArgument)
	ErrInvalidAssetKind       = fmt.Errorf("%w: asset kind must be STOCK, BOND, MUTUAL_FUND or ETF", ErrInvalidArgument)
	ErrInvalidSymbol          = fmt.Errorf("%w: symbol is required", ErrInvalidArgument)
	ErrInvalidOwner           = fmt.Errorf("%w: owner is required", ErrInvalidArgument)
	ErrInvalidPagination      = fmt.Errorf("%w: offset and limit cannot be negative", ErrInvalidArgument)
	ErrInvalidPositionID      = fmt.Errorf("%w: position ID is required", ErrInvalidArgument)
	ErrInvalidTransactionID   = fmt.Errorf("%w: transaction ID is required", ErrInvalidArgument)
	ErrNameTooLong            = fmt.Errorf("%w: name cannot exceed 100 characters", ErrInvalidArgument)
	ErrNotesTooLong           = fmt.Errorf("%w: notes cannot exceed 500 characters", ErrInvalidArgument)
)

// Operation failure errors used as user-facing messages by the HTTP layer.
var (
	ErrFailedToRetrievePositions    = errors.New("failed to retrieve positions")
	ErrFailedToRetrievePosition     = errors.New("failed to retrieve position")
	ErrFailedToCreatePosition       = errors.New("failed to create position")
	ErrFailedToUpdatePosition       = errors.New("failed to update position")
	ErrFailedToDeletePosition       = errors.New("failed to delete position")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToCreateTransaction    = errors.New("failed to create transaction")
	ErrFailedToDeleteTransaction    = errors.New("failed to delete transaction")
	ErrFailedToGetPortfolioSummary  = errors.New("failed to get portfolio summary")
	ErrFailedToReconcile            = errors.New("failed to reconcile position")
	ErrFailedToExportTransactions   = errors.New("failed to export transactions")
)

// Data integrity errors.
var (
	// ErrDataInconsistency indicates that stored data is in an inconsistent state
	// (e.g. a journal entry references a position that no longer exists).
	ErrDataInconsistency = errors.New("data inconsistency detected")
)
