package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
)

// PositionRepository provides data access methods for the position table.
type PositionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// WithTx returns a new PositionRepository scoped to the provided transaction.
func (r *PositionRepository) WithTx(tx *sql.Tx) *PositionRepository {
	return &PositionRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *PositionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const positionColumns = `
	id, owner_id, symbol, name, asset_kind, quantity, average_cost,
	last_traded_price, created_at, updated_at
`

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosition(row rowScanner) (model.Position, error) {
	var p model.Position
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Symbol,
		&p.Name,
		&p.AssetKind,
		&p.Quantity,
		&p.AverageCost,
		&p.LastTradedPrice,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return model.Position{}, err
	}

	p.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Position{}, err
	}
	p.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return model.Position{}, err
	}
	return p, nil
}

// GetPosition retrieves a position by ID for the given owner.
// Returns ErrPositionNotFound if it does not exist or belongs to another owner.
func (r *PositionRepository) GetPosition(ctx context.Context, ownerID, positionID string) (model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position WHERE id = ? AND owner_id = ?`

	p, err := scanPosition(r.getQuerier().QueryRowContext(ctx, query, positionID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Position{}, apperrors.ErrPositionNotFound
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to query position table: %w", err)
	}
	return p, nil
}

// GetPositionBySymbol retrieves the owner's position in symbol. The symbol
// must already be normalized.
// Returns ErrPositionNotFound if the owner holds no such position.
func (r *PositionRepository) GetPositionBySymbol(ctx context.Context, ownerID, symbol string) (model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position WHERE owner_id = ? AND symbol = ?`

	p, err := scanPosition(r.getQuerier().QueryRowContext(ctx, query, ownerID, symbol))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Position{}, apperrors.ErrPositionNotFound
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to query position table: %w", err)
	}
	return p, nil
}

// ListPositions returns all of the owner's positions ordered by symbol.
// Returns an empty slice when the owner has none.
func (r *PositionRepository) ListPositions(ctx context.Context, ownerID string) ([]model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position WHERE owner_id = ? ORDER BY symbol ASC`
	return r.list(ctx, query, ownerID)
}

// ListAllPositions returns every position of every owner. Used by the auditor.
func (r *PositionRepository) ListAllPositions(ctx context.Context) ([]model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position ORDER BY owner_id ASC, symbol ASC`
	return r.list(ctx, query)
}

func (r *PositionRepository) list(ctx context.Context, query string, args ...any) ([]model.Position, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}
	return positions, nil
}

// InsertPosition stores a new position.
// Returns ErrDuplicatePosition if the owner already holds the symbol.
func (r *PositionRepository) InsertPosition(ctx context.Context, p *model.Position) error {
	query := `
		INSERT INTO position (` + positionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.ID,
		p.OwnerID,
		p.Symbol,
		p.Name,
		p.AssetKind,
		p.Quantity,
		p.AverageCost,
		p.LastTradedPrice,
		FormatTime(p.CreatedAt),
		FormatTime(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicatePosition
	}
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}
	return nil
}

// UpdatePosition writes all mutable fields of p.
// Returns ErrPositionNotFound if no row matches p's ID and owner, and
// ErrDuplicatePosition if a symbol change collides with another position.
func (r *PositionRepository) UpdatePosition(ctx context.Context, p *model.Position) error {
	query := `
		UPDATE position
		SET symbol = ?, name = ?, quantity = ?, average_cost = ?, last_traded_price = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		p.Symbol,
		p.Name,
		p.Quantity,
		p.AverageCost,
		p.LastTradedPrice,
		FormatTime(p.UpdatedAt),
		p.ID,
		p.OwnerID,
	)
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicatePosition
	}
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrPositionNotFound
	}
	return nil
}

// DeletePosition removes a position. Its journal entries are removed by the
// foreign key cascade; callers that want an explicit count delete them first.
// Returns ErrPositionNotFound if no row matches.
func (r *PositionRepository) DeletePosition(ctx context.Context, ownerID, positionID string) error {
	query := `DELETE FROM position WHERE id = ? AND owner_id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, positionID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrPositionNotFound
	}
	return nil
}
