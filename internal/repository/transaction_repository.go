package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/secret"
)

// TransactionRepository provides data access methods for the journal_entry table.
// Entries are only ever inserted or deleted; there is no update path.
type TransactionRepository struct {
	db     *sql.DB
	tx     *sql.Tx
	cipher secret.Cipher
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
// A nil cipher stores notes unchanged.
func NewTransactionRepository(db *sql.DB, cipher secret.Cipher) *TransactionRepository {
	if cipher == nil {
		cipher = secret.Plaintext{}
	}
	return &TransactionRepository{db: db, cipher: cipher}
}

// WithTx returns a new TransactionRepository scoped to the provided transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db:     r.db,
		tx:     tx,
		cipher: r.cipher,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Append inserts a new journal entry and sets t.Seq to its insertion sequence.
func (r *TransactionRepository) Append(ctx context.Context, t *model.Transaction) error {
	notes, err := r.cipher.Seal(t.Notes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO journal_entry
			(id, owner_id, position_id, kind, quantity, price_per_unit, total_amount, traded_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		t.ID,
		t.OwnerID,
		t.PositionID,
		t.Kind,
		t.Quantity,
		t.PricePerUnit,
		t.TotalAmount,
		FormatTime(t.Timestamp),
		sql.NullString{String: notes, Valid: notes != ""},
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}

	t.Seq, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read journal sequence: %w", err)
	}
	return nil
}

// LatestTimestamp returns the timestamp of the newest entry of a position,
// or the zero time when it has none.
func (r *TransactionRepository) LatestTimestamp(ctx context.Context, positionID string) (time.Time, error) {
	var latest sql.NullString

	query := `SELECT MAX(traded_at) FROM journal_entry WHERE position_id = ?`
	if err := r.getQuerier().QueryRowContext(ctx, query, positionID).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("failed to query journal_entry table: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return ParseTime(latest.String)
}

// ListForPosition returns a position's entries oldest first, the order in
// which they were applied.
func (r *TransactionRepository) ListForPosition(ctx context.Context, positionID string) ([]model.Transaction, error) {
	query := `
		SELECT seq, id, owner_id, position_id, kind, quantity, price_per_unit, total_amount, traded_at, notes
		FROM journal_entry
		WHERE position_id = ?
		ORDER BY traded_at ASC, seq ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal_entry table: %w", err)
	}
	defer rows.Close()

	entries := []model.Transaction{}
	for rows.Next() {
		t, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal_entry table: %w", err)
	}
	return entries, nil
}

const enrichedColumns = `
	j.seq, j.id, j.owner_id, j.position_id, j.kind, j.quantity, j.price_per_unit,
	j.total_amount, j.traded_at, j.notes, p.symbol, p.name
`

// ListTransactions returns a page of the owner's journal, newest first. Ties
// on the timestamp are broken by insertion order, newest first.
// A non-empty filter.PositionID restricts the page to that position.
func (r *TransactionRepository) ListTransactions(ctx context.Context, ownerID string, filter model.TransactionFilter) ([]model.TransactionResponse, error) {
	query := `
		SELECT ` + enrichedColumns + `
		FROM journal_entry j
		JOIN position p ON j.position_id = p.id
		WHERE j.owner_id = ?
	`
	args := []any{ownerID}

	if filter.PositionID != "" {
		query += ` AND j.position_id = ?`
		args = append(args, filter.PositionID)
	}
	query += `
		ORDER BY j.traded_at DESC, j.seq DESC
		LIMIT ? OFFSET ?
	`
	args = append(args, filter.Limit, filter.Offset)

	return r.listEnriched(ctx, query, args...)
}

// ListForOwner returns the owner's whole journal oldest first. Used for export.
func (r *TransactionRepository) ListForOwner(ctx context.Context, ownerID string) ([]model.TransactionResponse, error) {
	query := `
		SELECT ` + enrichedColumns + `
		FROM journal_entry j
		JOIN position p ON j.position_id = p.id
		WHERE j.owner_id = ?
		ORDER BY j.traded_at ASC, j.seq ASC
	`
	return r.listEnriched(ctx, query, ownerID)
}

func (r *TransactionRepository) listEnriched(ctx context.Context, query string, args ...any) ([]model.TransactionResponse, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal_entry table: %w", err)
	}
	defer rows.Close()

	transactionResponse := []model.TransactionResponse{}
	for rows.Next() {
		t, err := r.scanEnriched(rows)
		if err != nil {
			return nil, err
		}
		transactionResponse = append(transactionResponse, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal_entry table: %w", err)
	}
	return transactionResponse, nil
}

// GetTransaction retrieves a single entry for the owner.
// Returns ErrTransactionNotFound if it does not exist or belongs to another owner.
func (r *TransactionRepository) GetTransaction(ctx context.Context, ownerID, transactionID string) (model.TransactionResponse, error) {
	query := `
		SELECT ` + enrichedColumns + `
		FROM journal_entry j
		JOIN position p ON j.position_id = p.id
		WHERE j.id = ? AND j.owner_id = ?
	`

	t, err := r.scanEnriched(r.getQuerier().QueryRowContext(ctx, query, transactionID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.TransactionResponse{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.TransactionResponse{}, err
	}
	return t, nil
}

// CountForOwner returns the number of journal entries the owner has.
func (r *TransactionRepository) CountForOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM journal_entry WHERE owner_id = ?`
	if err := r.getQuerier().QueryRowContext(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count journal entries: %w", err)
	}
	return count, nil
}

// DeleteEntry removes a single entry. It does not touch the owning position.
// Returns ErrTransactionNotFound if no entry matches.
func (r *TransactionRepository) DeleteEntry(ctx context.Context, ownerID, transactionID string) error {
	query := `DELETE FROM journal_entry WHERE id = ? AND owner_id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, transactionID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// DeleteAllFor removes every entry of a position and returns how many were removed.
func (r *TransactionRepository) DeleteAllFor(ctx context.Context, positionID string) (int64, error) {
	query := `DELETE FROM journal_entry WHERE position_id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, positionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete journal entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

func (r *TransactionRepository) scanTransaction(row rowScanner) (model.Transaction, error) {
	var t model.Transaction
	var tradedAtStr string
	var notes sql.NullString

	err := row.Scan(
		&t.Seq,
		&t.ID,
		&t.OwnerID,
		&t.PositionID,
		&t.Kind,
		&t.Quantity,
		&t.PricePerUnit,
		&t.TotalAmount,
		&tradedAtStr,
		&notes,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan journal_entry table results: %w", err)
	}

	return r.finish(t, tradedAtStr, notes)
}

func (r *TransactionRepository) scanEnriched(row rowScanner) (model.TransactionResponse, error) {
	var t model.TransactionResponse
	var tradedAtStr string
	var notes sql.NullString

	err := row.Scan(
		&t.Seq,
		&t.ID,
		&t.OwnerID,
		&t.PositionID,
		&t.Kind,
		&t.Quantity,
		&t.PricePerUnit,
		&t.TotalAmount,
		&tradedAtStr,
		&notes,
		&t.Symbol,
		&t.Name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TransactionResponse{}, err
	}
	if err != nil {
		return model.TransactionResponse{}, fmt.Errorf("failed to scan journal_entry table results: %w", err)
	}

	t.Transaction, err = r.finish(t.Transaction, tradedAtStr, notes)
	if err != nil {
		return model.TransactionResponse{}, err
	}
	return t, nil
}

// finish parses the timestamp and opens the notes of a scanned entry.
func (r *TransactionRepository) finish(t model.Transaction, tradedAtStr string, notes sql.NullString) (model.Transaction, error) {
	var err error
	t.Timestamp, err = ParseTime(tradedAtStr)
	if err != nil {
		return model.Transaction{}, err
	}

	if notes.Valid {
		t.Notes, err = r.cipher.Open(notes.String)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("failed to read notes of %s: %w", t.ID, err)
		}
	}
	return t, nil
}
