package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const recurringColumns = `id, user_id, wallet_id, category_id, kind, amount_cents, frequency,
start_date, end_date, next_run, description, is_deleted, created_at, updated_at`

func scanRecurring(row rowScanner) (core.RecurringTransaction, error) {
	var (
		r     core.RecurringTransaction
		cents int64
	)
	err := row.Scan(&r.ID, &r.UserID, &r.WalletID, &r.CategoryID, &r.Kind, &cents, &r.Frequency,
		timeScanner{&r.StartDate}, nullTimeScanner{&r.EndDate}, timeScanner{&r.NextRun},
		&r.Description, &r.IsDeleted, timeScanner{&r.CreatedAt}, timeScanner{&r.UpdatedAt})
	r.Amount = core.NewMoneyFromCents(cents)
	return r, err
}

const createRecurring = `INSERT INTO recurring_transactions (` + recurringColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`

func (q *Queries) CreateRecurring(ctx context.Context, r core.RecurringTransaction) error {
	_, err := q.db.ExecContext(ctx, createRecurring,
		r.ID, r.UserID, r.WalletID, r.CategoryID, r.Kind, r.Amount.Cents(), r.Frequency,
		formatTime(r.StartDate), formatNullTime(r.EndDate), formatTime(r.NextRun),
		r.Description, formatTime(r.CreatedAt), formatTime(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert recurring transaction: %w", err)
	}
	return nil
}

const getRecurring = `SELECT ` + recurringColumns + ` FROM recurring_transactions WHERE id = ?`

func (q *Queries) GetRecurring(ctx context.Context, id uuid.UUID) (core.RecurringTransaction, error) {
	r, err := scanRecurring(q.db.QueryRowContext(ctx, getRecurring, id))
	if err != nil {
		return core.RecurringTransaction{}, notFound(err, "recurring transaction", id)
	}
	return r, nil
}

const updateRecurring = `UPDATE recurring_transactions
SET wallet_id = ?, category_id = ?, amount_cents = ?, frequency = ?, start_date = ?, end_date = ?,
    next_run = ?, description = ?, updated_at = ?
WHERE id = ? AND is_deleted = 0`

func (q *Queries) UpdateRecurring(ctx context.Context, r core.RecurringTransaction) error {
	res, err := q.db.ExecContext(ctx, updateRecurring,
		r.WalletID, r.CategoryID, r.Amount.Cents(), r.Frequency, formatTime(r.StartDate),
		formatNullTime(r.EndDate), formatTime(r.NextRun), r.Description, q.stamp(), r.ID)
	if err != nil {
		return fmt.Errorf("update recurring transaction: %w", err)
	}
	return expectOne(res, "recurring transaction", r.ID)
}

const setRecurringNextRun = `UPDATE recurring_transactions SET next_run = ?, updated_at = ?
WHERE id = ? AND is_deleted = 0`

func (q *Queries) SetRecurringNextRun(ctx context.Context, id uuid.UUID, next time.Time) error {
	res, err := q.db.ExecContext(ctx, setRecurringNextRun, formatTime(next), q.stamp(), id)
	if err != nil {
		return fmt.Errorf("advance recurring transaction: %w", err)
	}
	return expectOne(res, "recurring transaction", id)
}

const softDeleteRecurring = `UPDATE recurring_transactions SET is_deleted = 1, updated_at = ?
WHERE id = ? AND is_deleted = 0`

func (q *Queries) SoftDeleteRecurring(ctx context.Context, id uuid.UUID) error {
	res, err := q.db.ExecContext(ctx, softDeleteRecurring, q.stamp(), id)
	if err != nil {
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	return expectOne(res, "recurring transaction", id)
}

const listRecurring = `SELECT ` + recurringColumns + ` FROM recurring_transactions
WHERE user_id = ? AND is_deleted = 0 ORDER BY next_run, id`

func (q *Queries) ListRecurring(ctx context.Context, userID uuid.UUID) ([]core.RecurringTransaction, error) {
	rows, err := q.db.QueryContext(ctx, listRecurring, userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	defer rows.Close()

	var items []core.RecurringTransaction
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring transaction: %w", err)
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const listDueRecurringIDs = `SELECT id FROM recurring_transactions
WHERE is_deleted = 0 AND next_run <= ? ORDER BY next_run, id`

// ListDueRecurringIDs returns live rules whose next run is at or before now.
func (q *Queries) ListDueRecurringIDs(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rows, err := q.db.QueryContext(ctx, listDueRecurringIDs, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("list due recurring transactions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan recurring id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
