package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const transactionColumns = `id, user_id, wallet_id, category_id, recurring_id, kind, amount_cents,
occurred_at, description, is_deleted, created_at, updated_at`

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		category  uuid.NullUUID
		recurring uuid.NullUUID
		cents     int64
	)
	err := row.Scan(&t.ID, &t.UserID, &t.WalletID, &category, &recurring, &t.Kind, &cents,
		timeScanner{&t.OccurredAt}, &t.Description, &t.IsDeleted,
		timeScanner{&t.CreatedAt}, timeScanner{&t.UpdatedAt})
	if category.Valid {
		t.CategoryID = &category.UUID
	}
	if recurring.Valid {
		t.RecurringID = &recurring.UUID
	}
	t.Amount = core.NewMoneyFromCents(cents)
	return t, err
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

const createTransaction = `INSERT INTO transactions (` + transactionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`

func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		t.ID, t.UserID, t.WalletID, nullUUID(t.CategoryID), nullUUID(t.RecurringID),
		t.Kind, t.Amount.Cents(), formatTime(t.OccurredAt), t.Description,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	t, err := scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
	if err != nil {
		return core.Transaction{}, notFound(err, "transaction", id)
	}
	return t, nil
}

const updateTransaction = `UPDATE transactions
SET wallet_id = ?, category_id = ?, amount_cents = ?, occurred_at = ?, description = ?, updated_at = ?
WHERE id = ? AND is_deleted = 0`

// UpdateTransaction rewrites the mutable columns. Kind and owner never change.
func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		t.WalletID, nullUUID(t.CategoryID), t.Amount.Cents(), formatTime(t.OccurredAt),
		t.Description, q.stamp(), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return expectOne(res, "transaction", t.ID)
}

const softDeleteTransaction = `UPDATE transactions SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`

func (q *Queries) SoftDeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := q.db.ExecContext(ctx, softDeleteTransaction, q.stamp(), id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectOne(res, "transaction", id)
}

// TransactionFilter narrows ListTransactions. Zero fields are ignored.
type TransactionFilter struct {
	UserID     uuid.UUID
	WalletID   *uuid.UUID
	CategoryID *uuid.UUID
	Kind       core.Kind
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

func (q *Queries) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	var (
		where = []string{"user_id = ?", "is_deleted = 0"}
		args  = []interface{}{f.UserID}
	)
	if f.WalletID != nil {
		where = append(where, "wallet_id = ?")
		args = append(args, *f.WalletID)
	}
	if f.CategoryID != nil {
		where = append(where, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.From != nil {
		where = append(where, "occurred_at >= ?")
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		where = append(where, "occurred_at < ?")
		args = append(args, formatTime(*f.To))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY occurred_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var items []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const sumDebits = `SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
WHERE user_id = ? AND category_id = ? AND kind = 'debit' AND is_deleted = 0
  AND occurred_at >= ? AND occurred_at < ?`

// SumDebits totals live debit transactions of a category in [from, to).
func (q *Queries) SumDebits(ctx context.Context, userID, categoryID uuid.UUID, from, to time.Time) (core.Money, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx, sumDebits, userID, categoryID, formatTime(from), formatTime(to)).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum debits: %w", err)
	}
	return core.NewMoneyFromCents(cents), nil
}
