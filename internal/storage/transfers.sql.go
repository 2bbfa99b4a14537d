package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const transferColumns = `id, user_id, source_wallet_id, destination_wallet_id, amount_cents,
occurred_at, description, is_deleted, created_at, updated_at`

func scanTransfer(row rowScanner) (core.Transfer, error) {
	var (
		t     core.Transfer
		cents int64
	)
	err := row.Scan(&t.ID, &t.UserID, &t.SourceWalletID, &t.DestinationWalletID, &cents,
		timeScanner{&t.OccurredAt}, &t.Description, &t.IsDeleted,
		timeScanner{&t.CreatedAt}, timeScanner{&t.UpdatedAt})
	t.Amount = core.NewMoneyFromCents(cents)
	return t, err
}

const createTransfer = `INSERT INTO transfers (` + transferColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`

func (q *Queries) CreateTransfer(ctx context.Context, t core.Transfer) error {
	_, err := q.db.ExecContext(ctx, createTransfer,
		t.ID, t.UserID, t.SourceWalletID, t.DestinationWalletID, t.Amount.Cents(),
		formatTime(t.OccurredAt), t.Description, formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

const getTransfer = `SELECT ` + transferColumns + ` FROM transfers WHERE id = ?`

func (q *Queries) GetTransfer(ctx context.Context, id uuid.UUID) (core.Transfer, error) {
	t, err := scanTransfer(q.db.QueryRowContext(ctx, getTransfer, id))
	if err != nil {
		return core.Transfer{}, notFound(err, "transfer", id)
	}
	return t, nil
}

const updateTransfer = `UPDATE transfers
SET source_wallet_id = ?, destination_wallet_id = ?, amount_cents = ?, occurred_at = ?, description = ?, updated_at = ?
WHERE id = ? AND is_deleted = 0`

func (q *Queries) UpdateTransfer(ctx context.Context, t core.Transfer) error {
	res, err := q.db.ExecContext(ctx, updateTransfer,
		t.SourceWalletID, t.DestinationWalletID, t.Amount.Cents(), formatTime(t.OccurredAt),
		t.Description, q.stamp(), t.ID)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	return expectOne(res, "transfer", t.ID)
}

const softDeleteTransfer = `UPDATE transfers SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`

func (q *Queries) SoftDeleteTransfer(ctx context.Context, id uuid.UUID) error {
	res, err := q.db.ExecContext(ctx, softDeleteTransfer, q.stamp(), id)
	if err != nil {
		return fmt.Errorf("delete transfer: %w", err)
	}
	return expectOne(res, "transfer", id)
}

const listTransfers = `SELECT ` + transferColumns + ` FROM transfers
WHERE user_id = ? AND is_deleted = 0 ORDER BY occurred_at DESC, id`

func (q *Queries) ListTransfers(ctx context.Context, userID uuid.UUID) ([]core.Transfer, error) {
	rows, err := q.db.QueryContext(ctx, listTransfers, userID)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var items []core.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
