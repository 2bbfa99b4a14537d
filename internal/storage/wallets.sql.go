package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const walletColumns = `id, user_id, name, balance_cents, is_deleted, created_at, updated_at`

func scanWallet(row rowScanner) (core.Wallet, error) {
	var (
		w     core.Wallet
		cents int64
	)
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &cents, &w.IsDeleted,
		timeScanner{&w.CreatedAt}, timeScanner{&w.UpdatedAt})
	w.Balance = core.NewMoneyFromCents(cents)
	return w, err
}

var errDuplicateWallet = core.Invalid("name", "a wallet with this name already exists")

const createWallet = `INSERT INTO wallets (id, user_id, name, name_key, balance_cents, is_deleted, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, 0, ?, ?)`

func (q *Queries) CreateWallet(ctx context.Context, w core.Wallet) error {
	_, err := q.db.ExecContext(ctx, createWallet,
		w.ID, w.UserID, w.Name, core.NameKey(w.Name), w.Balance.Cents(),
		formatTime(w.CreatedAt), formatTime(w.UpdatedAt))
	if isUniqueViolation(err) {
		return errDuplicateWallet
	}
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

const getWallet = `SELECT ` + walletColumns + ` FROM wallets WHERE id = ?`

// GetWallet returns the wallet whether or not it is soft-deleted.
func (q *Queries) GetWallet(ctx context.Context, id uuid.UUID) (core.Wallet, error) {
	w, err := scanWallet(q.db.QueryRowContext(ctx, getWallet, id))
	if err != nil {
		return core.Wallet{}, notFound(err, "wallet", id)
	}
	return w, nil
}

const listWallets = `SELECT ` + walletColumns + ` FROM wallets
WHERE user_id = ? AND is_deleted = 0 ORDER BY name_key`

func (q *Queries) ListWallets(ctx context.Context, userID uuid.UUID) ([]core.Wallet, error) {
	rows, err := q.db.QueryContext(ctx, listWallets, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var items []core.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

const renameWallet = `UPDATE wallets SET name = ?, name_key = ?, updated_at = ?
WHERE id = ? AND is_deleted = 0`

func (q *Queries) RenameWallet(ctx context.Context, id uuid.UUID, name string) error {
	res, err := q.db.ExecContext(ctx, renameWallet, name, core.NameKey(name), q.stamp(), id)
	if isUniqueViolation(err) {
		return errDuplicateWallet
	}
	if err != nil {
		return fmt.Errorf("rename wallet: %w", err)
	}
	return expectOne(res, "wallet", id)
}

const softDeleteWallet = `UPDATE wallets SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`

func (q *Queries) SoftDeleteWallet(ctx context.Context, id uuid.UUID) error {
	res, err := q.db.ExecContext(ctx, softDeleteWallet, q.stamp(), id)
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	return expectOne(res, "wallet", id)
}

const walletBalance = `SELECT balance_cents FROM wallets WHERE id = ? AND is_deleted = 0`

// WalletBalance reads the persisted balance of a live wallet.
func (q *Queries) WalletBalance(ctx context.Context, id uuid.UUID) (core.Money, error) {
	var cents int64
	if err := q.db.QueryRowContext(ctx, walletBalance, id).Scan(&cents); err != nil {
		return core.Money{}, notFound(err, "wallet", id)
	}
	return core.NewMoneyFromCents(cents), nil
}

const setWalletBalance = `UPDATE wallets SET balance_cents = ?, updated_at = ? WHERE id = ? AND is_deleted = 0`

func (q *Queries) SetWalletBalance(ctx context.Context, id uuid.UUID, balance core.Money) error {
	res, err := q.db.ExecContext(ctx, setWalletBalance, balance.Cents(), q.stamp(), id)
	if err != nil {
		return fmt.Errorf("set wallet balance: %w", err)
	}
	return expectOne(res, "wallet", id)
}

const walletInUse = `SELECT
    EXISTS (SELECT 1 FROM transactions WHERE wallet_id = ?1 AND is_deleted = 0)
 OR EXISTS (SELECT 1 FROM transfers WHERE (source_wallet_id = ?1 OR destination_wallet_id = ?1) AND is_deleted = 0)
 OR EXISTS (SELECT 1 FROM recurring_transactions WHERE wallet_id = ?1 AND is_deleted = 0)`

// WalletInUse reports whether any live transaction, transfer or recurring rule references the wallet.
func (q *Queries) WalletInUse(ctx context.Context, id uuid.UUID) (bool, error) {
	var used bool
	if err := q.db.QueryRowContext(ctx, walletInUse, id).Scan(&used); err != nil {
		return false, fmt.Errorf("check wallet usage: %w", err)
	}
	return used, nil
}
