// Package ledger owns wallet balance mutation. Nothing else writes a balance.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// BalanceStore is the persisted balance of live wallets. It is normally a
// transaction-scoped *storage.Queries.
type BalanceStore interface {
	WalletBalance(ctx context.Context, walletID uuid.UUID) (core.Money, error)
	SetWalletBalance(ctx context.Context, walletID uuid.UUID, balance core.Money) error
}

type Ledger struct {
	store BalanceStore
}

func New(store BalanceStore) *Ledger {
	return &Ledger{store: store}
}

// Credit adds amount to the wallet and returns the new balance.
func (l *Ledger) Credit(ctx context.Context, walletID uuid.UUID, amount core.Money) (core.Money, error) {
	return l.apply(ctx, walletID, amount)
}

// Debit subtracts amount from the wallet and returns the new balance. The
// balance may go negative.
func (l *Ledger) Debit(ctx context.Context, walletID uuid.UUID, amount core.Money) (core.Money, error) {
	return l.apply(ctx, walletID, amount.Neg())
}

// Apply books the effect of a transaction of kind on the wallet.
func (l *Ledger) Apply(ctx context.Context, walletID uuid.UUID, kind core.Kind, amount core.Money) (core.Money, error) {
	if kind == core.Credit {
		return l.Credit(ctx, walletID, amount)
	}
	return l.Debit(ctx, walletID, amount)
}

// Revert undoes Apply.
func (l *Ledger) Revert(ctx context.Context, walletID uuid.UUID, kind core.Kind, amount core.Money) (core.Money, error) {
	if kind == core.Credit {
		return l.Debit(ctx, walletID, amount)
	}
	return l.Credit(ctx, walletID, amount)
}

// Move debits from and credits to as one logical step.
func (l *Ledger) Move(ctx context.Context, from, to uuid.UUID, amount core.Money) error {
	if _, err := l.Debit(ctx, from, amount); err != nil {
		return err
	}
	if _, err := l.Credit(ctx, to, amount); err != nil {
		return err
	}
	return nil
}

func (l *Ledger) apply(ctx context.Context, walletID uuid.UUID, delta core.Money) (core.Money, error) {
	if delta.IsZero() {
		return core.Money{}, fmt.Errorf("apply to wallet %s: %w", walletID, core.ErrInvalidAmount)
	}
	// always re-read; callers may hold a stale copy of the wallet
	current, err := l.store.WalletBalance(ctx, walletID)
	if err != nil {
		return core.Money{}, fmt.Errorf("read wallet balance: %w", err)
	}
	next := current.Add(delta)
	if !next.InRange() {
		return core.Money{}, core.Invalid("amount", "wallet balance would exceed the supported range")
	}
	if err := l.store.SetWalletBalance(ctx, walletID, next); err != nil {
		return core.Money{}, fmt.Errorf("write wallet balance: %w", err)
	}
	return next, nil
}
