package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/storage"
)

type WalletService struct {
	storage *storage.SQLiteRepository
	now     Clock
}

func NewWalletService(storage *storage.SQLiteRepository) *WalletService {
	return &WalletService{
		storage: storage,
		now:     systemClock,
	}
}

// Create opens a wallet. A positive opening balance is credited through the
// ledger in the same database transaction.
func (s *WalletService) Create(ctx context.Context, actor core.Actor, name string, opening core.Money) (core.Wallet, error) {
	name = core.NormalizeName(name)
	if err := core.ValidateName("name", name); err != nil {
		return core.Wallet{}, err
	}
	if opening.IsNegative() {
		return core.Wallet{}, core.Invalid("balance", "must not be negative")
	}

	now := s.now()
	w := core.Wallet{
		ID:        uuid.New(),
		UserID:    actor.UserID,
		Name:      name,
		Balance:   core.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		if err := q.CreateWallet(ctx, w); err != nil {
			return err
		}
		if opening.IsZero() {
			return nil
		}
		balance, err := ledger.New(q).Credit(ctx, w.ID, opening)
		w.Balance = balance
		return err
	})
	if err != nil {
		return core.Wallet{}, fmt.Errorf("create wallet: %w", err)
	}

	slog.InfoContext(ctx, "Wallet created",
		"id", w.ID,
		"balance", w.Balance.String())
	return w, nil
}

func (s *WalletService) Rename(ctx context.Context, actor core.Actor, id uuid.UUID, name string) (core.Wallet, error) {
	name = core.NormalizeName(name)
	if err := core.ValidateName("name", name); err != nil {
		return core.Wallet{}, err
	}

	var w core.Wallet
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if w, err = q.GetWallet(ctx, id); err != nil {
			return err
		}
		if err := writable(actor, "wallet", id, w.UserID, w.IsDeleted); err != nil {
			return err
		}
		if err := q.RenameWallet(ctx, id, name); err != nil {
			return err
		}
		w.Name = name
		w.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return core.Wallet{}, fmt.Errorf("rename wallet: %w", err)
	}
	return w, nil
}

// SoftDelete refuses wallets that still hold money or are referenced by live
// transactions, transfers or recurring rules.
func (s *WalletService) SoftDelete(ctx context.Context, actor core.Actor, id uuid.UUID) error {
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		w, err := q.GetWallet(ctx, id)
		if err != nil {
			return err
		}
		if err := writable(actor, "wallet", id, w.UserID, w.IsDeleted); err != nil {
			return err
		}
		if !w.Balance.IsZero() {
			return core.Invalid("balance", "wallet balance must be zero before deletion")
		}
		used, err := q.WalletInUse(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return core.Invalid("wallet", "wallet is referenced by live records")
		}
		return q.SoftDeleteWallet(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}

	slog.InfoContext(ctx, "Wallet deleted", "id", id)
	return nil
}

func (s *WalletService) Get(ctx context.Context, actor core.Actor, id uuid.UUID) (core.Wallet, error) {
	w, err := s.storage.Queries().GetWallet(ctx, id)
	if err != nil {
		return core.Wallet{}, err
	}
	if err := readable(actor, "wallet", id, w.UserID, w.IsDeleted); err != nil {
		return core.Wallet{}, err
	}
	return w, nil
}

func (s *WalletService) List(ctx context.Context, actor core.Actor) ([]core.Wallet, error) {
	return s.storage.Queries().ListWallets(ctx, actor.UserID)
}
