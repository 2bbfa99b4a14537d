package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/storage"
)

// TransactionService creates, updates and soft-deletes single-wallet
// transactions. Every balance change happens in the same database
// transaction as the row change.
type TransactionService struct {
	storage *storage.SQLiteRepository
	budgets *BudgetMonitor
	now     Clock
}

func NewTransactionService(storage *storage.SQLiteRepository, budgets *BudgetMonitor) *TransactionService {
	return &TransactionService{
		storage: storage,
		budgets: budgets,
		now:     systemClock,
	}
}

type CreateTransactionInput struct {
	WalletID   uuid.UUID
	CategoryID uuid.UUID
	// Kind defaults to debit.
	Kind        core.Kind
	Amount      core.Money
	OccurredAt  time.Time
	Description string
}

type UpdateTransactionInput struct {
	WalletID    *uuid.UUID
	CategoryID  *uuid.UUID
	Amount      *core.Money
	OccurredAt  *time.Time
	Description *string
}

func (in *CreateTransactionInput) normalize(now time.Time) error {
	if in.Kind == "" {
		in.Kind = core.Debit
	}
	if !in.Kind.Valid() {
		return core.Invalid("kind", "must be credit or debit")
	}
	if err := validateAmount("amount", in.Amount); err != nil {
		return err
	}
	if err := core.ValidateDescription(in.Description); err != nil {
		return err
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = now
	}
	in.OccurredAt = in.OccurredAt.UTC()
	return nil
}

// Create books a new transaction for the actor and queues a budget check.
func (s *TransactionService) Create(ctx context.Context, actor core.Actor, in CreateTransactionInput) (core.Transaction, error) {
	if err := in.normalize(s.now()); err != nil {
		return core.Transaction{}, err
	}

	var tx core.Transaction
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		var err error
		tx, err = s.createInTx(ctx, q, actor.UserID, in, nil)
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", tx.ID,
		"wallet_id", tx.WalletID,
		"kind", tx.Kind,
		"amount", tx.Amount.String())

	s.budgets.Trigger(ctx, tx.ID)
	return tx, nil
}

// createInTx validates references, moves the balance and inserts the row.
// in must already be normalized.
func (s *TransactionService) createInTx(ctx context.Context, q *storage.Queries, userID uuid.UUID, in CreateTransactionInput, recurringID *uuid.UUID) (core.Transaction, error) {
	if _, err := liveWallet(ctx, q, in.WalletID, userID, "wallet_id"); err != nil {
		return core.Transaction{}, err
	}
	if _, err := liveCategory(ctx, q, in.CategoryID, userID, in.Kind); err != nil {
		return core.Transaction{}, err
	}

	if _, err := ledger.New(q).Apply(ctx, in.WalletID, in.Kind, in.Amount); err != nil {
		return core.Transaction{}, err
	}

	now := s.now()
	categoryID := in.CategoryID
	tx := core.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		WalletID:    in.WalletID,
		CategoryID:  &categoryID,
		RecurringID: recurringID,
		Kind:        in.Kind,
		Amount:      in.Amount,
		OccurredAt:  in.OccurredAt,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := q.CreateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// Update edits a live transaction in place. When the amount or wallet changes
// the old effect is reverted on the old wallet before the new one is applied.
func (s *TransactionService) Update(ctx context.Context, actor core.Actor, id uuid.UUID, in UpdateTransactionInput) (core.Transaction, error) {
	if in.Amount != nil {
		if err := validateAmount("amount", *in.Amount); err != nil {
			return core.Transaction{}, err
		}
	}
	if in.Description != nil {
		if err := core.ValidateDescription(*in.Description); err != nil {
			return core.Transaction{}, err
		}
	}

	var updated core.Transaction
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		old, err := q.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if err := writable(actor, "transaction", id, old.UserID, old.IsDeleted); err != nil {
			return err
		}

		updated = old
		if in.WalletID != nil && *in.WalletID != old.WalletID {
			if _, err := liveWallet(ctx, q, *in.WalletID, old.UserID, "wallet_id"); err != nil {
				return err
			}
			updated.WalletID = *in.WalletID
		}
		if in.CategoryID != nil && (old.CategoryID == nil || *in.CategoryID != *old.CategoryID) {
			if _, err := liveCategory(ctx, q, *in.CategoryID, old.UserID, old.Kind); err != nil {
				return err
			}
			categoryID := *in.CategoryID
			updated.CategoryID = &categoryID
		}
		if in.Amount != nil {
			updated.Amount = *in.Amount
		}
		if in.OccurredAt != nil {
			updated.OccurredAt = in.OccurredAt.UTC()
		}
		if in.Description != nil {
			updated.Description = *in.Description
		}

		if !updated.Amount.Equal(old.Amount) || updated.WalletID != old.WalletID {
			l := ledger.New(q)
			if _, err := l.Revert(ctx, old.WalletID, old.Kind, old.Amount); err != nil {
				return err
			}
			if _, err := l.Apply(ctx, updated.WalletID, updated.Kind, updated.Amount); err != nil {
				return err
			}
		}

		if err := q.UpdateTransaction(ctx, updated); err != nil {
			return err
		}
		updated.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated",
		"id", updated.ID,
		"wallet_id", updated.WalletID,
		"amount", updated.Amount.String())

	s.budgets.Trigger(ctx, updated.ID)
	return updated, nil
}

// SoftDelete reverts the transaction's effect and marks it deleted. Deleting
// an already deleted transaction yields a NotFoundError.
func (s *TransactionService) SoftDelete(ctx context.Context, actor core.Actor, id uuid.UUID) error {
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		tx, err := q.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if err := writable(actor, "transaction", id, tx.UserID, tx.IsDeleted); err != nil {
			return err
		}
		if _, err := ledger.New(q).Revert(ctx, tx.WalletID, tx.Kind, tx.Amount); err != nil {
			return err
		}
		return q.SoftDeleteTransaction(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, actor core.Actor, id uuid.UUID) (core.Transaction, error) {
	tx, err := s.storage.Queries().GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := readable(actor, "transaction", id, tx.UserID, tx.IsDeleted); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// List returns the actor's live transactions, newest first.
func (s *TransactionService) List(ctx context.Context, actor core.Actor, filter storage.TransactionFilter) ([]core.Transaction, error) {
	filter.UserID = actor.UserID
	return s.storage.Queries().ListTransactions(ctx, filter)
}
