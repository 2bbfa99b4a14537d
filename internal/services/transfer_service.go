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

// TransferService moves money between two wallets of the same user. Both
// legs are written in one database transaction.
type TransferService struct {
	storage *storage.SQLiteRepository
	now     Clock
}

func NewTransferService(storage *storage.SQLiteRepository) *TransferService {
	return &TransferService{
		storage: storage,
		now:     systemClock,
	}
}

type CreateTransferInput struct {
	SourceWalletID      uuid.UUID
	DestinationWalletID uuid.UUID
	Amount              core.Money
	OccurredAt          time.Time
	Description         string
}

type UpdateTransferInput struct {
	SourceWalletID      *uuid.UUID
	DestinationWalletID *uuid.UUID
	Amount              *core.Money
	OccurredAt          *time.Time
	Description         *string
}

func validateTransfer(source, destination uuid.UUID, amount core.Money, description string) error {
	if source == destination {
		return core.Invalid("destination_wallet_id", "source and destination wallets must differ")
	}
	if err := validateAmount("amount", amount); err != nil {
		return err
	}
	return core.ValidateDescription(description)
}

func checkTransferWallets(ctx context.Context, q *storage.Queries, userID, source, destination uuid.UUID) error {
	if _, err := liveWallet(ctx, q, source, userID, "source_wallet_id"); err != nil {
		return err
	}
	if _, err := liveWallet(ctx, q, destination, userID, "destination_wallet_id"); err != nil {
		return err
	}
	return nil
}

func (s *TransferService) Create(ctx context.Context, actor core.Actor, in CreateTransferInput) (core.Transfer, error) {
	if err := validateTransfer(in.SourceWalletID, in.DestinationWalletID, in.Amount, in.Description); err != nil {
		return core.Transfer{}, err
	}
	now := s.now()
	if in.OccurredAt.IsZero() {
		in.OccurredAt = now
	}

	t := core.Transfer{
		ID:                  uuid.New(),
		UserID:              actor.UserID,
		SourceWalletID:      in.SourceWalletID,
		DestinationWalletID: in.DestinationWalletID,
		Amount:              in.Amount,
		OccurredAt:          in.OccurredAt.UTC(),
		Description:         in.Description,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		if err := checkTransferWallets(ctx, q, actor.UserID, t.SourceWalletID, t.DestinationWalletID); err != nil {
			return err
		}
		if err := ledger.New(q).Move(ctx, t.SourceWalletID, t.DestinationWalletID, t.Amount); err != nil {
			return err
		}
		return q.CreateTransfer(ctx, t)
	})
	if err != nil {
		return core.Transfer{}, fmt.Errorf("create transfer: %w", err)
	}

	slog.InfoContext(ctx, "Transfer created",
		"id", t.ID,
		"source_wallet_id", t.SourceWalletID,
		"destination_wallet_id", t.DestinationWalletID,
		"amount", t.Amount.String())
	return t, nil
}

// Update re-books the transfer when source, destination or amount change:
// the old legs are reverted first, then the new legs are applied against
// freshly read balances.
func (s *TransferService) Update(ctx context.Context, actor core.Actor, id uuid.UUID, in UpdateTransferInput) (core.Transfer, error) {
	var updated core.Transfer
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		old, err := q.GetTransfer(ctx, id)
		if err != nil {
			return err
		}
		if err := writable(actor, "transfer", id, old.UserID, old.IsDeleted); err != nil {
			return err
		}

		updated = old
		if in.SourceWalletID != nil {
			updated.SourceWalletID = *in.SourceWalletID
		}
		if in.DestinationWalletID != nil {
			updated.DestinationWalletID = *in.DestinationWalletID
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
		if err := validateTransfer(updated.SourceWalletID, updated.DestinationWalletID, updated.Amount, updated.Description); err != nil {
			return err
		}

		moved := updated.SourceWalletID != old.SourceWalletID ||
			updated.DestinationWalletID != old.DestinationWalletID ||
			!updated.Amount.Equal(old.Amount)
		if moved {
			if err := checkTransferWallets(ctx, q, old.UserID, updated.SourceWalletID, updated.DestinationWalletID); err != nil {
				return err
			}
			l := ledger.New(q)
			if err := l.Move(ctx, old.DestinationWalletID, old.SourceWalletID, old.Amount); err != nil {
				return err
			}
			if err := l.Move(ctx, updated.SourceWalletID, updated.DestinationWalletID, updated.Amount); err != nil {
				return err
			}
		}

		if err := q.UpdateTransfer(ctx, updated); err != nil {
			return err
		}
		updated.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return core.Transfer{}, fmt.Errorf("update transfer: %w", err)
	}

	slog.InfoContext(ctx, "Transfer updated", "id", id, "amount", updated.Amount.String())
	return updated, nil
}

// SoftDelete credits the source back, debits the destination and marks the
// transfer deleted.
func (s *TransferService) SoftDelete(ctx context.Context, actor core.Actor, id uuid.UUID) error {
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		t, err := q.GetTransfer(ctx, id)
		if err != nil {
			return err
		}
		if err := writable(actor, "transfer", id, t.UserID, t.IsDeleted); err != nil {
			return err
		}
		if err := ledger.New(q).Move(ctx, t.DestinationWalletID, t.SourceWalletID, t.Amount); err != nil {
			return err
		}
		return q.SoftDeleteTransfer(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete transfer: %w", err)
	}

	slog.InfoContext(ctx, "Transfer deleted", "id", id)
	return nil
}

func (s *TransferService) Get(ctx context.Context, actor core.Actor, id uuid.UUID) (core.Transfer, error) {
	t, err := s.storage.Queries().GetTransfer(ctx, id)
	if err != nil {
		return core.Transfer{}, err
	}
	if err := readable(actor, "transfer", id, t.UserID, t.IsDeleted); err != nil {
		return core.Transfer{}, err
	}
	return t, nil
}

func (s *TransferService) List(ctx context.Context, actor core.Actor) ([]core.Transfer, error) {
	return s.storage.Queries().ListTransfers(ctx, actor.UserID)
}
