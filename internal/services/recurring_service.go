package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// RecurringService manages recurring transaction rules. Materializing them is
// the RecurringProcessor's job.
type RecurringService struct {
	storage *storage.SQLiteRepository
	now     Clock
}

func NewRecurringService(storage *storage.SQLiteRepository) *RecurringService {
	return &RecurringService{
		storage: storage,
		now:     systemClock,
	}
}

type CreateRecurringInput struct {
	WalletID    uuid.UUID
	CategoryID  uuid.UUID
	Kind        core.Kind
	Amount      core.Money
	Frequency   core.Frequency
	StartDate   time.Time
	EndDate     *time.Time
	Description string
}

type UpdateRecurringInput struct {
	WalletID   *uuid.UUID
	CategoryID *uuid.UUID
	Amount     *core.Money
	Frequency  *core.Frequency
	StartDate  *time.Time
	// EndDate replaces the end date when SetEndDate is true; nil clears it.
	EndDate     *time.Time
	SetEndDate  bool
	Description *string
}

func (s *RecurringService) validateDates(start time.Time, end *time.Time, checkStart bool) error {
	if checkStart && core.DayOf(start).Before(core.DayOf(s.now())) {
		return core.Invalid("start_date", "cannot be in the past")
	}
	if end != nil && !end.After(start) {
		return core.Invalid("end_date", "must be after the start date")
	}
	return nil
}

func (s *RecurringService) Create(ctx context.Context, actor core.Actor, in CreateRecurringInput) (core.RecurringTransaction, error) {
	if in.Kind == "" {
		in.Kind = core.Debit
	}
	if !in.Kind.Valid() {
		return core.RecurringTransaction{}, core.Invalid("kind", "must be credit or debit")
	}
	if !in.Frequency.Valid() {
		return core.RecurringTransaction{}, core.Invalid("frequency", "must be daily, weekly, monthly or yearly")
	}
	if err := validateAmount("amount", in.Amount); err != nil {
		return core.RecurringTransaction{}, err
	}
	if err := core.ValidateDescription(in.Description); err != nil {
		return core.RecurringTransaction{}, err
	}
	if in.StartDate.IsZero() {
		return core.RecurringTransaction{}, core.Invalid("start_date", "is required")
	}
	start := in.StartDate.UTC()
	var end *time.Time
	if in.EndDate != nil {
		e := in.EndDate.UTC()
		end = &e
	}
	if err := s.validateDates(start, end, true); err != nil {
		return core.RecurringTransaction{}, err
	}

	now := s.now()
	r := core.RecurringTransaction{
		ID:          uuid.New(),
		UserID:      actor.UserID,
		WalletID:    in.WalletID,
		CategoryID:  in.CategoryID,
		Kind:        in.Kind,
		Amount:      in.Amount,
		Frequency:   in.Frequency,
		StartDate:   start,
		EndDate:     end,
		NextRun:     start,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		if _, err := liveWallet(ctx, q, r.WalletID, r.UserID, "wallet_id"); err != nil {
			return err
		}
		if _, err := liveCategory(ctx, q, r.CategoryID, r.UserID, r.Kind); err != nil {
			return err
		}
		return q.CreateRecurring(ctx, r)
	})
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("create recurring transaction: %w", err)
	}

	slog.InfoContext(ctx, "Recurring transaction created",
		"id", r.ID,
		"frequency", r.Frequency,
		"next_run", r.NextRun)
	return r, nil
}

// Update edits a live rule. A new start date also resets the next run.
func (s *RecurringService) Update(ctx context.Context, actor core.Actor, id uuid.UUID, in UpdateRecurringInput) (core.RecurringTransaction, error) {
	if in.Amount != nil {
		if err := validateAmount("amount", *in.Amount); err != nil {
			return core.RecurringTransaction{}, err
		}
	}
	if in.Frequency != nil && !in.Frequency.Valid() {
		return core.RecurringTransaction{}, core.Invalid("frequency", "must be daily, weekly, monthly or yearly")
	}
	if in.Description != nil {
		if err := core.ValidateDescription(*in.Description); err != nil {
			return core.RecurringTransaction{}, err
		}
	}

	var r core.RecurringTransaction
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		var err error
		r, err = q.GetRecurring(ctx, id)
		if err != nil {
			return err
		}
		if err := writable(actor, "recurring transaction", id, r.UserID, r.IsDeleted); err != nil {
			return err
		}

		if in.WalletID != nil && *in.WalletID != r.WalletID {
			if _, err := liveWallet(ctx, q, *in.WalletID, r.UserID, "wallet_id"); err != nil {
				return err
			}
			r.WalletID = *in.WalletID
		}
		if in.CategoryID != nil && *in.CategoryID != r.CategoryID {
			if _, err := liveCategory(ctx, q, *in.CategoryID, r.UserID, r.Kind); err != nil {
				return err
			}
			r.CategoryID = *in.CategoryID
		}
		if in.Amount != nil {
			r.Amount = *in.Amount
		}
		if in.Frequency != nil {
			r.Frequency = *in.Frequency
		}
		if in.Description != nil {
			r.Description = *in.Description
		}
		startChanged := in.StartDate != nil && !in.StartDate.Equal(r.StartDate)
		if startChanged {
			r.StartDate = in.StartDate.UTC()
			r.NextRun = r.StartDate
		}
		if in.SetEndDate {
			if in.EndDate == nil {
				r.EndDate = nil
			} else {
				e := in.EndDate.UTC()
				r.EndDate = &e
			}
		}
		if err := s.validateDates(r.StartDate, r.EndDate, startChanged); err != nil {
			return err
		}
		if err := q.UpdateRecurring(ctx, r); err != nil {
			return err
		}
		r.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("update recurring transaction: %w", err)
	}
	return r, nil
}

func (s *RecurringService) SoftDelete(ctx context.Context, actor core.Actor, id uuid.UUID) error {
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		r, err := q.GetRecurring(ctx, id)
		if err != nil {
			return err
		}
		if err := writable(actor, "recurring transaction", id, r.UserID, r.IsDeleted); err != nil {
			return err
		}
		return q.SoftDeleteRecurring(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	return nil
}

func (s *RecurringService) Get(ctx context.Context, actor core.Actor, id uuid.UUID) (core.RecurringTransaction, error) {
	r, err := s.storage.Queries().GetRecurring(ctx, id)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	if err := readable(actor, "recurring transaction", id, r.UserID, r.IsDeleted); err != nil {
		return core.RecurringTransaction{}, err
	}
	return r, nil
}

func (s *RecurringService) List(ctx context.Context, actor core.Actor) ([]core.RecurringTransaction, error) {
	return s.storage.Queries().ListRecurring(ctx, actor.UserID)
}
