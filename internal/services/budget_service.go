package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type BudgetService struct {
	storage *storage.SQLiteRepository
	monitor *BudgetMonitor
	now     Clock
}

func NewBudgetService(storage *storage.SQLiteRepository, monitor *BudgetMonitor) *BudgetService {
	return &BudgetService{
		storage: storage,
		monitor: monitor,
		now:     systemClock,
	}
}

type CreateBudgetInput struct {
	CategoryID uuid.UUID
	Year       int
	Month      int
	Amount     core.Money
}

// BudgetView is a budget together with the spend of its period.
type BudgetView struct {
	core.Budget
	Usage core.BudgetUsage `json:"usage"`
}

func (s *BudgetService) Create(ctx context.Context, actor core.Actor, in CreateBudgetInput) (core.Budget, error) {
	if err := validateAmount("amount", in.Amount); err != nil {
		return core.Budget{}, err
	}
	if err := core.ValidateBudgetPeriod(in.Year, in.Month, s.now()); err != nil {
		return core.Budget{}, err
	}

	now := s.now()
	b := core.Budget{
		ID:         uuid.New(),
		UserID:     actor.UserID,
		CategoryID: in.CategoryID,
		Year:       in.Year,
		Month:      in.Month,
		Amount:     in.Amount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		// budgets only track spending
		if _, err := liveCategory(ctx, q, in.CategoryID, actor.UserID, core.Debit); err != nil {
			if core.IsValidation(err) {
				return core.Invalid("category_id", "budgets require a debit category owned by the user or predefined")
			}
			return err
		}
		return q.CreateBudget(ctx, b)
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"id", b.ID,
		"category_id", b.CategoryID,
		"year", b.Year,
		"month", b.Month,
		"amount", b.Amount.String())
	return b, nil
}

func (s *BudgetService) UpdateAmount(ctx context.Context, actor core.Actor, id uuid.UUID, amount core.Money) (core.Budget, error) {
	if err := validateAmount("amount", amount); err != nil {
		return core.Budget{}, err
	}
	var b core.Budget
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		var err error
		b, err = q.GetBudget(ctx, id)
		if err != nil {
			return err
		}
		if err := writable(actor, "budget", id, b.UserID, b.IsDeleted); err != nil {
			return err
		}
		if err := q.UpdateBudgetAmount(ctx, id, amount); err != nil {
			return err
		}
		b.Amount = amount
		b.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	return b, nil
}

func (s *BudgetService) SoftDelete(ctx context.Context, actor core.Actor, id uuid.UUID) error {
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		b, err := q.GetBudget(ctx, id)
		if err != nil {
			return err
		}
		if err := writable(actor, "budget", id, b.UserID, b.IsDeleted); err != nil {
			return err
		}
		return q.SoftDeleteBudget(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

func (s *BudgetService) Get(ctx context.Context, actor core.Actor, id uuid.UUID) (BudgetView, error) {
	q := s.storage.Queries()
	b, err := q.GetBudget(ctx, id)
	if err != nil {
		return BudgetView{}, err
	}
	if err := readable(actor, "budget", id, b.UserID, b.IsDeleted); err != nil {
		return BudgetView{}, err
	}
	usage, err := s.monitor.usage(ctx, q, b)
	if err != nil {
		return BudgetView{}, err
	}
	return BudgetView{Budget: b, Usage: usage}, nil
}

func (s *BudgetService) List(ctx context.Context, actor core.Actor) ([]BudgetView, error) {
	q := s.storage.Queries()
	budgets, err := q.ListBudgets(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	views := make([]BudgetView, 0, len(budgets))
	for _, b := range budgets {
		usage, err := s.monitor.usage(ctx, q, b)
		if err != nil {
			return nil, err
		}
		views = append(views, BudgetView{Budget: b, Usage: usage})
	}
	return views, nil
}
