package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/notify"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

// BudgetMonitor recomputes monthly spend after a debit transaction is
// recorded and sends an alert once the warning or critical level is reached.
// Alerts are not deduplicated: every qualifying transaction sends one.
type BudgetMonitor struct {
	storage    *storage.SQLiteRepository
	dispatcher *notify.Dispatcher
	jobs       worker.Submitter
}

func NewBudgetMonitor(storage *storage.SQLiteRepository, dispatcher *notify.Dispatcher, jobs worker.Submitter) *BudgetMonitor {
	return &BudgetMonitor{
		storage:    storage,
		dispatcher: dispatcher,
		jobs:       jobs,
	}
}

// Trigger schedules Evaluate for the transaction without blocking the caller.
func (m *BudgetMonitor) Trigger(ctx context.Context, transactionID uuid.UUID) {
	if m == nil {
		return
	}
	job := worker.Job{
		Name: "budget-check",
		Run: func(ctx context.Context) error {
			_, _, err := m.Evaluate(ctx, transactionID)
			return err
		},
	}
	if m.jobs == nil {
		if _, _, err := m.Evaluate(ctx, transactionID); err != nil {
			slog.ErrorContext(ctx, "Budget check failed", "transaction_id", transactionID, "error", err)
		}
		return
	}
	if err := m.jobs.Submit(job); err != nil {
		slog.ErrorContext(ctx, "Failed to queue budget check",
			"transaction_id", transactionID,
			"error", err)
	}
}

// Evaluate classifies the spend of the budget period the transaction falls
// in. found is false when no active budget covers it.
func (m *BudgetMonitor) Evaluate(ctx context.Context, transactionID uuid.UUID) (usage core.BudgetUsage, found bool, err error) {
	q := m.storage.Queries()

	tx, err := q.GetTransaction(ctx, transactionID)
	if err != nil {
		if core.IsNotFound(err) {
			return core.BudgetUsage{}, false, nil
		}
		return core.BudgetUsage{}, false, fmt.Errorf("load transaction: %w", err)
	}
	if tx.IsDeleted || tx.CategoryID == nil || tx.Kind != core.Debit {
		return core.BudgetUsage{}, false, nil
	}

	category, err := q.GetCategory(ctx, *tx.CategoryID)
	if err != nil {
		return core.BudgetUsage{}, false, fmt.Errorf("load category: %w", err)
	}
	if category.Kind != core.Debit {
		return core.BudgetUsage{}, false, nil
	}

	at := tx.OccurredAt.UTC()
	budget, err := q.FindActiveBudget(ctx, tx.UserID, category.ID, at.Year(), int(at.Month()))
	if err != nil {
		if core.IsNotFound(err) {
			return core.BudgetUsage{}, false, nil
		}
		return core.BudgetUsage{}, false, fmt.Errorf("find budget: %w", err)
	}

	usage, err = m.usage(ctx, q, budget)
	if err != nil {
		return core.BudgetUsage{}, false, err
	}

	slog.DebugContext(ctx, "Budget evaluated",
		"budget_id", budget.ID,
		"spent", usage.Spent.String(),
		"percentage", usage.Percentage.String(),
		"level", usage.Level)

	if usage.Level == core.AlertNone {
		return usage, true, nil
	}

	user, err := q.GetUser(ctx, tx.UserID)
	if err != nil {
		return usage, true, fmt.Errorf("load user: %w", err)
	}
	if n, ok := notify.BudgetAlert(user, category.Name, budget, usage); ok {
		slog.InfoContext(ctx, "Budget threshold reached",
			"budget_id", budget.ID,
			"category", category.Name,
			"level", usage.Level)
		m.dispatcher.Dispatch(ctx, n)
	}
	return usage, true, nil
}

func (m *BudgetMonitor) usage(ctx context.Context, q *storage.Queries, b core.Budget) (core.BudgetUsage, error) {
	from, to := core.MonthRange(b.Year, b.Month)
	spent, err := q.SumDebits(ctx, b.UserID, b.CategoryID, from, to)
	if err != nil {
		return core.BudgetUsage{}, err
	}
	return core.ClassifySpend(b.Amount, spent), nil
}
