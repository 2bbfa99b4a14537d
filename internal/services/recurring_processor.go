package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/notify"
	"fintrack/internal/storage"
)

// RecurringProcessor materializes due recurring rules into transactions.
type RecurringProcessor struct {
	storage      *storage.SQLiteRepository
	transactions *TransactionService
	dispatcher   *notify.Dispatcher
}

func NewRecurringProcessor(storage *storage.SQLiteRepository, transactions *TransactionService, dispatcher *notify.Dispatcher) *RecurringProcessor {
	return &RecurringProcessor{
		storage:      storage,
		transactions: transactions,
		dispatcher:   dispatcher,
	}
}

type ProcessResult struct {
	Due     int
	Created int
	Retired int
	Failed  int
}

type ruleOutcome int

const (
	outcomeSkipped ruleOutcome = iota
	outcomeCreated
	outcomeRetired
)

// ProcessDue handles every live rule whose next run is at or before now.
// Each rule runs in its own database transaction; a failing rule is logged
// and does not stop the others.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (ProcessResult, error) {
	if p.storage == nil || p.transactions == nil {
		return ProcessResult{}, fmt.Errorf("processor not properly initialized")
	}

	ids, err := p.storage.Queries().ListDueRecurringIDs(ctx, now)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("failed to get due recurring transactions: %w", err)
	}

	res := ProcessResult{Due: len(ids)}
	slog.InfoContext(ctx, "Processing recurring transactions",
		"due", len(ids),
		"processing_time", now.Format(time.RFC3339))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		outcome, err := p.processOne(ctx, id, now)
		if err != nil {
			res.Failed++
			slog.ErrorContext(ctx, "Failed to process recurring transaction",
				"recurring_id", id,
				"error", err)
			continue
		}
		switch outcome {
		case outcomeCreated:
			res.Created++
		case outcomeRetired:
			res.Retired++
		}
	}

	slog.InfoContext(ctx, "Recurring transaction processing complete",
		"created", res.Created,
		"retired", res.Retired,
		"failed", res.Failed)
	return res, nil
}

func (p *RecurringProcessor) processOne(ctx context.Context, id uuid.UUID, now time.Time) (ruleOutcome, error) {
	var (
		outcome  ruleOutcome
		tx       core.Transaction
		user     core.User
		wallet   core.Wallet
		category core.Category
		nextRun  time.Time
	)
	err := p.storage.InTx(ctx, func(q *storage.Queries) error {
		r, err := q.GetRecurring(ctx, id)
		if err != nil {
			return err
		}
		// handled by a concurrent run since the due list was read
		if !r.Due(now) {
			outcome = outcomeSkipped
			return nil
		}

		if user, err = q.GetUser(ctx, r.UserID); err != nil {
			return err
		}
		if wallet, err = q.GetWallet(ctx, r.WalletID); err != nil {
			return err
		}
		if category, err = q.GetCategory(ctx, r.CategoryID); err != nil {
			return err
		}

		if reason := retireReason(user, wallet, category, r); reason != "" {
			slog.InfoContext(ctx, "Retiring recurring transaction",
				"recurring_id", r.ID,
				"reason", reason)
			outcome = outcomeRetired
			return q.SoftDeleteRecurring(ctx, r.ID)
		}

		in := CreateTransactionInput{
			WalletID:    r.WalletID,
			CategoryID:  r.CategoryID,
			Kind:        r.Kind,
			Amount:      r.Amount,
			OccurredAt:  r.NextRun,
			Description: r.Description,
		}
		if tx, err = p.transactions.createInTx(ctx, q, r.UserID, in, &r.ID); err != nil {
			return err
		}

		if nextRun, err = r.FollowingRun(); err != nil {
			return err
		}
		outcome = outcomeCreated
		return q.SetRecurringNextRun(ctx, r.ID, nextRun)
	})
	if err != nil {
		return outcomeSkipped, err
	}

	if outcome == outcomeCreated {
		slog.InfoContext(ctx, "Created transaction from recurring rule",
			"recurring_id", id,
			"transaction_id", tx.ID,
			"amount", tx.Amount.String(),
			"next_run", nextRun)
		p.transactions.budgets.Trigger(ctx, tx.ID)
		p.dispatcher.Dispatch(ctx, notify.RecurringProcessed(user, tx, category.Name, wallet.Name, nextRun))
	}
	return outcome, nil
}

func retireReason(user core.User, wallet core.Wallet, category core.Category, r core.RecurringTransaction) string {
	switch {
	case !user.IsActive:
		return "user inactive"
	case wallet.IsDeleted:
		return "wallet deleted"
	case category.IsDeleted:
		return "category deleted"
	case r.Expired():
		return "end date passed"
	}
	return ""
}
