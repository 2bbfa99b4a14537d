package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const budgetColumns = `id, user_id, category_id, year, month, amount_cents, is_deleted, created_at, updated_at`

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b     core.Budget
		cents int64
	)
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Year, &b.Month, &cents, &b.IsDeleted,
		timeScanner{&b.CreatedAt}, timeScanner{&b.UpdatedAt})
	b.Amount = core.NewMoneyFromCents(cents)
	return b, err
}

const createBudget = `INSERT INTO budgets (` + budgetColumns + `) VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`

func (q *Queries) CreateBudget(ctx context.Context, b core.Budget) error {
	_, err := q.db.ExecContext(ctx, createBudget,
		b.ID, b.UserID, b.CategoryID, b.Year, b.Month, b.Amount.Cents(),
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt))
	if isUniqueViolation(err) {
		return core.Invalid("category", "a budget for this category and month already exists")
	}
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

const getBudget = `SELECT ` + budgetColumns + ` FROM budgets WHERE id = ?`

func (q *Queries) GetBudget(ctx context.Context, id uuid.UUID) (core.Budget, error) {
	b, err := scanBudget(q.db.QueryRowContext(ctx, getBudget, id))
	if err != nil {
		return core.Budget{}, notFound(err, "budget", id)
	}
	return b, nil
}

const findActiveBudget = `SELECT ` + budgetColumns + ` FROM budgets
WHERE user_id = ? AND category_id = ? AND year = ? AND month = ? AND is_deleted = 0`

// FindActiveBudget returns the live budget for a period or a NotFoundError.
func (q *Queries) FindActiveBudget(ctx context.Context, userID, categoryID uuid.UUID, year, month int) (core.Budget, error) {
	b, err := scanBudget(q.db.QueryRowContext(ctx, findActiveBudget, userID, categoryID, year, month))
	if err != nil {
		return core.Budget{}, notFound(err, "budget", uuid.Nil)
	}
	return b, nil
}

const updateBudgetAmount = `UPDATE budgets SET amount_cents = ?, updated_at = ? WHERE id = ? AND is_deleted = 0`

func (q *Queries) UpdateBudgetAmount(ctx context.Context, id uuid.UUID, amount core.Money) error {
	res, err := q.db.ExecContext(ctx, updateBudgetAmount, amount.Cents(), q.stamp(), id)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return expectOne(res, "budget", id)
}

const softDeleteBudget = `UPDATE budgets SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`

func (q *Queries) SoftDeleteBudget(ctx context.Context, id uuid.UUID) error {
	res, err := q.db.ExecContext(ctx, softDeleteBudget, q.stamp(), id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return expectOne(res, "budget", id)
}

const listBudgets = `SELECT ` + budgetColumns + ` FROM budgets
WHERE user_id = ? AND is_deleted = 0 ORDER BY year DESC, month DESC, id`

func (q *Queries) ListBudgets(ctx context.Context, userID uuid.UUID) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var items []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
