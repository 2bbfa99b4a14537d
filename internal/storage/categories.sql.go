package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const categoryColumns = `id, user_id, name, kind, is_predefined, is_deleted, created_at, updated_at`

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c     core.Category
		owner uuid.NullUUID
	)
	err := row.Scan(&c.ID, &owner, &c.Name, &c.Kind, &c.IsPredefined, &c.IsDeleted,
		timeScanner{&c.CreatedAt}, timeScanner{&c.UpdatedAt})
	if owner.Valid {
		c.UserID = &owner.UUID
	}
	return c, err
}

var errDuplicateCategory = core.Invalid("name", "a category with this name already exists")

const createCategory = `INSERT INTO categories (id, user_id, name, name_key, kind, is_predefined, is_deleted, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`

func (q *Queries) CreateCategory(ctx context.Context, c core.Category) error {
	var owner uuid.NullUUID
	if c.UserID != nil {
		owner = uuid.NullUUID{UUID: *c.UserID, Valid: true}
	}
	_, err := q.db.ExecContext(ctx, createCategory,
		c.ID, owner, c.Name, core.NameKey(c.Name), c.Kind, boolInt(c.IsPredefined),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if isUniqueViolation(err) {
		return errDuplicateCategory
	}
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

const getCategory = `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id uuid.UUID) (core.Category, error) {
	c, err := scanCategory(q.db.QueryRowContext(ctx, getCategory, id))
	if err != nil {
		return core.Category{}, notFound(err, "category", id)
	}
	return c, nil
}

const listCategories = `SELECT ` + categoryColumns + ` FROM categories
WHERE is_deleted = 0 AND (user_id = ? OR is_predefined = 1)
ORDER BY kind, name_key`

// ListCategories returns the user's live categories together with the predefined ones.
func (q *Queries) ListCategories(ctx context.Context, userID uuid.UUID) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const renameCategory = `UPDATE categories SET name = ?, name_key = ?, updated_at = ?
WHERE id = ? AND is_deleted = 0`

func (q *Queries) RenameCategory(ctx context.Context, id uuid.UUID, name string) error {
	res, err := q.db.ExecContext(ctx, renameCategory, name, core.NameKey(name), q.stamp(), id)
	if isUniqueViolation(err) {
		return errDuplicateCategory
	}
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	return expectOne(res, "category", id)
}

const softDeleteCategory = `UPDATE categories SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`

func (q *Queries) SoftDeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := q.db.ExecContext(ctx, softDeleteCategory, q.stamp(), id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return expectOne(res, "category", id)
}

const detachCategory = `UPDATE transactions SET category_id = NULL, updated_at = ? WHERE category_id = ?`

// DetachCategory clears the category of every transaction that references it,
// deleted ones included. It returns the number of rows touched.
func (q *Queries) DetachCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	res, err := q.db.ExecContext(ctx, detachCategory, q.stamp(), categoryID)
	if err != nil {
		return 0, fmt.Errorf("detach category: %w", err)
	}
	return res.RowsAffected()
}

const softDeleteCategoryBudgets = `UPDATE budgets SET is_deleted = 1, updated_at = ? WHERE category_id = ? AND is_deleted = 0`

func (q *Queries) SoftDeleteCategoryBudgets(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	res, err := q.db.ExecContext(ctx, softDeleteCategoryBudgets, q.stamp(), categoryID)
	if err != nil {
		return 0, fmt.Errorf("delete category budgets: %w", err)
	}
	return res.RowsAffected()
}
