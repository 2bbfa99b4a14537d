package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// CategoryService manages user categories and, for staff, the predefined
// ones shared by every user.
type CategoryService struct {
	storage *storage.SQLiteRepository
	now     Clock
}

func NewCategoryService(storage *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{
		storage: storage,
		now:     systemClock,
	}
}

type CreateCategoryInput struct {
	Name       string
	Kind       core.Kind
	Predefined bool
}

func (s *CategoryService) Create(ctx context.Context, actor core.Actor, in CreateCategoryInput) (core.Category, error) {
	name := core.NormalizeName(in.Name)
	if err := core.ValidateName("name", name); err != nil {
		return core.Category{}, err
	}
	if in.Kind == "" {
		in.Kind = core.Debit
	}
	if !in.Kind.Valid() {
		return core.Category{}, core.Invalid("kind", "must be credit or debit")
	}
	if in.Predefined && !actor.IsStaff {
		return core.Category{}, &core.PermissionError{Action: "create predefined category"}
	}

	now := s.now()
	c := core.Category{
		ID:           uuid.New(),
		Name:         name,
		Kind:         in.Kind,
		IsPredefined: in.Predefined,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if !in.Predefined {
		owner := actor.UserID
		c.UserID = &owner
	}
	if err := s.storage.Queries().CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		"id", c.ID,
		"kind", c.Kind,
		"predefined", c.IsPredefined)
	return c, nil
}

// authorize checks write access. Predefined categories are staff-only.
func (s *CategoryService) authorize(actor core.Actor, c core.Category) error {
	if c.IsDeleted {
		return core.NotFound("category", c.ID)
	}
	if c.IsPredefined {
		if !actor.IsStaff {
			return &core.PermissionError{Action: "modify predefined category"}
		}
		return nil
	}
	var owner uuid.UUID
	if c.UserID != nil {
		owner = *c.UserID
	}
	return actor.CanWrite(owner, false)
}

func (s *CategoryService) Rename(ctx context.Context, actor core.Actor, id uuid.UUID, name string) (core.Category, error) {
	name = core.NormalizeName(name)
	if err := core.ValidateName("name", name); err != nil {
		return core.Category{}, err
	}

	var c core.Category
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if c, err = q.GetCategory(ctx, id); err != nil {
			return err
		}
		if err := s.authorize(actor, c); err != nil {
			return err
		}
		if err := q.RenameCategory(ctx, id, name); err != nil {
			return err
		}
		c.Name = name
		c.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("rename category: %w", err)
	}
	return c, nil
}

// SoftDelete removes the category, detaches it from every transaction and
// soft-deletes its budgets. Recurring rules using it retire on their next run.
func (s *CategoryService) SoftDelete(ctx context.Context, actor core.Actor, id uuid.UUID) error {
	var detached, budgets int64
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		c, err := q.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(actor, c); err != nil {
			return err
		}
		if err := q.SoftDeleteCategory(ctx, id); err != nil {
			return err
		}
		if detached, err = q.DetachCategory(ctx, id); err != nil {
			return err
		}
		budgets, err = q.SoftDeleteCategoryBudgets(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	slog.InfoContext(ctx, "Category deleted",
		"id", id,
		"detached_transactions", detached,
		"deleted_budgets", budgets)
	return nil
}

func (s *CategoryService) Get(ctx context.Context, actor core.Actor, id uuid.UUID) (core.Category, error) {
	c, err := s.storage.Queries().GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if c.IsDeleted && !actor.IsStaff {
		return core.Category{}, core.NotFound("category", id)
	}
	if !actor.IsStaff && !c.UsableBy(actor.UserID) {
		return core.Category{}, &core.PermissionError{Action: "read"}
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, actor core.Actor) ([]core.Category, error) {
	return s.storage.Queries().ListCategories(ctx, actor.UserID)
}
