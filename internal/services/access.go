package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// readable hides soft-deleted rows from non-staff actors as if they did not exist.
func readable(actor core.Actor, resource string, id, owner uuid.UUID, deleted bool) error {
	if deleted && !actor.IsStaff {
		return core.NotFound(resource, id)
	}
	return actor.CanRead(owner, deleted)
}

// writable treats a soft-deleted row as missing.
func writable(actor core.Actor, resource string, id, owner uuid.UUID, deleted bool) error {
	if deleted {
		return core.NotFound(resource, id)
	}
	return actor.CanWrite(owner, deleted)
}

// liveWallet loads a wallet that userID may book against.
func liveWallet(ctx context.Context, q *storage.Queries, id, userID uuid.UUID, field string) (core.Wallet, error) {
	w, err := q.GetWallet(ctx, id)
	if err != nil {
		return core.Wallet{}, err
	}
	if w.IsDeleted {
		return core.Wallet{}, core.NotFound("wallet", id)
	}
	if w.UserID != userID {
		return core.Wallet{}, core.Invalid(field, "wallet does not belong to the user")
	}
	return w, nil
}

// liveCategory loads a category that userID may use for records of kind.
func liveCategory(ctx context.Context, q *storage.Queries, id, userID uuid.UUID, kind core.Kind) (core.Category, error) {
	c, err := q.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if c.IsDeleted {
		return core.Category{}, core.NotFound("category", id)
	}
	if !c.UsableBy(userID) {
		return core.Category{}, core.Invalid("category_id", "category does not belong to the user")
	}
	if c.Kind != kind {
		return core.Category{}, core.Invalid("category_id", "category kind must match the transaction kind")
	}
	return c, nil
}

func validateAmount(field string, m core.Money) error {
	if !m.IsPositive() {
		return core.Invalid(field, "must be greater than zero")
	}
	if !m.InRange() {
		return core.Invalid(field, "exceeds the maximum supported amount")
	}
	return nil
}
