package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type UserService struct {
	storage *storage.SQLiteRepository
	now     Clock
}

func NewUserService(storage *storage.SQLiteRepository) *UserService {
	return &UserService{
		storage: storage,
		now:     systemClock,
	}
}

func (s *UserService) Create(ctx context.Context, name, email string, staff bool) (core.User, error) {
	name = core.NormalizeName(name)
	if err := core.ValidateName("name", name); err != nil {
		return core.User{}, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return core.User{}, core.Invalid("email", "must be a valid email address")
	}

	now := s.now()
	u := core.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		IsActive:  true,
		IsStaff:   staff,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.Queries().CreateUser(ctx, u); err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", u.ID, "staff", u.IsStaff)
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (core.User, error) {
	return s.storage.Queries().GetUser(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (core.User, error) {
	return s.storage.Queries().GetUserByEmail(ctx, email)
}

// Deactivate disables a user. Their recurring rules retire on the next run.
func (s *UserService) Deactivate(ctx context.Context, actor core.Actor, id uuid.UUID) error {
	if !actor.IsStaff && actor.UserID != id {
		return &core.PermissionError{Action: "deactivate user"}
	}
	if err := s.storage.Queries().SetUserActive(ctx, id, false); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	slog.InfoContext(ctx, "User deactivated", "id", id)
	return nil
}
