package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const userColumns = `id, name, email, is_active, is_staff, created_at, updated_at`

func scanUser(row rowScanner) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.IsActive, &u.IsStaff,
		timeScanner{&u.CreatedAt}, timeScanner{&u.UpdatedAt})
	return u, err
}

const createUser = `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateUser(ctx context.Context, u core.User) error {
	_, err := q.db.ExecContext(ctx, createUser,
		u.ID, u.Name, strings.ToLower(u.Email), boolInt(u.IsActive), boolInt(u.IsStaff),
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt))
	if isUniqueViolation(err) {
		return core.Invalid("email", "a user with this email already exists")
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const getUser = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (core.User, error) {
	u, err := scanUser(q.db.QueryRowContext(ctx, getUser, id))
	if err != nil {
		return core.User{}, notFound(err, "user", id)
	}
	return u, nil
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
	if err != nil {
		return core.User{}, notFound(err, "user", uuid.Nil)
	}
	return u, nil
}

const setUserActive = `UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`

func (q *Queries) SetUserActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := q.db.ExecContext(ctx, setUserActive, boolInt(active), q.stamp(), id)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectOne(res, "user", id)
}
