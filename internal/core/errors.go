package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError is returned when a referenced row is missing or soft-deleted.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	if e.Action == "" {
		return "permission denied"
	}
	return fmt.Sprintf("permission denied: %s", e.Action)
}

func NotFound(resource string, id uuid.UUID) error {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsPermission(err error) bool {
	var e *PermissionError
	return errors.As(err, &e)
}

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	UserID  uuid.UUID
	IsStaff bool
}

// CanRead: staff see everything, owners see their own live rows.
func (a Actor) CanRead(ownerID uuid.UUID, deleted bool) error {
	if a.IsStaff {
		return nil
	}
	if !deleted && ownerID == a.UserID {
		return nil
	}
	return &PermissionError{Action: "read"}
}

// CanWrite requires a live row and either staff or ownership.
func (a Actor) CanWrite(ownerID uuid.UUID, deleted bool) error {
	if !deleted && (a.IsStaff || ownerID == a.UserID) {
		return nil
	}
	return &PermissionError{Action: "write"}
}
