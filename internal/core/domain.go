package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Credit Kind = "credit"
	Debit  Kind = "debit"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 255
)

type (
	Kind      string
	Frequency string

	User struct {
		ID        uuid.UUID `json:"id"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		IsActive  bool      `json:"is_active"`
		IsStaff   bool      `json:"is_staff"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Wallet struct {
		ID        uuid.UUID `json:"id"`
		UserID    uuid.UUID `json:"user_id"`
		Name      string    `json:"name"`
		Balance   Money     `json:"balance"`
		IsDeleted bool      `json:"is_deleted"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	// Category is either owned by a user or predefined and shared by everyone.
	Category struct {
		ID           uuid.UUID  `json:"id"`
		UserID       *uuid.UUID `json:"user_id,omitempty"`
		Name         string     `json:"name"`
		Kind         Kind       `json:"kind"`
		IsPredefined bool       `json:"is_predefined"`
		IsDeleted    bool       `json:"is_deleted"`
		CreatedAt    time.Time  `json:"created_at"`
		UpdatedAt    time.Time  `json:"updated_at"`
	}

	// Transaction is a single-wallet credit or debit. CategoryID is nil once
	// its category has been deleted.
	Transaction struct {
		ID          uuid.UUID  `json:"id"`
		UserID      uuid.UUID  `json:"user_id"`
		WalletID    uuid.UUID  `json:"wallet_id"`
		CategoryID  *uuid.UUID `json:"category_id"`
		RecurringID *uuid.UUID `json:"recurring_id,omitempty"`
		Kind        Kind       `json:"kind"`
		Amount      Money      `json:"amount"`
		OccurredAt  time.Time  `json:"occurred_at"`
		Description string     `json:"description"`
		IsDeleted   bool       `json:"is_deleted"`
		CreatedAt   time.Time  `json:"created_at"`
		UpdatedAt   time.Time  `json:"updated_at"`
	}

	Transfer struct {
		ID                  uuid.UUID `json:"id"`
		UserID              uuid.UUID `json:"user_id"`
		SourceWalletID      uuid.UUID `json:"source_wallet_id"`
		DestinationWalletID uuid.UUID `json:"destination_wallet_id"`
		Amount              Money     `json:"amount"`
		OccurredAt          time.Time `json:"occurred_at"`
		Description         string    `json:"description"`
		IsDeleted           bool      `json:"is_deleted"`
		CreatedAt           time.Time `json:"created_at"`
		UpdatedAt           time.Time `json:"updated_at"`
	}

	RecurringTransaction struct {
		ID          uuid.UUID  `json:"id"`
		UserID      uuid.UUID  `json:"user_id"`
		WalletID    uuid.UUID  `json:"wallet_id"`
		CategoryID  uuid.UUID  `json:"category_id"`
		Kind        Kind       `json:"kind"`
		Amount      Money      `json:"amount"`
		Frequency   Frequency  `json:"frequency"`
		StartDate   time.Time  `json:"start_date"`
		EndDate     *time.Time `json:"end_date,omitempty"`
		NextRun     time.Time  `json:"next_run"`
		Description string     `json:"description"`
		IsDeleted   bool       `json:"is_deleted"`
		CreatedAt   time.Time  `json:"created_at"`
		UpdatedAt   time.Time  `json:"updated_at"`
	}

	Budget struct {
		ID         uuid.UUID `json:"id"`
		UserID     uuid.UUID `json:"user_id"`
		CategoryID uuid.UUID `json:"category_id"`
		Year       int       `json:"year"`
		Month      int       `json:"month"`
		Amount     Money     `json:"amount"`
		IsDeleted  bool      `json:"is_deleted"`
		CreatedAt  time.Time `json:"created_at"`
		UpdatedAt  time.Time `json:"updated_at"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid kind")
	ErrInvalidFrequency = errors.New("invalid frequency")
)

func (k Kind) Valid() bool {
	return k == Credit || k == Debit
}

// ParseKind defaults to Debit when s is empty.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return Debit, nil
	case Credit:
		return Credit, nil
	case Debit:
		return Debit, nil
	}
	return "", ErrInvalidKind
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", ErrInvalidFrequency
	}
	return f, nil
}

// NormalizeName trims surrounding whitespace and collapses inner runs of spaces.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NameKey is the case-insensitive uniqueness key for wallet and category names.
func NameKey(s string) string {
	return strings.ToLower(NormalizeName(s))
}

func ValidateName(field, name string) error {
	if name == "" {
		return &ValidationError{Field: field, Message: "must not be empty"}
	}
	if len([]rune(name)) > MaxNameLength {
		return &ValidationError{Field: field, Message: "must be at most 100 characters"}
	}
	return nil
}

func ValidateDescription(desc string) error {
	if len([]rune(desc)) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Message: "must be at most 255 characters"}
	}
	return nil
}

// Effect returns the signed change a transaction of this kind applies to its wallet.
func (t Transaction) Effect() Money {
	if t.Kind == Credit {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Due reports whether the rule should fire at now.
func (r RecurringTransaction) Due(now time.Time) bool {
	return !r.IsDeleted && !r.NextRun.After(now)
}

// Expired reports whether the end date lies before the day of the next run.
func (r RecurringTransaction) Expired() bool {
	if r.EndDate == nil {
		return false
	}
	return DayOf(*r.EndDate).Before(DayOf(r.NextRun))
}

// DayOf truncates t to midnight UTC of its calendar day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns [first day of month, first day of next month) in UTC.
func MonthRange(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// UsableBy reports whether a user may attach the category to a record.
func (c Category) UsableBy(userID uuid.UUID) bool {
	if c.IsPredefined {
		return true
	}
	return c.UserID != nil && *c.UserID == userID
}
