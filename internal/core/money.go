// Package core provides money parsing and handling utilities.
//
// Money is a fixed-point amount with two decimal places backed by
// shopspring/decimal. It is persisted as integer cents.
package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	amount decimal.Decimal
}

// MaxCents bounds every stored amount and balance, in either direction.
const MaxCents int64 = 1_000_000_000_000_000

var (
	maxAmount = decimal.New(MaxCents, -2)
	hundred   = decimal.NewFromInt(100)
)

// Zero is the zero amount.
var Zero = Money{amount: decimal.Zero}

// ParseMoney converts a decimal string to Money with half-up rounding to cents.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Only
// strictly positive amounts are valid.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34
//	ParseMoney("12,34")  -> 12.34
//	ParseMoney("12.345") -> 12.35
//	ParseMoney("0")      -> ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	m, err := parseAmount(s)
	if err != nil {
		return Money{}, err
	}
	if !m.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// ParseBalance is like ParseMoney but also accepts zero.
func ParseBalance(s string) (Money, error) {
	if strings.TrimSpace(s) == "" {
		return Zero, nil
	}
	m, err := parseAmount(s)
	if err != nil {
		return Money{}, err
	}
	if m.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

func parseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// reject exponent forms such as "1e3"
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	m := Money{amount: d.Round(2)}
	if !m.InRange() {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

func NewMoneyFromCents(cents int64) Money {
	return Money{amount: decimal.New(cents, -2)}
}

// MustMoney panics on invalid input. Intended for constants and tests.
func MustMoney(s string) Money {
	m, err := parseAmount(s)
	if err != nil {
		panic(fmt.Sprintf("core: invalid money literal %q", s))
	}
	return m
}

func (m Money) Cents() int64 {
	return m.amount.Shift(2).Round(0).IntPart()
}

func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) Add(o Money) Money { return Money{amount: m.amount.Add(o.amount)} }
func (m Money) Sub(o Money) Money { return Money{amount: m.amount.Sub(o.amount)} }
func (m Money) Neg() Money        { return Money{amount: m.amount.Neg()} }

func (m Money) Cmp(o Money) int    { return m.amount.Cmp(o.amount) }
func (m Money) Equal(o Money) bool { return m.amount.Equal(o.amount) }
func (m Money) IsZero() bool       { return m.amount.IsZero() }
func (m Money) IsPositive() bool   { return m.amount.IsPositive() }
func (m Money) IsNegative() bool   { return m.amount.IsNegative() }

// InRange reports whether |m| fits the storable range of MaxCents.
func (m Money) InRange() bool {
	return m.amount.Abs().LessThanOrEqual(maxAmount)
}

// Percent returns m / of * 100 rounded to two places, for display. Use
// ReachesPercent for threshold checks.
func (m Money) Percent(of Money) decimal.Decimal {
	return m.amount.Mul(hundred).DivRound(of.amount, 2)
}

// ReachesPercent reports m*100 >= of*pct exactly, without rounding.
func (m Money) ReachesPercent(of Money, pct decimal.Decimal) bool {
	return m.amount.Mul(hundred).GreaterThanOrEqual(of.amount.Mul(pct))
}

func (m Money) String() string {
	return m.amount.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both "12.34" and 12.34.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := parseAmount(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
