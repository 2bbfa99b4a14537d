package core

import (
	"testing"
	"time"
)

func TestClassifySpend(t *testing.T) {
	budget := MustMoney("1000")
	tests := []struct {
		spent string
		want  AlertLevel
	}{
		{"0", AlertNone},
		{"899.95", AlertNone},
		{"899.99", AlertNone},
		{"900", AlertWarning},
		{"900.01", AlertWarning},
		{"999.95", AlertWarning},
		{"999.99", AlertWarning},
		{"1000", AlertCritical},
		{"1500", AlertCritical},
	}
	for _, tt := range tests {
		t.Run(tt.spent, func(t *testing.T) {
			got := ClassifySpend(budget, MustMoney(tt.spent))
			if got.Level != tt.want {
				t.Errorf("ClassifySpend(1000, %s) = %s, want %s", tt.spent, got.Level, tt.want)
			}
		})
	}

	// 0.01 below a threshold on an odd budget still rounds to it for display
	odd := MustMoney("333.33")
	if got := ClassifySpend(odd, MustMoney("299.99")); got.Level != AlertNone {
		t.Errorf("ClassifySpend(333.33, 299.99) = %s (pct %s), want none", got.Level, got.Percentage)
	}
	if got := ClassifySpend(odd, MustMoney("333.32")); got.Level != AlertWarning || got.Percentage.String() != "100" {
		t.Errorf("ClassifySpend(333.33, 333.32) = %s (pct %s), want warning at displayed 100", got.Level, got.Percentage)
	}

	u := ClassifySpend(budget, MustMoney("925"))
	if u.Percentage.String() != "92.5" {
		t.Errorf("percentage = %s, want 92.5", u.Percentage)
	}
	if u.Remaining.String() != "75.00" {
		t.Errorf("remaining = %s, want 75.00", u.Remaining)
	}
}

func TestValidateBudgetPeriod(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		year, month int
		wantErr     bool
	}{
		{"current month", 2025, 6, false},
		{"future month", 2025, 7, false},
		{"next year", 2026, 1, false},
		{"past month", 2025, 5, true},
		{"past year", 2024, 12, true},
		{"month zero", 2025, 0, true},
		{"month thirteen", 2025, 13, true},
		{"year too large", 2101, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBudgetPeriod(tt.year, tt.month, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateBudgetPeriod(%d, %d) error = %v, wantErr %v", tt.year, tt.month, err, tt.wantErr)
			}
			if err != nil && !IsValidation(err) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
		})
	}
}
