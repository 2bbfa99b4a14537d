package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/notify"
)

func TestBudgetAlertLevels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.wallet(t, "Cash", "5000")

	b, err := f.svc.Budgets.Create(ctx, f.actor, CreateBudgetInput{
		CategoryID: foodCategory, Year: 2030, Month: 1, Amount: core.MustMoney("1000"),
	})
	require.NoError(t, err)

	spend := func(amount string) core.Transaction {
		t.Helper()
		tx, err := f.svc.Transactions.Create(ctx, f.actor, CreateTransactionInput{
			WalletID: w.ID, CategoryID: foodCategory, Amount: core.MustMoney(amount),
		})
		require.NoError(t, err)
		return tx
	}

	first := spend("100")
	usage, found, err := f.svc.Monitor.Evaluate(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, core.AlertNone, usage.Level)
	assert.Empty(t, f.sender.Sent())

	spend("800")
	sent := f.sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notify.KindBudgetWarning, sent[0].Kind)
	assert.Equal(t, "Budget Alert: Food", sent[0].Subject)
	assert.Equal(t, "ada@example.com", sent[0].Recipient)

	spend("100")
	sent = f.sender.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, notify.KindBudgetExceeded, sent[1].Kind)

	view, err := f.svc.Budgets.Get(ctx, f.actor, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", view.Usage.Spent.String())
	assert.Equal(t, "0.00", view.Usage.Remaining.String())
	assert.Equal(t, core.AlertCritical, view.Usage.Level)
}

func TestBudgetAlertThresholdsAreExact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.wallet(t, "Cash", "5000")

	_, err := f.svc.Budgets.Create(ctx, f.actor, CreateBudgetInput{
		CategoryID: foodCategory, Year: 2030, Month: 1, Amount: core.MustMoney("1000"),
	})
	require.NoError(t, err)

	spend := func(amount string) {
		t.Helper()
		_, err := f.svc.Transactions.Create(ctx, f.actor, CreateTransactionInput{
			WalletID: w.ID, CategoryID: foodCategory, Amount: core.MustMoney(amount),
		})
		require.NoError(t, err)
	}

	spend("899.99")
	assert.Empty(t, f.sender.Sent(), "899.99 of 1000 is below the warning threshold")

	spend("0.01")
	sent := f.sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notify.KindBudgetWarning, sent[0].Kind)

	spend("99.99")
	sent = f.sender.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, notify.KindBudgetWarning, sent[1].Kind, "999.99 of 1000 is not exceeded")
}

func TestBudgetIgnoresOtherMonthsAndCredits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.wallet(t, "Cash", "5000")

	_, err := f.svc.Budgets.Create(ctx, f.actor, CreateBudgetInput{
		CategoryID: foodCategory, Year: 2030, Month: 1, Amount: core.MustMoney("100"),
	})
	require.NoError(t, err)

	tx, err := f.svc.Transactions.Create(ctx, f.actor, CreateTransactionInput{
		WalletID:   w.ID,
		CategoryID: foodCategory,
		Amount:     core.MustMoney("500"),
		OccurredAt: time.Date(2030, time.February, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, found, err := f.svc.Monitor.Evaluate(ctx, tx.ID)
	require.NoError(t, err)
	assert.False(t, found)

	credit, err := f.svc.Transactions.Create(ctx, f.actor, CreateTransactionInput{
		WalletID: w.ID, CategoryID: salaryCategory, Kind: core.Credit, Amount: core.MustMoney("500"),
	})
	require.NoError(t, err)
	_, found, err = f.svc.Monitor.Evaluate(ctx, credit.ID)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, f.sender.Sent())
}

func TestBudgetCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateBudgetInput
	}{
		{"credit category", CreateBudgetInput{CategoryID: salaryCategory, Year: 2030, Month: 1, Amount: core.MustMoney("10")}},
		{"past month", CreateBudgetInput{CategoryID: foodCategory, Year: 2029, Month: 12, Amount: core.MustMoney("10")}},
		{"bad month", CreateBudgetInput{CategoryID: foodCategory, Year: 2030, Month: 13, Amount: core.MustMoney("10")}},
		{"zero amount", CreateBudgetInput{CategoryID: foodCategory, Year: 2030, Month: 2, Amount: core.Zero}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Budgets.Create(ctx, f.actor, tt.in)
			assert.True(t, core.IsValidation(err), "unexpected error %v", err)
		})
	}

	_, err := f.svc.Budgets.Create(ctx, f.actor, CreateBudgetInput{CategoryID: rentCategory, Year: 2030, Month: 2, Amount: core.MustMoney("10")})
	require.NoError(t, err)
	_, err = f.svc.Budgets.Create(ctx, f.actor, CreateBudgetInput{CategoryID: rentCategory, Year: 2030, Month: 2, Amount: core.MustMoney("20")})
	assert.True(t, core.IsValidation(err), "duplicate budget should be rejected")
}

func TestBudgetUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Budgets.Create(ctx, f.actor, CreateBudgetInput{CategoryID: rentCategory, Year: 2030, Month: 3, Amount: core.MustMoney("10")})
	require.NoError(t, err)

	updated, err := f.svc.Budgets.UpdateAmount(ctx, f.actor, b.ID, core.MustMoney("15"))
	require.NoError(t, err)
	assert.Equal(t, "15.00", updated.Amount.String())

	require.NoError(t, f.svc.Budgets.SoftDelete(ctx, f.actor, b.ID))
	assert.True(t, core.IsNotFound(f.svc.Budgets.SoftDelete(ctx, f.actor, b.ID)))

	list, err := f.svc.Budgets.List(ctx, f.actor)
	require.NoError(t, err)
	assert.Empty(t, list)
}
