package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func TestTransactionLifecycleKeepsBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.wallet(t, "Checking", "500")
	assert.Equal(t, "500.00", f.balance(t, w.ID))

	tx, err := f.svc.Transactions.Create(ctx, f.actor, CreateTransactionInput{
		WalletID:   w.ID,
		CategoryID: foodCategory,
		Amount:     core.MustMoney("200"),
	})
	require.NoError(t, err)
	assert.Equal(t, core.Debit, tx.Kind)
	assert.Equal(t, testNow, tx.OccurredAt)
	assert.Equal(t, "300.00", f.balance(t, w.ID))

	_, err = f.svc.Transactions.Update(ctx, f.actor, tx.ID, UpdateTransactionInput{Amount: ptr(core.MustMoney("50"))})
	require.NoError(t, err)
	assert.Equal(t, "450.00", f.balance(t, w.ID))

	require.NoError(t, f.svc.Transactions.SoftDelete(ctx, f.actor, tx.ID))
	assert.Equal(t, "500.00", f.balance(t, w.ID))

	err = f.svc.Transactions.SoftDelete(ctx, f.actor, tx.ID)
	assert.True(t, core.IsNotFound(err), "second delete should report not found, got %v", err)
	assert.Equal(t, "500.00", f.balance(t, w.ID))

	_, err = f.svc.Transactions.Get(ctx, f.actor, tx.ID)
	assert.True(t, core.IsNotFound(err))
	_, err = f.svc.Transactions.Get(ctx, core.Actor{UserID: f.user.ID, IsStaff: true}, tx.ID)
	assert.NoError(t, err)
}

func TestTransactionMovesBetweenWallets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.wallet(t, "A", "100")
	b := f.wallet(t, "B", "100")

	tx, err := f.svc.Transactions.Create(ctx, f.actor, CreateTransactionInput{
		WalletID:   a.ID,
		CategoryID: salaryCategory,
		Kind:       core.Credit,
		Amount:     core.MustMoney("25.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "125.50", f.balance(t, a.ID))

	_, err = f.svc.Transactions.Update(ctx, f.actor, tx.ID, UpdateTransactionInput{WalletID: &b.ID})
	require.NoError(t, err)
	assert.Equal(t, "100.00", f.balance(t, a.ID))
	assert.Equal(t, "125.50", f.balance(t, b.ID))
}

func TestTransactionDebitMayOverdraw(t *testing.T) {
	f := newFixture(t)
	w := f.wallet(t, "Cash", "10")

	_, err := f.svc.Transactions.Create(context.Background(), f.actor, CreateTransactionInput{
		WalletID:   w.ID,
		CategoryID: foodCategory,
		Amount:     core.MustMoney("15"),
	})
	require.NoError(t, err)
	assert.Equal(t, "-5.00", f.balance(t, w.ID))
}

func TestTransactionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.wallet(t, "Cash", "10")
	other := f.otherActor(t)

	tests := []struct {
		name  string
		actor core.Actor
		in    CreateTransactionInput
		check func(error) bool
	}{
		{
			name:  "kind mismatch",
			actor: f.actor,
			in:    CreateTransactionInput{WalletID: w.ID, CategoryID: salaryCategory, Kind: core.Debit, Amount: core.MustMoney("1")},
			check: core.IsValidation,
		},
		{
			name:  "zero amount",
			actor: f.actor,
			in:    CreateTransactionInput{WalletID: w.ID, CategoryID: foodCategory, Amount: core.Zero},
			check: core.IsValidation,
		},
		{
			name:  "foreign wallet",
			actor: other,
			in:    CreateTransactionInput{WalletID: w.ID, CategoryID: foodCategory, Amount: core.MustMoney("1")},
			check: core.IsValidation,
		},
		{
			name:  "amount beyond storable range",
			actor: f.actor,
			in:    CreateTransactionInput{WalletID: w.ID, CategoryID: foodCategory, Amount: core.NewMoneyFromCents(core.MaxCents + 1)},
			check: core.IsValidation,
		},
		{
			name:  "unknown kind",
			actor: f.actor,
			in:    CreateTransactionInput{WalletID: w.ID, CategoryID: foodCategory, Kind: "refund", Amount: core.MustMoney("1")},
			check: core.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Transactions.Create(ctx, tt.actor, tt.in)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}
	assert.Equal(t, "10.00", f.balance(t, w.ID))
}

func TestTransactionBalanceOverflowIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.wallet(t, "Vault", "10000000000000")

	_, err := f.svc.Transactions.Create(ctx, f.actor, CreateTransactionInput{
		WalletID: w.ID, CategoryID: salaryCategory, Kind: core.Credit, Amount: core.MustMoney("0.01"),
	})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err), "unexpected error %v", err)
	assert.Equal(t, "10000000000000.00", f.balance(t, w.ID))

	txs, err := f.svc.Transactions.List(ctx, f.actor, storage.TransactionFilter{WalletID: &w.ID})
	require.NoError(t, err)
	assert.Empty(t, txs, "the failed credit must roll back")
}

func TestTransactionForeignActorCannotModify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.wallet(t, "Cash", "10")
	tx, err := f.svc.Transactions.Create(ctx, f.actor, CreateTransactionInput{
		WalletID: w.ID, CategoryID: foodCategory, Amount: core.MustMoney("1"),
	})
	require.NoError(t, err)

	err = f.svc.Transactions.SoftDelete(ctx, f.otherActor(t), tx.ID)
	assert.True(t, core.IsPermission(err))
	assert.Equal(t, "9.00", f.balance(t, w.ID))
}

func TestTransactionListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.wallet(t, "Cash", "100")
	for _, amount := range []string{"1", "2", "3"} {
		_, err := f.svc.Transactions.Create(ctx, f.actor, CreateTransactionInput{
			WalletID: w.ID, CategoryID: foodCategory, Amount: core.MustMoney(amount),
		})
		require.NoError(t, err)
	}
	_, err := f.svc.Transactions.Create(ctx, f.actor, CreateTransactionInput{
		WalletID: w.ID, CategoryID: salaryCategory, Kind: core.Credit, Amount: core.MustMoney("9"),
	})
	require.NoError(t, err)

	debits, err := f.svc.Transactions.List(ctx, f.actor, storage.TransactionFilter{Kind: core.Debit})
	require.NoError(t, err)
	assert.Len(t, debits, 3)

	limited, err := f.svc.Transactions.List(ctx, f.actor, storage.TransactionFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
