package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestWalletCreateNormalizesName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w, err := f.svc.Wallets.Create(ctx, f.actor, "  Main   Account ", core.Zero)
	require.NoError(t, err)
	assert.Equal(t, "Main Account", w.Name)
	assert.Equal(t, "0.00", w.Balance.String())

	_, err = f.svc.Wallets.Create(ctx, f.actor, "main account", core.Zero)
	assert.True(t, core.IsValidation(err))

	// names are unique per user only
	_, err = f.svc.Wallets.Create(ctx, f.otherActor(t), "Main Account", core.Zero)
	assert.NoError(t, err)
}

func TestWalletDeleteRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	funded := f.wallet(t, "Funded", "5")
	err := f.svc.Wallets.SoftDelete(ctx, f.actor, funded.ID)
	assert.True(t, core.IsValidation(err))

	used := f.wallet(t, "Used", "0")
	_, err = f.svc.Transactions.Create(ctx, f.actor, CreateTransactionInput{
		WalletID: used.ID, CategoryID: salaryCategory, Kind: core.Credit, Amount: core.MustMoney("1"),
	})
	require.NoError(t, err)
	_, err = f.svc.Transactions.Create(ctx, f.actor, CreateTransactionInput{
		WalletID: used.ID, CategoryID: foodCategory, Amount: core.MustMoney("1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", f.balance(t, used.ID))
	err = f.svc.Wallets.SoftDelete(ctx, f.actor, used.ID)
	assert.True(t, core.IsValidation(err), "wallet with live transactions must not be deleted")

	empty := f.wallet(t, "Empty", "0")
	require.NoError(t, f.svc.Wallets.SoftDelete(ctx, f.actor, empty.ID))
	_, err = f.svc.Wallets.Get(ctx, f.actor, empty.ID)
	assert.True(t, core.IsNotFound(err))
	assert.True(t, core.IsNotFound(f.svc.Wallets.SoftDelete(ctx, f.actor, empty.ID)))

	// the name is free again
	_, err = f.svc.Wallets.Create(ctx, f.actor, "Empty", core.Zero)
	assert.NoError(t, err)
}

func TestWalletRenameAndAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.wallet(t, "Old", "1")

	renamed, err := f.svc.Wallets.Rename(ctx, f.actor, w.ID, "New")
	require.NoError(t, err)
	assert.Equal(t, "New", renamed.Name)

	other := f.otherActor(t)
	_, err = f.svc.Wallets.Get(ctx, other, w.ID)
	assert.True(t, core.IsPermission(err))
	_, err = f.svc.Wallets.Rename(ctx, other, w.ID, "Stolen")
	assert.True(t, core.IsPermission(err))

	list, err := f.svc.Wallets.List(ctx, f.actor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "New", list[0].Name)
}
