package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestTransferLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.wallet(t, "A", "100")
	b := f.wallet(t, "B", "20")
	c := f.wallet(t, "C", "0")

	tr, err := f.svc.Transfers.Create(ctx, f.actor, CreateTransferInput{
		SourceWalletID:      a.ID,
		DestinationWalletID: b.ID,
		Amount:              core.MustMoney("30"),
	})
	require.NoError(t, err)
	assert.Equal(t, "70.00", f.balance(t, a.ID))
	assert.Equal(t, "50.00", f.balance(t, b.ID))

	_, err = f.svc.Transfers.Update(ctx, f.actor, tr.ID, UpdateTransferInput{
		DestinationWalletID: &c.ID,
		Amount:              ptr(core.MustMoney("40")),
	})
	require.NoError(t, err)
	assert.Equal(t, "60.00", f.balance(t, a.ID))
	assert.Equal(t, "20.00", f.balance(t, b.ID))
	assert.Equal(t, "40.00", f.balance(t, c.ID))

	require.NoError(t, f.svc.Transfers.SoftDelete(ctx, f.actor, tr.ID))
	assert.Equal(t, "100.00", f.balance(t, a.ID))
	assert.Equal(t, "20.00", f.balance(t, b.ID))
	assert.Equal(t, "0.00", f.balance(t, c.ID))

	err = f.svc.Transfers.SoftDelete(ctx, f.actor, tr.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestTransferUpdateStampsUpdatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.wallet(t, "A", "100")
	b := f.wallet(t, "B", "0")

	tr, err := f.svc.Transfers.Create(ctx, f.actor, CreateTransferInput{
		SourceWalletID: a.ID, DestinationWalletID: b.ID, Amount: core.MustMoney("10"),
	})
	require.NoError(t, err)
	assert.True(t, tr.UpdatedAt.Equal(testNow))

	later := testNow.Add(time.Hour)
	setClock(f.svc, func() time.Time { return later })

	updated, err := f.svc.Transfers.Update(ctx, f.actor, tr.ID, UpdateTransferInput{
		Description: ptr("rent share"),
	})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.Equal(later), "updated_at = %s", updated.UpdatedAt)
	assert.True(t, updated.CreatedAt.Equal(testNow))
	assert.Equal(t, "rent share", updated.Description)
}

func TestTransferRejectsOversizedAmount(t *testing.T) {
	f := newFixture(t)
	a := f.wallet(t, "A", "500")
	b := f.wallet(t, "B", "0")

	_, err := f.svc.Transfers.Create(context.Background(), f.actor, CreateTransferInput{
		SourceWalletID:      a.ID,
		DestinationWalletID: b.ID,
		Amount:              core.NewMoneyFromCents(core.MaxCents + 1),
	})
	require.Error(t, err)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
	assert.Equal(t, "500.00", f.balance(t, a.ID))
}

func TestTransferRejectsSameWallet(t *testing.T) {
	f := newFixture(t)
	a := f.wallet(t, "A", "100")

	_, err := f.svc.Transfers.Create(context.Background(), f.actor, CreateTransferInput{
		SourceWalletID:      a.ID,
		DestinationWalletID: a.ID,
		Amount:              core.MustMoney("1"),
	})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "destination_wallet_id", verr.Field)
	assert.Equal(t, "100.00", f.balance(t, a.ID))
}

func TestTransferRejectsForeignWallet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.wallet(t, "A", "100")

	other := f.otherActor(t)
	foreign, err := f.svc.Wallets.Create(ctx, other, "Theirs", core.Zero)
	require.NoError(t, err)

	_, err = f.svc.Transfers.Create(ctx, f.actor, CreateTransferInput{
		SourceWalletID:      a.ID,
		DestinationWalletID: foreign.ID,
		Amount:              core.MustMoney("1"),
	})
	assert.True(t, core.IsValidation(err))
	assert.Equal(t, "100.00", f.balance(t, a.ID))
}
