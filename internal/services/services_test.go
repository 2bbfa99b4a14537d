package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/notify"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

var (
	foodCategory   = uuid.MustParse("00000000-0000-4000-8000-000000000011")
	rentCategory   = uuid.MustParse("00000000-0000-4000-8000-000000000012")
	salaryCategory = uuid.MustParse("00000000-0000-4000-8000-000000000001")

	testNow = time.Date(2030, time.January, 15, 9, 0, 0, 0, time.UTC)
)

type fixture struct {
	repo   *storage.SQLiteRepository
	svc    *Services
	sender *notify.MemorySender
	user   core.User
	actor  core.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	sender := &notify.MemorySender{}
	dispatcher := notify.NewDispatcher(sender, worker.Inline{}, 1)
	svc := New(repo, dispatcher, nil)
	setClock(svc, func() time.Time { return testNow })

	user, err := svc.Users.Create(context.Background(), "Ada Lovelace", "ada@example.com", false)
	require.NoError(t, err)

	return &fixture{
		repo:   repo,
		svc:    svc,
		sender: sender,
		user:   user,
		actor:  core.Actor{UserID: user.ID},
	}
}

func setClock(s *Services, c Clock) {
	s.Users.now = c
	s.Wallets.now = c
	s.Categories.now = c
	s.Transactions.now = c
	s.Transfers.now = c
	s.Recurring.now = c
	s.Budgets.now = c
}

func (f *fixture) wallet(t *testing.T, name, opening string) core.Wallet {
	t.Helper()
	w, err := f.svc.Wallets.Create(context.Background(), f.actor, name, core.MustMoney(opening))
	require.NoError(t, err)
	return w
}

func (f *fixture) balance(t *testing.T, id uuid.UUID) string {
	t.Helper()
	w, err := f.svc.Wallets.Get(context.Background(), f.actor, id)
	require.NoError(t, err)
	return w.Balance.String()
}

func (f *fixture) otherActor(t *testing.T) core.Actor {
	t.Helper()
	u, err := f.svc.Users.Create(context.Background(), "Grace Hopper", uuid.NewString()+"@example.com", false)
	require.NoError(t, err)
	return core.Actor{UserID: u.ID}
}

func ptr[T any](v T) *T { return &v }
