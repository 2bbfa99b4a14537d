package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type testAPI struct {
	srv    *Server
	svc    *services.Services
	sender *notify.MemorySender
	token  string
	user   core.User
}

func newTestAPI(t *testing.T, rateLimit int) *testAPI {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	sender := &notify.MemorySender{}
	svc := services.New(repo, notify.NewDispatcher(sender, worker.Inline{}, 1), nil)

	user, err := svc.Users.Create(context.Background(), "Grace Hopper", "grace@example.com", false)
	require.NoError(t, err)
	token, err := auth.IssueToken(testSecret, user, time.Hour, time.Now())
	require.NoError(t, err)

	srv := NewServer(":0", svc, repo, Options{
		JWTSecret: testSecret,
		RateLimit: rateLimit,
		Logger:    applog.New(applog.Config{Output: io.Discard}),
	})
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	return &testAPI{srv: srv, svc: svc, sender: sender, token: token, user: user}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	return a.doAs(t, a.token, method, path, body)
}

func (a *testAPI) doAs(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t, 60)

	rec := api.doAs(t, "", http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuthentication(t *testing.T) {
	api := newTestAPI(t, 60)

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-jwt"},
		{"wrong secret", func() string {
			tok, _ := auth.IssueToken([]byte("another-secret-another-secret-xx"), api.user, time.Hour, time.Now())
			return tok
		}()},
		{"expired token", func() string {
			tok, _ := auth.IssueToken(testSecret, api.user, time.Minute, time.Now().Add(-time.Hour))
			return tok
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.doAs(t, tt.token, http.MethodGet, "/api/v1/wallets", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestMe(t *testing.T) {
	api := newTestAPI(t, 60)

	rec := api.do(t, http.MethodGet, "/api/v1/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[core.User](t, rec)
	assert.Equal(t, api.user.ID, me.ID)
	assert.Equal(t, "grace@example.com", me.Email)
}

func TestWalletAndTransactionFlow(t *testing.T) {
	api := newTestAPI(t, 60)

	rec := api.do(t, http.MethodPost, "/api/v1/wallets", map[string]any{"name": "Main", "balance": "500.00"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	wallet := decode[core.Wallet](t, rec)
	assert.Equal(t, "500.00", wallet.Balance.String())

	rec = api.do(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"wallet_id":   wallet.ID,
		"category_id": "00000000-0000-4000-8000-000000000011",
		"kind":        "debit",
		"amount":      "200",
		"description": "groceries",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tx := decode[core.Transaction](t, rec)

	rec = api.do(t, http.MethodGet, "/api/v1/wallets/"+wallet.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "300.00", decode[core.Wallet](t, rec).Balance.String())

	rec = api.do(t, http.MethodPatch, "/api/v1/transactions/"+tx.ID.String(), map[string]any{"amount": "50"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/v1/wallets/"+wallet.ID.String(), nil)
	assert.Equal(t, "450.00", decode[core.Wallet](t, rec).Balance.String())

	rec = api.do(t, http.MethodGet, "/api/v1/transactions?wallet_id="+wallet.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]core.Transaction](t, rec), 1)

	rec = api.do(t, http.MethodDelete, "/api/v1/transactions/"+tx.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/wallets/"+wallet.ID.String(), nil)
	assert.Equal(t, "500.00", decode[core.Wallet](t, rec).Balance.String())

	rec = api.do(t, http.MethodDelete, "/api/v1/transactions/"+tx.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransferEndpoint(t *testing.T) {
	api := newTestAPI(t, 60)

	src := decode[core.Wallet](t, api.do(t, http.MethodPost, "/api/v1/wallets", map[string]any{"name": "Checking", "balance": "100"}))
	dst := decode[core.Wallet](t, api.do(t, http.MethodPost, "/api/v1/wallets", map[string]any{"name": "Savings"}))

	rec := api.do(t, http.MethodPost, "/api/v1/transfers", map[string]any{
		"source_wallet_id":      src.ID,
		"destination_wallet_id": dst.ID,
		"amount":                "40",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "60.00", decode[core.Wallet](t, api.do(t, http.MethodGet, "/api/v1/wallets/"+src.ID.String(), nil)).Balance.String())
	assert.Equal(t, "40.00", decode[core.Wallet](t, api.do(t, http.MethodGet, "/api/v1/wallets/"+dst.ID.String(), nil)).Balance.String())

	rec = api.do(t, http.MethodPost, "/api/v1/transfers", map[string]any{
		"source_wallet_id":      src.ID,
		"destination_wallet_id": src.ID,
		"amount":                "1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "destination_wallet_id", decode[errorResponse](t, rec).Field)
}

func TestValidationErrors(t *testing.T) {
	api := newTestAPI(t, 60)

	tests := []struct {
		name      string
		method    string
		path      string
		body      any
		wantField string
	}{
		{"empty wallet name", http.MethodPost, "/api/v1/wallets", map[string]any{"name": "  "}, "name"},
		{"bad amount", http.MethodPost, "/api/v1/wallets", `{"name":"x","balance":"abc"}`, "amount"},
		{"unknown field", http.MethodPost, "/api/v1/wallets", `{"name":"x","colour":"red"}`, "body"},
		{"malformed json", http.MethodPost, "/api/v1/wallets", `{"name":`, "body"},
		{"empty body", http.MethodPost, "/api/v1/categories", nil, "body"},
		{"bad kind", http.MethodPost, "/api/v1/categories", map[string]any{"name": "Gym", "kind": "sideways"}, "kind"},
		{"bad path id", http.MethodGet, "/api/v1/wallets/not-a-uuid", nil, "id"},
		{"bad filter date", http.MethodGet, "/api/v1/transactions?from=yesterday", nil, "from"},
		{"limit out of range", http.MethodGet, "/api/v1/transactions?limit=1000", nil, "limit"},
		{"bad frequency", http.MethodPost, "/api/v1/recurring-transactions", map[string]any{"frequency": "hourly", "start_date": "2099-01-01"}, "frequency"},
		{"bad start date", http.MethodPost, "/api/v1/recurring-transactions", map[string]any{"frequency": "daily", "start_date": "01/01/2099"}, "start_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantField, decode[errorResponse](t, rec).Field)
		})
	}
}

func TestNotFoundAndForbidden(t *testing.T) {
	api := newTestAPI(t, 60)

	rec := api.do(t, http.MethodGet, "/api/v1/wallets/00000000-0000-4000-8000-0000000000ff", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	wallet := decode[core.Wallet](t, api.do(t, http.MethodPost, "/api/v1/wallets", map[string]any{"name": "Private"}))

	other, err := api.svc.Users.Create(context.Background(), "Alan Turing", "alan@example.com", false)
	require.NoError(t, err)
	otherToken, err := auth.IssueToken(testSecret, other, time.Hour, time.Now())
	require.NoError(t, err)

	rec = api.doAs(t, otherToken, http.MethodGet, "/api/v1/wallets/"+wallet.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.doAs(t, otherToken, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Shared", "kind": "debit", "predefined": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBudgetEndpoint(t *testing.T) {
	api := newTestAPI(t, 60)

	now := time.Now().UTC()
	wallet := decode[core.Wallet](t, api.do(t, http.MethodPost, "/api/v1/wallets", map[string]any{"name": "Main", "balance": "2000"}))

	rec := api.do(t, http.MethodPost, "/api/v1/budgets", map[string]any{
		"category_id": "00000000-0000-4000-8000-000000000011",
		"year":        now.Year(),
		"month":       int(now.Month()),
		"amount":      "1000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	budget := decode[core.Budget](t, rec)

	rec = api.do(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"wallet_id":   wallet.ID,
		"category_id": "00000000-0000-4000-8000-000000000011",
		"amount":      "900",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/v1/budgets/"+budget.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[services.BudgetView](t, rec)
	assert.Equal(t, "900.00", view.Usage.Spent.String())
	assert.Equal(t, core.AlertWarning, view.Usage.Level)

	sent := api.sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notify.KindBudgetWarning, sent[0].Kind)

	rec = api.do(t, http.MethodPatch, "/api/v1/budgets/"+budget.ID.String(), map[string]any{"amount": "1500"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1500.00", decode[core.Budget](t, rec).Amount.String())

	rec = api.do(t, http.MethodDelete, "/api/v1/budgets/"+budget.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecurringEndpoint(t *testing.T) {
	api := newTestAPI(t, 60)

	wallet := decode[core.Wallet](t, api.do(t, http.MethodPost, "/api/v1/wallets", map[string]any{"name": "Main"}))
	start := time.Now().UTC().AddDate(0, 0, 1).Format(dateLayout)

	rec := api.do(t, http.MethodPost, "/api/v1/recurring-transactions", map[string]any{
		"wallet_id":   wallet.ID,
		"category_id": "00000000-0000-4000-8000-000000000001",
		"kind":        "credit",
		"amount":      "3000",
		"frequency":   "monthly",
		"start_date":  start,
		"end_date":    time.Now().UTC().AddDate(1, 0, 0).Format(dateLayout),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rule := decode[core.RecurringTransaction](t, rec)
	require.NotNil(t, rule.EndDate)

	rec = api.do(t, http.MethodPatch, "/api/v1/recurring-transactions/"+rule.ID.String(), `{"end_date":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decode[core.RecurringTransaction](t, rec).EndDate)

	rec = api.do(t, http.MethodGet, "/api/v1/recurring-transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]core.RecurringTransaction](t, rec), 1)

	rec = api.do(t, http.MethodDelete, "/api/v1/recurring-transactions/"+rule.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit(t *testing.T) {
	api := newTestAPI(t, 2)

	for i := 0; i < 2; i++ {
		rec := api.do(t, http.MethodGet, "/api/v1/wallets", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := api.do(t, http.MethodGet, "/api/v1/wallets", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// health checks are not limited
	assert.Equal(t, http.StatusOK, api.doAs(t, "", http.MethodGet, "/healthz", nil).Code)
}
