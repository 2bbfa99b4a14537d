package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD date as midnight UTC.
func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, core.Invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// nullableDate tells an absent field apart from an explicit null.
type nullableDate struct {
	Set   bool
	Value *time.Time
}

func (d *nullableDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	if string(b) == "null" {
		d.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return core.Invalid("end_date", "must be a date in YYYY-MM-DD format or null")
	}
	t, err := parseDate("end_date", s)
	if err != nil {
		return err
	}
	d.Value = &t
	return nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, core.Invalid("id", "must be a UUID")
	}
	return id, nil
}

func queryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, core.Invalid(key, "must be a UUID")
	}
	return &id, nil
}

func queryInt(r *http.Request, key string, lo, hi int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, core.Invalid(key, fmt.Sprintf("must be a number between %d and %d", lo, hi))
	}
	return n, nil
}

// parseTransactionFilter reads wallet_id, category_id, kind, from, to,
// limit and offset. to is inclusive of the whole day.
func parseTransactionFilter(r *http.Request) (storage.TransactionFilter, error) {
	var (
		f   storage.TransactionFilter
		err error
	)
	q := r.URL.Query()

	if f.WalletID, err = queryUUID(r, "wallet_id"); err != nil {
		return f, err
	}
	if f.CategoryID, err = queryUUID(r, "category_id"); err != nil {
		return f, err
	}
	if v := q.Get("kind"); v != "" {
		if f.Kind, err = core.ParseKind(v); err != nil {
			return f, core.Invalid("kind", "must be credit or debit")
		}
	}
	if v := q.Get("from"); v != "" {
		from, err := parseDate("from", v)
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := parseDate("to", v)
		if err != nil {
			return f, err
		}
		to = to.AddDate(0, 0, 1)
		f.To = &to
	}
	if f.Limit, err = queryInt(r, "limit", 1, 500); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(r, "offset", 0, 1<<31-1); err != nil {
		return f, err
	}
	return f, nil
}

func parseKind(s string) (core.Kind, error) {
	kind, err := core.ParseKind(s)
	if err != nil {
		return "", core.Invalid("kind", "must be credit or debit")
	}
	return kind, nil
}

// sanitizeInput strips control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeInput(*s)
	return &v
}

// echoRequestID returns the id assigned by middleware.RequestID to the client.
func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := requestID(r); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
