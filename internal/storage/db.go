package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TimeLayout is fixed width so that text comparison matches time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db, now: time.Now}
}

type Queries struct {
	db  DBTX
	now func() time.Time
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db:  tx,
		now: q.now,
	}
}

// formatTime renders t in UTC with TimeLayout.
func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func (q *Queries) stamp() string {
	return formatTime(q.now())
}

// timeScanner parses TEXT columns written by formatTime.
type timeScanner struct {
	dst *time.Time
}

func (s timeScanner) Scan(src interface{}) error {
	var text string
	switch v := src.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	case time.Time:
		*s.dst = v.UTC()
		return nil
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
	t, err := time.Parse(TimeLayout, text)
	if err != nil {
		return fmt.Errorf("parse time %q: %w", text, err)
	}
	*s.dst = t.UTC()
	return nil
}

type nullTimeScanner struct {
	dst **time.Time
}

func (s nullTimeScanner) Scan(src interface{}) error {
	if src == nil {
		*s.dst = nil
		return nil
	}
	var t time.Time
	if err := (timeScanner{dst: &t}).Scan(src); err != nil {
		return err
	}
	*s.dst = &t
	return nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
