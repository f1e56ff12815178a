// Package postgres persists audit records as JSONB documents with the slot-key
// fields extracted into indexed columns for equality and range predicates.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"lpa/internal/audit"
	"lpa/pkg/platform/sentinel"
)

const schema = `
CREATE TABLE IF NOT EXISTS audits (
	id              UUID PRIMARY KEY,
	audit_type      TEXT NOT NULL,
	date            TEXT NOT NULL,
	week            TEXT NOT NULL,
	month           TEXT NOT NULL,
	subcategory     TEXT NOT NULL,
	time_of_day     TEXT NOT NULL DEFAULT '',
	weekly_sub_type TEXT NOT NULL DEFAULT '',
	record          JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS audits_daily_slot
	ON audits (subcategory, date, time_of_day) WHERE audit_type = 'daily';
CREATE UNIQUE INDEX IF NOT EXISTS audits_weekly_slot
	ON audits (subcategory, week, weekly_sub_type) WHERE audit_type = 'weekly';
CREATE UNIQUE INDEX IF NOT EXISTS audits_monthly_slot
	ON audits (subcategory, month) WHERE audit_type = 'monthly';
CREATE INDEX IF NOT EXISTS audits_week_lookup ON audits (week, subcategory, audit_type);
`

// Store implements audit.Store on Postgres. The slot uniqueness the Duplicate
// Guard checks optimistically is additionally enforced by partial unique
// indexes, so a submit race degrades to a conflict error instead of a
// duplicate row.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the audits table and slot indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure audits schema: %w", err)
	}
	return nil
}

// recordDoc mirrors audit.Record on the wire but defers answer decoding so
// historical nested-by-section payloads normalize on load.
type recordDoc struct {
	audit.Record
	Answers json.RawMessage `json:"answers"`
}

func (s *Store) Insert(ctx context.Context, record *audit.Record) (string, error) {
	id := uuid.NewString()
	createdAt := time.Now()

	stored := *record
	stored.ID = id
	stored.CreatedAt = createdAt
	payload, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("marshal audit record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audits (id, audit_type, date, week, month, subcategory, time_of_day, weekly_sub_type, record, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, stored.AuditType, stored.Date, stored.Week, stored.Month, stored.Subcategory,
		string(stored.TimeOfDay), string(stored.WeeklySubType), payload, createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", fmt.Errorf("audit slot already taken: %w", sentinel.ErrConflict)
		}
		return "", fmt.Errorf("insert audit: %w", err)
	}

	record.ID = id
	record.CreatedAt = createdAt
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (*audit.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT record, created_at FROM audits WHERE id = $1`, id)
	return scanRecord(row)
}

func (s *Store) Update(ctx context.Context, record *audit.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE audits
		SET record = $2, date = $3, week = $4, month = $5, time_of_day = $6, weekly_sub_type = $7
		WHERE id = $1
	`, record.ID, payload, record.Date, record.Week, record.Month,
		string(record.TimeOfDay), string(record.WeeklySubType))
	if err != nil {
		return fmt.Errorf("update audit: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("audit %s: %w", record.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, q audit.Query) ([]*audit.Record, error) {
	where, args := buildPredicates(q)
	query := `SELECT record, created_at FROM audits`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audits: %w", err)
	}
	defer rows.Close()

	var records []*audit.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func buildPredicates(q audit.Query) (where []string, args []any) {
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("audit_type", string(q.AuditType))
	add("subcategory", q.Subcategory)
	add("date", q.Date)
	add("week", q.Week)
	add("month", q.Month)
	add("time_of_day", string(q.TimeOfDay))
	add("weekly_sub_type", string(q.WeeklySubType))

	// Range predicates compare against the record's own period key column.
	periodColumn := map[audit.Type]string{
		audit.TypeDaily:   "date",
		audit.TypeWeekly:  "week",
		audit.TypeMonthly: "month",
	}[q.AuditType]
	if periodColumn != "" {
		if q.PeriodFrom != "" {
			args = append(args, q.PeriodFrom)
			where = append(where, fmt.Sprintf("%s >= $%d", periodColumn, len(args)))
		}
		if q.PeriodTo != "" {
			args = append(args, q.PeriodTo)
			where = append(where, fmt.Sprintf("%s <= $%d", periodColumn, len(args)))
		}
	}
	return where, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*audit.Record, error) {
	var payload []byte
	var createdAt time.Time
	if err := row.Scan(&payload, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("audit: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan audit: %w", err)
	}

	var doc recordDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode audit record: %w", err)
	}
	record := doc.Record
	record.CreatedAt = createdAt
	answers, err := audit.DecodeAnswers(doc.Answers)
	if err != nil {
		return nil, fmt.Errorf("decode audit answers: %w", err)
	}
	record.Answers = answers
	return &record, nil
}
