// Package postgres persists issue records as JSONB documents with the listing
// predicates extracted into indexed columns.
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

	"lpa/internal/issue"
	"lpa/pkg/platform/sentinel"
)

const schema = `
CREATE TABLE IF NOT EXISTS issues (
	id              UUID PRIMARY KEY,
	status          TEXT NOT NULL,
	subcategory     TEXT NOT NULL,
	linked_audit_id TEXT NOT NULL DEFAULT '',
	record          JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS issues_status ON issues (status);
CREATE INDEX IF NOT EXISTS issues_linked_audit ON issues (linked_audit_id);
`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure issues schema: %w", err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, record *issue.Record) (string, error) {
	id := uuid.NewString()
	createdAt := time.Now()

	stored := *record
	stored.ID = id
	stored.CreatedAt = createdAt
	payload, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("marshal issue record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO issues (id, status, subcategory, linked_audit_id, record, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, string(stored.Status), stored.Subcategory, stored.LinkedAuditID, payload, createdAt)
	if err != nil {
		return "", fmt.Errorf("insert issue: %w", err)
	}

	record.ID = id
	record.CreatedAt = createdAt
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (*issue.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT record, created_at FROM issues WHERE id = $1`, id)
	return scanRecord(row)
}

func (s *Store) Update(ctx context.Context, record *issue.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal issue record: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE issues SET record = $2, status = $3 WHERE id = $1
	`, record.ID, payload, string(record.Status))
	if err != nil {
		return fmt.Errorf("update issue: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("issue %s: %w", record.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, q issue.Query) ([]*issue.Record, error) {
	var where []string
	var args []any
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("status", string(q.Status))
	add("subcategory", q.Subcategory)
	add("linked_audit_id", q.LinkedAuditID)

	query := `SELECT record, created_at FROM issues`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}
	defer rows.Close()

	var records []*issue.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*issue.Record, error) {
	var payload []byte
	var createdAt time.Time
	if err := row.Scan(&payload, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("issue: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan issue: %w", err)
	}
	var record issue.Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode issue record: %w", err)
	}
	record.CreatedAt = createdAt
	return &record, nil
}
