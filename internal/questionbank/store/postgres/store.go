// Package postgres backs the question bank with two narrow tables; questions
// carry their subcategory and ordering so listings are a single indexed scan.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lpa/internal/questionbank"
	"lpa/pkg/platform/sentinel"
)

const schema = `
CREATE TABLE IF NOT EXISTS subcategories (
	id    UUID PRIMARY KEY,
	name  TEXT NOT NULL,
	ord   INT  NOT NULL
);
CREATE TABLE IF NOT EXISTS questions (
	id             UUID PRIMARY KEY,
	subcategory_id UUID NOT NULL REFERENCES subcategories (id),
	text           TEXT NOT NULL,
	qtype          TEXT NOT NULL,
	options        JSONB NOT NULL DEFAULT '[]',
	ord            INT  NOT NULL
);
CREATE INDEX IF NOT EXISTS questions_listing ON questions (subcategory_id, ord);
`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure question bank schema: %w", err)
	}
	return nil
}

func (s *Store) ListSubcategories(ctx context.Context) ([]questionbank.Subcategory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, ord FROM subcategories ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("query subcategories: %w", err)
	}
	defer rows.Close()

	var subs []questionbank.Subcategory
	for rows.Next() {
		var sub questionbank.Subcategory
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Order); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *Store) GetSubcategory(ctx context.Context, id string) (questionbank.Subcategory, error) {
	var sub questionbank.Subcategory
	err := s.db.QueryRowContext(ctx, `SELECT id, name, ord FROM subcategories WHERE id = $1`, id).
		Scan(&sub.ID, &sub.Name, &sub.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return questionbank.Subcategory{}, fmt.Errorf("subcategory %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return questionbank.Subcategory{}, fmt.Errorf("get subcategory: %w", err)
	}
	return sub, nil
}

// AddSubcategory registers a subcategory at the end of the listing.
func (s *Store) AddSubcategory(ctx context.Context, sub questionbank.Subcategory) (questionbank.Subcategory, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.Order == 0 {
		if err := s.db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(ord), 0) + 1 FROM subcategories`).Scan(&sub.Order); err != nil {
			return questionbank.Subcategory{}, fmt.Errorf("next subcategory order: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subcategories (id, name, ord) VALUES ($1, $2, $3)`, sub.ID, sub.Name, sub.Order)
	if err != nil {
		return questionbank.Subcategory{}, fmt.Errorf("insert subcategory: %w", err)
	}
	return sub, nil
}

func (s *Store) ListQuestions(ctx context.Context, subcategoryID string) ([]questionbank.Question, error) {
	if _, err := s.GetSubcategory(ctx, subcategoryID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, qtype, options, ord FROM questions
		WHERE subcategory_id = $1 ORDER BY ord
	`, subcategoryID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []questionbank.Question
	for rows.Next() {
		var q questionbank.Question
		var options []byte
		if err := rows.Scan(&q.ID, &q.Text, &q.Type, &options, &q.Order); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("decode question options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) AddQuestion(ctx context.Context, subcategoryID string, q questionbank.Question) (questionbank.Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Order == 0 {
		if err := s.db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(ord), 0) + 1 FROM questions WHERE subcategory_id = $1`,
			subcategoryID).Scan(&q.Order); err != nil {
			return questionbank.Question{}, fmt.Errorf("next question order: %w", err)
		}
	}
	options, err := json.Marshal(q.Options)
	if err != nil {
		return questionbank.Question{}, fmt.Errorf("encode question options: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO questions (id, subcategory_id, text, qtype, options, ord)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, q.ID, subcategoryID, q.Text, string(q.Type), options, q.Order)
	if err != nil {
		return questionbank.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (s *Store) SwapOrder(ctx context.Context, subcategoryID, questionIDA, questionIDB string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin swap: %w", err)
	}
	defer tx.Rollback()

	orderOf := func(id string) (int, error) {
		var ord int
		err := tx.QueryRowContext(ctx,
			`SELECT ord FROM questions WHERE id = $1 AND subcategory_id = $2`, id, subcategoryID).Scan(&ord)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("question %s: %w", id, sentinel.ErrNotFound)
		}
		return ord, err
	}

	ordA, err := orderOf(questionIDA)
	if err != nil {
		return err
	}
	ordB, err := orderOf(questionIDB)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE questions SET ord = $2 WHERE id = $1`, questionIDA, ordB); err != nil {
		return fmt.Errorf("swap question order: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE questions SET ord = $2 WHERE id = $1`, questionIDB, ordA); err != nil {
		return fmt.Errorf("swap question order: %w", err)
	}
	return tx.Commit()
}
