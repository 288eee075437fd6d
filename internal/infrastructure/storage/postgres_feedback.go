package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"CredScore/internal/domain"
	"CredScore/internal/ports"
)

// PostgresFeedback persists labeled feedback examples into Postgres.
// Later labels for the same URL win: ListExamples keeps the newest row per URL.
type PostgresFeedback struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.FeedbackRepository = (*PostgresFeedback)(nil)

// NewPostgresFeedback wires a sql.DB implementation. A nil db yields a
// repository that accepts writes silently and lists nothing.
func NewPostgresFeedback(db *sql.DB) *PostgresFeedback {
	return &PostgresFeedback{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Append stores one labeled example.
func (r *PostgresFeedback) Append(ctx context.Context, example domain.LabeledExample) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("feedback_examples").
		Columns("id", "url", "label").
		Values(uuid.NewString(), example.URL, example.Label).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// ListExamples returns up to limit examples, one per URL, newest label first.
func (r *PostgresFeedback) ListExamples(ctx context.Context, limit int) ([]domain.LabeledExample, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := r.builder.
		Select("url", "label").
		FromSelect(
			sq.Select("url", "label", "row_number() OVER (PARTITION BY url ORDER BY created_at DESC) AS rn").
				From("feedback_examples"),
			"latest").
		Where(sq.Eq{"rn": 1}).
		OrderBy("url").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var out []domain.LabeledExample
	for rows.Next() {
		var ex domain.LabeledExample
		if err := rows.Scan(&ex.URL, &ex.Label); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}
