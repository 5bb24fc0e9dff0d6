package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fennlabs/fennlingo/internal/dialogue"
)

const dbTimeout = 5 * time.Second

// Postgres is a PostgreSQL-backed progress and correction store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgreSQL-backed store and ensures its schema.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	s := &Postgres{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensuring progress schema: %w", err)
	}
	return s, nil
}

func (s *Postgres) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS progress_events (
    id         BIGSERIAL PRIMARY KEY,
    user_id    TEXT NOT NULL,
    quiz_key   TEXT NOT NULL,
    score      INT  NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS progress_events_user_idx ON progress_events (user_id);

CREATE TABLE IF NOT EXISTS corrections (
    id         BIGSERIAL PRIMARY KEY,
    user_id    TEXT NOT NULL,
    original   TEXT NOT NULL,
    corrected  TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS corrections_user_idx ON corrections (user_id, created_at);`

	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// Record inserts one score event. Aggregation happens on read so that
// every finished run stays visible in the raw history.
func (s *Postgres) Record(ctx context.Context, userID, quizKey string, score int) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO progress_events (user_id, quiz_key, score) VALUES ($1, $2, $3)`,
		userID, quizKey, score,
	)
	if err != nil {
		return fmt.Errorf("inserting progress event: %w", err)
	}
	return nil
}

// Summary aggregates a user's scores per quiz key.
func (s *Postgres) Summary(ctx context.Context, userID string) (dialogue.ProgressSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT quiz_key, SUM(score)::int FROM progress_events WHERE user_id = $1 GROUP BY quiz_key`,
		userID,
	)
	if err != nil {
		return dialogue.ProgressSummary{}, fmt.Errorf("querying progress summary: %w", err)
	}
	defer rows.Close()

	sum := dialogue.ProgressSummary{Quizzes: make(map[string]int)}
	for rows.Next() {
		var key string
		var score int
		if err := rows.Scan(&key, &score); err != nil {
			return dialogue.ProgressSummary{}, fmt.Errorf("scanning progress row: %w", err)
		}
		sum.Quizzes[key] = score
		sum.TotalScore += score
	}
	if err := rows.Err(); err != nil {
		return dialogue.ProgressSummary{}, fmt.Errorf("reading progress rows: %w", err)
	}
	return sum, nil
}

// Append logs one grammar correction.
func (s *Postgres) Append(ctx context.Context, userID, original, corrected string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO corrections (user_id, original, corrected) VALUES ($1, $2, $3)`,
		userID, original, corrected,
	)
	if err != nil {
		return fmt.Errorf("inserting correction: %w", err)
	}
	return nil
}

// Recent returns the user's last n corrections in chronological order.
func (s *Postgres) Recent(ctx context.Context, userID string, n int) ([]dialogue.CorrectionEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT original, corrected, created_at FROM corrections
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		userID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("querying corrections: %w", err)
	}
	defer rows.Close()

	var entries []dialogue.CorrectionEntry
	for rows.Next() {
		var e dialogue.CorrectionEntry
		if err := rows.Scan(&e.Original, &e.Corrected, &e.At); err != nil {
			return nil, fmt.Errorf("scanning correction row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading correction rows: %w", err)
	}

	// Newest-first from the query; flip to chronological for display.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
