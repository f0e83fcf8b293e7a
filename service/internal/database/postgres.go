// internal/database/postgres.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS game_results (
	id              UUID PRIMARY KEY,
	game_id         UUID NOT NULL,
	user_id         UUID NOT NULL,
	won             BOOLEAN NOT NULL,
	score           INTEGER NOT NULL,
	moves           INTEGER NOT NULL,
	elapsed_seconds BIGINT NOT NULL,
	draw_count      SMALLINT NOT NULL,
	finished_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS game_results_user_finished
	ON game_results (user_id, finished_at DESC);
`

// PostgresStore persists results in PostgreSQL through a pgx pool.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// OpenPostgres connects to url, verifies the connection and applies the
// schema.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{Pool: pool}, nil
}

// SaveResult inserts r.
func (s *PostgresStore) SaveResult(ctx context.Context, r Result) error {
	r, err := prepare(r)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO game_results (
		   id, game_id, user_id, won, score, moves, elapsed_seconds, draw_count, finished_at
		 ) VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6, $7, $8, $9)`,
		r.ID.String(), r.GameID.String(), r.UserID.String(), r.Won,
		r.Score, int64(r.Moves), r.ElapsedSeconds, int16(r.DrawCount), r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// RecentResults returns userID's latest results, newest first.
func (s *PostgresStore) RecentResults(ctx context.Context, userID uuid.UUID, limit int) ([]Result, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id::text, game_id::text, user_id::text, won, score, moves, elapsed_seconds, draw_count, finished_at
		   FROM game_results
		  WHERE user_id = $1::uuid
		  ORDER BY finished_at DESC, id
		  LIMIT $2`,
		userID.String(), clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var (
			r                  Result
			id, gameID, userID string
			moves              int32
			drawCount          int16
		)
		if err := rows.Scan(&id, &gameID, &userID, &r.Won, &r.Score, &moves, &r.ElapsedSeconds, &drawCount, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("result id: %w", err)
		}
		if r.GameID, err = uuid.Parse(gameID); err != nil {
			return nil, fmt.Errorf("result game id: %w", err)
		}
		if r.UserID, err = uuid.Parse(userID); err != nil {
			return nil, fmt.Errorf("result user id: %w", err)
		}
		r.Moves = uint32(moves)
		r.DrawCount = uint8(drawCount)
		r.FinishedAt = r.FinishedAt.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.Pool.Close()
	return nil
}
