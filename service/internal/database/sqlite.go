// internal/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS game_results (
	id              TEXT PRIMARY KEY,
	game_id         TEXT NOT NULL,
	user_id         TEXT NOT NULL,
	won             INTEGER NOT NULL,
	score           INTEGER NOT NULL,
	moves           INTEGER NOT NULL,
	elapsed_seconds INTEGER NOT NULL,
	draw_count      INTEGER NOT NULL,
	finished_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS game_results_user_finished
	ON game_results (user_id, finished_at DESC);
`

// SQLiteStore persists results in an embedded SQLite database.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema. ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := path
	if path != ":memory:" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		dsn = path + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Every connection would get its own empty database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// SaveResult inserts r.
func (s *SQLiteStore) SaveResult(ctx context.Context, r Result) error {
	r, err := prepare(r)
	if err != nil {
		return err
	}
	won := 0
	if r.Won {
		won = 1
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO game_results (
		   id, game_id, user_id, won, score, moves, elapsed_seconds, draw_count, finished_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.GameID.String(), r.UserID.String(), won,
		r.Score, r.Moves, r.ElapsedSeconds, r.DrawCount, r.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// RecentResults returns userID's latest results, newest first.
func (s *SQLiteStore) RecentResults(ctx context.Context, userID uuid.UUID, limit int) ([]Result, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, game_id, user_id, won, score, moves, elapsed_seconds, draw_count, finished_at
		   FROM game_results
		  WHERE user_id = ?
		  ORDER BY finished_at DESC, id
		  LIMIT ?`,
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
			won                int
			finishedAt         int64
		)
		if err := rows.Scan(&id, &gameID, &userID, &won, &r.Score, &r.Moves, &r.ElapsedSeconds, &r.DrawCount, &finishedAt); err != nil {
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
		r.Won = won != 0
		r.FinishedAt = time.UnixMilli(finishedAt).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
