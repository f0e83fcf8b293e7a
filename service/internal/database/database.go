// internal/database/database.go
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultResultLimit and MaxResultLimit bound RecentResults.
const (
	DefaultResultLimit = 20
	MaxResultLimit     = 100
)

// ErrNoDatabase is returned by Open for an empty URL.
var ErrNoDatabase = errors.New("no database configured")

// Result is the record of one finished game: won, or abandoned after at
// least one move.
type Result struct {
	ID             uuid.UUID `json:"id"`
	GameID         uuid.UUID `json:"gameId"`
	UserID         uuid.UUID `json:"userId"`
	Won            bool      `json:"won"`
	Score          int32     `json:"score"`
	Moves          uint32    `json:"moves"`
	ElapsedSeconds int64     `json:"elapsedSeconds"`
	DrawCount      uint8     `json:"drawCount"`
	FinishedAt     time.Time `json:"finishedAt"`
}

// Store persists game results.
type Store interface {
	SaveResult(ctx context.Context, r Result) error
	RecentResults(ctx context.Context, userID uuid.UUID, limit int) ([]Result, error)
	Close() error
}

// Open picks a backend from the URL scheme: postgres:// or postgresql://
// use pgx, sqlite://path or file: URLs use the embedded SQLite driver.
func Open(ctx context.Context, url string) (Store, error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return nil, ErrNoDatabase
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return OpenPostgres(ctx, url)
	case strings.HasPrefix(url, "sqlite://"):
		return OpenSQLite(strings.TrimPrefix(url, "sqlite://"))
	case strings.HasPrefix(url, "file:"):
		return OpenSQLite(url)
	}
	return nil, fmt.Errorf("unsupported database url %q", url)
}

// prepare fills in defaults and validates r before it is written.
func prepare(r Result) (Result, error) {
	if r.GameID == uuid.Nil {
		return Result{}, fmt.Errorf("game id is required")
	}
	if r.UserID == uuid.Nil {
		return Result{}, fmt.Errorf("user id is required")
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	r.FinishedAt = r.FinishedAt.UTC()
	return r, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultResultLimit
	case limit > MaxResultLimit:
		return MaxResultLimit
	}
	return limit
}
