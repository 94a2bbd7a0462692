// Package showings persists reconciled screenings.
package showings

import (
	"context"
	"fmt"
	"time"

	"afisha/internal/storage"
)

// Showing is one screening of a register movie at a theater. The tuple
// (TheaterID, MovieID, Hall, StartsAt) is the natural key: repeated ingestion
// runs re-submit the same showings and the store must keep exactly one row.
type Showing struct {
	TheaterID int64
	MovieID   int64
	Hall      string
	StartsAt  time.Time
	DetailURL string
}

// Store writes showings with duplicate tolerance.
type Store struct {
	db *storage.DB
}

// NewStore wraps the shared database handle.
func NewStore(db *storage.DB) *Store {
	return &Store{db: db}
}

// BulkInsert writes each showing independently. A natural-key violation means
// the showing is already known and processing continues; any other error
// (missing movie or theater, connection loss) aborts the remaining batch.
// Returns how many rows were inserted and how many were already present.
func (s *Store) BulkInsert(ctx context.Context, items []Showing) (inserted, duplicates int, err error) {
	query := s.db.Rebind(`INSERT INTO showings (theater_id, movie_id, hall, starts_at, detail_url)
        VALUES (?, ?, ?, ?, ?)`)
	for _, showing := range items {
		_, execErr := s.db.SQL().ExecContext(ctx, query,
			showing.TheaterID,
			showing.MovieID,
			showing.Hall,
			formatStartsAt(showing.StartsAt),
			showing.DetailURL,
		)
		if execErr != nil {
			if s.db.IsNaturalKeyViolation(execErr) {
				duplicates++
				continue
			}
			return inserted, duplicates, fmt.Errorf("insert showing (theater=%d movie=%d): %w",
				showing.TheaterID, showing.MovieID, execErr)
		}
		inserted++
	}
	return inserted, duplicates, nil
}

// CountForDay reports how many showings start within the given calendar day.
func (s *Store) CountForDay(ctx context.Context, day time.Time) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	query := s.db.Rebind(`SELECT COUNT(1) FROM showings WHERE starts_at >= ? AND starts_at < ?`)
	var count int
	row := s.db.SQL().QueryRowContext(ctx, query, formatStartsAt(start), formatStartsAt(end))
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count showings: %w", err)
	}
	return count, nil
}

// Start times are stored canonically in UTC so the natural key compares the
// same instant identically across runs and backends.
func formatStartsAt(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
