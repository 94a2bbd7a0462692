// Package theaters persists the cinemas whose showtimes are ingested.
package theaters

import (
	"context"
	"fmt"

	"afisha/internal/config"
	"afisha/internal/storage"
)

// Theater identifies one cinema and the scraper source that produces its
// showings.
type Theater struct {
	ID      int64
	Name    string
	City    string
	Address string
	Source  string
	Options map[string]string
}

// FromConfig maps configured theaters into domain values.
func FromConfig(cfg *config.Config) []Theater {
	out := make([]Theater, 0, len(cfg.Theaters))
	for _, tc := range cfg.Theaters {
		out = append(out, Theater{
			ID:      tc.ID,
			Name:    tc.Name,
			City:    tc.City,
			Address: tc.Address,
			Source:  tc.Source,
			Options: tc.Options,
		})
	}
	return out
}

// Store persists theater rows so showings can reference them.
type Store struct {
	db *storage.DB
}

// NewStore wraps the shared database handle.
func NewStore(db *storage.DB) *Store {
	return &Store{db: db}
}

// Ensure upserts the configured theaters before an ingestion run.
func (s *Store) Ensure(ctx context.Context, items []Theater) error {
	if len(items) == 0 {
		return nil
	}
	query := s.db.Rebind(`INSERT INTO theaters (id, name, city, address, source)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET
            name = excluded.name,
            city = excluded.city,
            address = excluded.address,
            source = excluded.source`)
	for _, theater := range items {
		if _, err := s.db.SQL().ExecContext(ctx, query,
			theater.ID, theater.Name, theater.City, theater.Address, theater.Source,
		); err != nil {
			return fmt.Errorf("upsert theater %d: %w", theater.ID, err)
		}
	}
	return nil
}

// ByCity returns theaters located in the given city.
func (s *Store) ByCity(ctx context.Context, city string) ([]Theater, error) {
	query := s.db.Rebind(`SELECT id, name, city, address, source FROM theaters WHERE city = ? ORDER BY id`)
	rows, err := s.db.SQL().QueryContext(ctx, query, city)
	if err != nil {
		return nil, fmt.Errorf("query theaters: %w", err)
	}
	defer rows.Close()

	var out []Theater
	for rows.Next() {
		var theater Theater
		if err := rows.Scan(&theater.ID, &theater.Name, &theater.City, &theater.Address, &theater.Source); err != nil {
			return nil, fmt.Errorf("scan theater: %w", err)
		}
		out = append(out, theater)
	}
	return out, rows.Err()
}
