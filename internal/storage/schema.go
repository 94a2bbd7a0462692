package storage

import (
	"context"
	"fmt"
)

// NaturalKeyConstraint names the unique constraint that deduplicates showings.
// Postgres reports it back on conflict, which is how duplicate inserts are
// told apart from real persistence failures.
const NaturalKeyConstraint = "showing_natural_key"

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS registry_movies (
        id INTEGER PRIMARY KEY,
        card_number TEXT NOT NULL,
        title TEXT NOT NULL,
        foreign_title TEXT,
        studio TEXT,
        production_year TEXT,
        director TEXT,
        script_author TEXT,
        composer TEXT,
        duration_minutes INTEGER,
        duration_hours INTEGER,
        age_category TEXT,
        age_limit INTEGER,
        annotation TEXT,
        country TEXT,
        poster_path TEXT NOT NULL DEFAULT ''
    )`,
	`CREATE INDEX IF NOT EXISTS registry_movies_title_idx ON registry_movies (title)`,
	`CREATE INDEX IF NOT EXISTS registry_movies_year_idx ON registry_movies (production_year)`,
	`CREATE TABLE IF NOT EXISTS theaters (
        id INTEGER PRIMARY KEY,
        name TEXT NOT NULL,
        city TEXT,
        address TEXT,
        source TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS showings (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        theater_id INTEGER NOT NULL REFERENCES theaters (id) ON DELETE CASCADE,
        movie_id INTEGER NOT NULL REFERENCES registry_movies (id) ON DELETE CASCADE,
        hall TEXT NOT NULL DEFAULT '',
        starts_at TEXT NOT NULL,
        detail_url TEXT,
        CONSTRAINT showing_natural_key UNIQUE (theater_id, movie_id, hall, starts_at)
    )`,
	`CREATE INDEX IF NOT EXISTS showings_starts_at_idx ON showings (starts_at DESC)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS registry_movies (
        id INTEGER PRIMARY KEY,
        card_number VARCHAR NOT NULL,
        title VARCHAR NOT NULL,
        foreign_title VARCHAR,
        studio VARCHAR,
        production_year VARCHAR,
        director VARCHAR,
        script_author VARCHAR,
        composer VARCHAR,
        duration_minutes INTEGER,
        duration_hours INTEGER,
        age_category VARCHAR,
        age_limit INTEGER,
        annotation TEXT,
        country VARCHAR,
        poster_path VARCHAR NOT NULL DEFAULT ''
    )`,
	`CREATE INDEX IF NOT EXISTS registry_movies_title_idx ON registry_movies (title)`,
	`CREATE INDEX IF NOT EXISTS registry_movies_year_idx ON registry_movies (production_year)`,
	`CREATE TABLE IF NOT EXISTS theaters (
        id INTEGER PRIMARY KEY,
        name VARCHAR NOT NULL,
        city VARCHAR,
        address VARCHAR,
        source VARCHAR NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS showings (
        id SERIAL PRIMARY KEY,
        theater_id INTEGER NOT NULL REFERENCES theaters (id) ON DELETE CASCADE,
        movie_id INTEGER NOT NULL REFERENCES registry_movies (id) ON DELETE CASCADE,
        hall VARCHAR NOT NULL DEFAULT '',
        starts_at TIMESTAMP NOT NULL,
        detail_url VARCHAR,
        CONSTRAINT showing_natural_key UNIQUE (theater_id, movie_id, hall, starts_at)
    )`,
	`CREATE INDEX IF NOT EXISTS showings_starts_at_idx ON showings (starts_at DESC)`,
}

func (d *DB) applySchema(ctx context.Context) error {
	statements := sqliteSchema
	if d.dialect == DialectPostgres {
		statements = postgresSchema
	}
	for _, stmt := range statements {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
