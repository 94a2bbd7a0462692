package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"afisha/internal/storage"
)

// Store persists the local replica of the film register.
type Store struct {
	db *storage.DB
}

// NewStore wraps the shared database handle.
func NewStore(db *storage.DB) *Store {
	return &Store{db: db}
}

const movieColumns = "id, card_number, title, foreign_title, studio, production_year, director, script_author, composer, duration_minutes, duration_hours, age_category, age_limit, annotation, country, poster_path"

// GetByID fetches a register movie, or nil when the id is unknown.
func (s *Store) GetByID(ctx context.Context, id int64) (*Movie, error) {
	query := s.db.Rebind(`SELECT ` + movieColumns + ` FROM registry_movies WHERE id = ?`)
	row := s.db.SQL().QueryRowContext(ctx, query, id)
	movie, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return movie, nil
}

// Upsert writes a register snapshot batch in one transaction. Existing rows
// are fully replaced field by field, except poster_path: the poster cache is
// its only writer and a register refresh must not clear it.
func (s *Store) Upsert(ctx context.Context, movies []Movie) error {
	if len(movies) == 0 {
		return nil
	}

	tx, err := s.db.SQL().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	query := s.db.Rebind(`INSERT INTO registry_movies (` + movieColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET
            card_number = excluded.card_number,
            title = excluded.title,
            foreign_title = excluded.foreign_title,
            studio = excluded.studio,
            production_year = excluded.production_year,
            director = excluded.director,
            script_author = excluded.script_author,
            composer = excluded.composer,
            duration_minutes = excluded.duration_minutes,
            duration_hours = excluded.duration_hours,
            age_category = excluded.age_category,
            age_limit = excluded.age_limit,
            annotation = excluded.annotation,
            country = excluded.country`)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, movie := range movies {
		if _, err := stmt.ExecContext(ctx,
			movie.ID,
			movie.CardNumber,
			movie.Title,
			movie.ForeignTitle,
			movie.Studio,
			movie.ProductionYear,
			movie.Director,
			movie.ScriptAuthor,
			movie.Composer,
			movie.DurationMinutes,
			movie.DurationHours,
			movie.AgeCategory,
			movie.AgeLimit,
			movie.Annotation,
			movie.Country,
			movie.PosterPath,
		); err != nil {
			return fmt.Errorf("upsert movie %d: %w", movie.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Candidates returns (id, title) pairs for matching. A positive year filters
// to production years within the inclusive [year-1, year+1] window; the
// register stores years as free text, so the window is a string range and
// rows with unparsable year values simply fall outside it.
func (s *Store) Candidates(ctx context.Context, year int) ([]Candidate, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if year > 0 {
		query := s.db.Rebind(`SELECT id, title FROM registry_movies WHERE production_year BETWEEN ? AND ?`)
		rows, err = s.db.SQL().QueryContext(ctx, query, strconv.Itoa(year-1), strconv.Itoa(year+1))
	} else {
		rows, err = s.db.SQL().QueryContext(ctx, `SELECT id, title FROM registry_movies`)
	}
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// MaxID returns the watermark id for incremental register sync, zero when the
// replica is empty.
func (s *Store) MaxID(ctx context.Context) (int64, error) {
	var max sql.NullInt64
	row := s.db.SQL().QueryRowContext(ctx, `SELECT MAX(id) FROM registry_movies`)
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("max movie id: %w", err)
	}
	return max.Int64, nil
}

// SetPosterPath records the cached poster location for a movie. It is a
// narrow patch so the poster cache stays the field's single writer.
func (s *Store) SetPosterPath(ctx context.Context, id int64, path string) error {
	query := s.db.Rebind(`UPDATE registry_movies SET poster_path = ? WHERE id = ?`)
	res, err := s.db.SQL().ExecContext(ctx, query, path, id)
	if err != nil {
		return fmt.Errorf("set poster path: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set poster path: movie %d not found", id)
	}
	return nil
}

func scanMovie(scanner interface{ Scan(dest ...any) error }) (*Movie, error) {
	var (
		movie           Movie
		foreignTitle    sql.NullString
		studio          sql.NullString
		productionYear  sql.NullString
		director        sql.NullString
		scriptAuthor    sql.NullString
		composer        sql.NullString
		durationMinutes sql.NullInt64
		durationHours   sql.NullInt64
		ageCategory     sql.NullString
		ageLimit        sql.NullInt64
		annotation      sql.NullString
		country         sql.NullString
	)

	if err := scanner.Scan(
		&movie.ID,
		&movie.CardNumber,
		&movie.Title,
		&foreignTitle,
		&studio,
		&productionYear,
		&director,
		&scriptAuthor,
		&composer,
		&durationMinutes,
		&durationHours,
		&ageCategory,
		&ageLimit,
		&annotation,
		&country,
		&movie.PosterPath,
	); err != nil {
		return nil, err
	}

	movie.ForeignTitle = foreignTitle.String
	movie.Studio = studio.String
	movie.ProductionYear = productionYear.String
	movie.Director = director.String
	movie.ScriptAuthor = scriptAuthor.String
	movie.Composer = composer.String
	movie.DurationMinutes = int(durationMinutes.Int64)
	movie.DurationHours = int(durationHours.Int64)
	movie.AgeCategory = ageCategory.String
	movie.AgeLimit = int(ageLimit.Int64)
	movie.Annotation = annotation.String
	movie.Country = country.String
	return &movie, nil
}
