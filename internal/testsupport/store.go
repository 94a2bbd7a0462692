package testsupport

import (
	"context"
	"testing"

	"afisha/internal/config"
	"afisha/internal/registry"
	"afisha/internal/storage"
	"afisha/internal/theaters"
)

// MustOpenDB opens the storage handle for tests and registers cleanup.
func MustOpenDB(t testing.TB, cfg *config.Config) *storage.DB {
	t.Helper()

	db, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// SeedMovies upserts register movies for tests.
func SeedMovies(t testing.TB, db *storage.DB, movies ...registry.Movie) {
	t.Helper()

	store := registry.NewStore(db)
	if err := store.Upsert(context.Background(), movies); err != nil {
		t.Fatalf("seed movies: %v", err)
	}
}

// SeedTheater upserts one theater row for tests.
func SeedTheater(t testing.TB, db *storage.DB, theater theaters.Theater) {
	t.Helper()

	store := theaters.NewStore(db)
	if err := store.Ensure(context.Background(), []theaters.Theater{theater}); err != nil {
		t.Fatalf("seed theater: %v", err)
	}
}
