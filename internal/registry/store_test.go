package registry_test

import (
	"context"
	"testing"

	"afisha/internal/registry"
	"afisha/internal/testsupport"
)

func seedStore(t *testing.T) *registry.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenDB(t, cfg)
	return registry.NewStore(db)
}

func TestUpsertInsertsAndReplaces(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	movie := registry.Movie{ID: 42, CardNumber: "111000121", Title: "Матрица Воскрешение", ProductionYear: "2021", Director: "Лана Вачовски"}
	if err := store.Upsert(ctx, []registry.Movie{movie}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	movie.Director = "Lana Wachowski"
	movie.Studio = "Warner Bros."
	if err := store.Upsert(ctx, []registry.Movie{movie}); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, 42)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected movie to exist")
	}
	if fetched.Director != "Lana Wachowski" || fetched.Studio != "Warner Bros." {
		t.Fatalf("expected replaced fields, got %+v", fetched)
	}
}

func TestUpsertPreservesPosterPath(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	movie := registry.Movie{ID: 7, CardNumber: "c-7", Title: "Дюна", ProductionYear: "2021"}
	if err := store.Upsert(ctx, []registry.Movie{movie}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.SetPosterPath(ctx, 7, "posters/7.jpg"); err != nil {
		t.Fatalf("SetPosterPath failed: %v", err)
	}

	// A register refresh re-submits the row without a poster path.
	if err := store.Upsert(ctx, []registry.Movie{movie}); err != nil {
		t.Fatalf("refresh Upsert failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, 7)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.PosterPath != "posters/7.jpg" {
		t.Fatalf("expected poster path preserved, got %q", fetched.PosterPath)
	}
}

func TestSetPosterPathUnknownMovie(t *testing.T) {
	store := seedStore(t)
	if err := store.SetPosterPath(context.Background(), 999, "posters/999.jpg"); err == nil {
		t.Fatal("expected error for unknown movie id")
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	store := seedStore(t)
	movie, err := store.GetByID(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if movie != nil {
		t.Fatalf("expected nil for missing movie, got %+v", movie)
	}
}

func TestCandidatesYearWindowInclusive(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	movies := []registry.Movie{
		{ID: 1, CardNumber: "c-1", Title: "Фильм 2019", ProductionYear: "2019"},
		{ID: 2, CardNumber: "c-2", Title: "Фильм 2020", ProductionYear: "2020"},
		{ID: 3, CardNumber: "c-3", Title: "Фильм 2021", ProductionYear: "2021"},
		{ID: 4, CardNumber: "c-4", Title: "Фильм 2022", ProductionYear: "2022"},
		{ID: 5, CardNumber: "c-5", Title: "Фильм 2023", ProductionYear: "2023"},
		{ID: 6, CardNumber: "c-6", Title: "Фильм без года", ProductionYear: ""},
		{ID: 7, CardNumber: "c-7", Title: "Фильм странный", ProductionYear: "конец 90-х"},
	}
	if err := store.Upsert(ctx, movies); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	candidates, err := store.Candidates(ctx, 2021)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	got := make(map[int64]bool, len(candidates))
	for _, c := range candidates {
		got[c.ID] = true
	}
	for _, want := range []int64{2, 3, 4} {
		if !got[want] {
			t.Fatalf("expected id %d in window, got %v", want, candidates)
		}
	}
	for _, exclude := range []int64{1, 5, 6} {
		if got[exclude] {
			t.Fatalf("expected id %d outside window, got %v", exclude, candidates)
		}
	}
}

func TestCandidatesWithoutYearReturnsAll(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	movies := []registry.Movie{
		{ID: 1, CardNumber: "c-1", Title: "А", ProductionYear: "1999"},
		{ID: 2, CardNumber: "c-2", Title: "Б", ProductionYear: ""},
	}
	if err := store.Upsert(ctx, movies); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	candidates, err := store.Candidates(ctx, 0)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected all rows without year filter, got %d", len(candidates))
	}
}

func TestMaxID(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	max, err := store.MaxID(ctx)
	if err != nil {
		t.Fatalf("MaxID on empty store failed: %v", err)
	}
	if max != 0 {
		t.Fatalf("expected zero watermark on empty store, got %d", max)
	}

	movies := []registry.Movie{
		{ID: 10, CardNumber: "c-10", Title: "А"},
		{ID: 300, CardNumber: "c-300", Title: "Б"},
	}
	if err := store.Upsert(ctx, movies); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	max, err = store.MaxID(ctx)
	if err != nil {
		t.Fatalf("MaxID failed: %v", err)
	}
	if max != 300 {
		t.Fatalf("expected watermark 300, got %d", max)
	}
}
