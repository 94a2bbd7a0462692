package registrysync_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"afisha/internal/registry"
	"afisha/internal/registrysync"
	"afisha/internal/testsupport"
)

func pageJSON(ids ...int64) string {
	var records []string
	for _, id := range ids {
		records = append(records, fmt.Sprintf(`{
			"data": {
				"general": {
					"id": %d,
					"cardNumber": "11100000%d",
					"filmname": "Фильм %d",
					"crYearOfProduction": "2021",
					"director": " Режиссер %d ",
					"durationMinute": 97,
					"ageLimit": 12
				}
			}
		}`, id, id, id, id))
	}
	return `{"data":[` + strings.Join(records, ",") + `]}`
}

func TestSyncPagesFromWatermark(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenDB(t, cfg)
	testsupport.SeedMovies(t, db, registry.Movie{ID: 10, CardNumber: "111000010", Title: "Старый Фильм"})

	var filters []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "secret" {
			http.Error(w, "missing key", http.StatusUnauthorized)
			return
		}
		filter := r.URL.Query().Get("f")
		filters = append(filters, filter)
		switch filter {
		case `{"nativeId":{"$gte":11}}`:
			_, _ = io.WriteString(w, pageJSON(11, 12))
		case `{"nativeId":{"$gte":13}}`:
			_, _ = io.WriteString(w, pageJSON(13))
		default:
			_, _ = io.WriteString(w, `{"data":[]}`)
		}
	}))
	t.Cleanup(server.Close)

	cfg.RegistrySync.BaseURL = server.URL
	cfg.RegistrySync.APIKey = "secret"

	store := registry.NewStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	syncer := registrysync.NewSyncer(registrysync.NewClient(cfg), store, logger)

	added, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if added != 3 {
		t.Fatalf("expected 3 records added, got %d", added)
	}
	if len(filters) != 3 {
		t.Fatalf("expected 3 api calls, got %d: %v", len(filters), filters)
	}

	movie, err := store.GetByID(context.Background(), 12)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if movie == nil || movie.Title != "Фильм 12" {
		t.Fatalf("synced movie missing or wrong: %+v", movie)
	}
	if movie.Director != "Режиссер 12" {
		t.Fatalf("api fields not trimmed: %q", movie.Director)
	}
	if movie.DurationMinutes != 97 || movie.AgeLimit != 12 {
		t.Fatalf("numeric fields lost: %+v", movie)
	}

	max, err := store.MaxID(context.Background())
	if err != nil {
		t.Fatalf("MaxID failed: %v", err)
	}
	if max != 13 {
		t.Fatalf("expected watermark 13, got %d", max)
	}

	// A second sync starts above the new watermark and finds nothing.
	added, err = syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}
	if added != 0 {
		t.Fatalf("expected idle sync, got %d records", added)
	}
}

func TestSyncRequiresAPIKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenDB(t, cfg)
	cfg.RegistrySync.APIKey = ""

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	syncer := registrysync.NewSyncer(registrysync.NewClient(cfg), registry.NewStore(db), logger)

	if _, err := syncer.Sync(context.Background()); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestSyncSurfacesAPIError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db := testsupport.MustOpenDB(t, cfg)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)
	cfg.RegistrySync.BaseURL = server.URL
	cfg.RegistrySync.APIKey = "wrong"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	syncer := registrysync.NewSyncer(registrysync.NewClient(cfg), registry.NewStore(db), logger)

	_, err := syncer.Sync(context.Background())
	if err == nil || !strings.Contains(err.Error(), "status 403") {
		t.Fatalf("expected status error, got %v", err)
	}
}
