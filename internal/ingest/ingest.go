// Package ingest orchestrates one ingestion run: scrape the configured
// theaters in parallel, reconcile every scraped title against the film
// register, cache posters, and persist the showings idempotently.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"afisha/internal/config"
	"afisha/internal/posters"
	"afisha/internal/registry"
	"afisha/internal/scrape"
	"afisha/internal/showings"
	"afisha/internal/storage"
	"afisha/internal/theaters"
)

// PosterCache is the slice of the poster cache the engine drives.
type PosterCache interface {
	Ensure(ctx context.Context, movieID int64, candidateURL string) (posters.Result, error)
}

// ScraperFactory resolves a source key and per-theater options to a scraper.
type ScraperFactory func(source string, options map[string]string) (scrape.Scraper, error)

// Engine runs ingestion against the shared stores.
type Engine struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *registry.Store
	theaters   *theaters.Store
	showings   *showings.Store
	posters    PosterCache
	scraperFor ScraperFactory
	workers    int
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithScraperFactory replaces how scrapers are resolved.
func WithScraperFactory(factory ScraperFactory) Option {
	return func(e *Engine) { e.scraperFor = factory }
}

// WithPosterCache replaces the poster cache.
func WithPosterCache(cache PosterCache) Option {
	return func(e *Engine) { e.posters = cache }
}

// New builds an engine over the shared database handle.
func New(cfg *config.Config, db *storage.DB, logger *slog.Logger, opts ...Option) *Engine {
	client := scrape.NewClient(cfg)
	registryStore := registry.NewStore(db)

	e := &Engine{
		cfg:      cfg,
		logger:   logger,
		registry: registryStore,
		theaters: theaters.NewStore(db),
		showings: showings.NewStore(db),
		posters:  posters.NewCache(cfg, registryStore, logger),
		scraperFor: func(source string, options map[string]string) (scrape.Scraper, error) {
			return scrape.ForSource(source, client, options)
		},
		workers: cfg.Scraping.Workers,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e
}

// SourceReport summarizes one theater's scrape within a run.
type SourceReport struct {
	TheaterID   int64
	TheaterName string
	Source      string
	Showings    int
	Err         error
}

// Report summarizes a completed ingestion run.
type Report struct {
	RunID          uuid.UUID
	Date           time.Time
	Sources        []SourceReport
	MoviesMatched  int
	PostersFetched int
	Inserted       int
	Duplicates     int
}

// MatchFailure records one scraped title the register could not resolve.
type MatchFailure struct {
	TheaterName  string
	Title        string
	Year         int
	Kind         registry.MatchKind
	CandidateIDs []int64
}

// ReconciliationError aborts a run whose titles did not all resolve uniquely.
// No showing is written when it is returned; the operator extends the local
// register (or fixes the scrape) and reruns.
type ReconciliationError struct {
	Failures []MatchFailure
}

func (e *ReconciliationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "reconciliation failed for %d title(s):", len(e.Failures))
	for _, f := range e.Failures {
		switch f.Kind {
		case registry.MatchAmbiguous:
			fmt.Fprintf(&b, " %q (%s) ambiguous between register ids %v;", f.Title, f.TheaterName, f.CandidateIDs)
		default:
			fmt.Fprintf(&b, " %q (%s) not in register;", f.Title, f.TheaterName)
		}
	}
	return strings.TrimSuffix(b.String(), ";")
}

// movieKey memoizes reconciliation per scraped identity. The same title with
// different years is matched separately because the year narrows candidates.
type movieKey struct {
	title string
	year  int
}

// Run ingests one calendar date. An empty sources slice means every
// configured theater; otherwise only theaters whose source key is listed.
// Scrape failures are isolated per source, but a single unresolved title
// fails the whole run before any showing is written.
func (e *Engine) Run(ctx context.Context, date time.Time, sources []string) (*Report, error) {
	runID := uuid.New()
	logger := e.logger.With("run_id", runID.String(), "date", date.Format("2006-01-02"))

	selected := filterTheaters(theaters.FromConfig(e.cfg), sources)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no configured theater matches sources %v", sources)
	}

	if err := e.theaters.Ensure(ctx, selected); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:   runID,
		Date:    date,
		Sources: make([]SourceReport, len(selected)),
	}

	scraped := make([][]scrape.RawShowing, len(selected))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.workers)
	for i, theater := range selected {
		i, theater := i, theater
		group.Go(func() error {
			sr := SourceReport{
				TheaterID:   theater.ID,
				TheaterName: theater.Name,
				Source:      theater.Source,
			}
			defer func() { report.Sources[i] = sr }()

			scraper, err := e.scraperFor(theater.Source, theater.Options)
			if err != nil {
				sr.Err = err
				return nil
			}
			raw, err := scraper.Scrape(groupCtx, date)
			if err != nil {
				logger.Warn("scrape failed",
					"theater", theater.Name,
					"source", theater.Source,
					"error", err)
				sr.Err = err
				return nil
			}
			sr.Showings = len(raw)
			scraped[i] = raw
			logger.Info("scraped",
				"theater", theater.Name,
				"source", theater.Source,
				"showings", len(raw))
			return nil
		})
	}
	_ = group.Wait()

	resolved, posterFor, err := e.reconcile(ctx, selected, scraped)
	if err != nil {
		return nil, err
	}

	movieIDs := make([]int64, 0, len(posterFor))
	seen := make(map[int64]bool)
	for _, id := range resolved {
		if !seen[id] {
			seen[id] = true
			movieIDs = append(movieIDs, id)
		}
	}
	sort.Slice(movieIDs, func(i, j int) bool { return movieIDs[i] < movieIDs[j] })
	report.MoviesMatched = len(movieIDs)

	for _, id := range movieIDs {
		result, err := e.posters.Ensure(ctx, id, posterFor[id])
		if err != nil {
			return nil, err
		}
		if result.Outcome == posters.OutcomeFetched {
			report.PostersFetched++
		}
	}

	var batch []showings.Showing
	for i, theater := range selected {
		for _, raw := range scraped[i] {
			batch = append(batch, showings.Showing{
				TheaterID: theater.ID,
				MovieID:   resolved[movieKey{raw.Movie.Title, raw.Movie.Year}],
				Hall:      raw.Hall,
				StartsAt:  raw.StartsAt,
				DetailURL: raw.DetailURL,
			})
		}
	}
	report.Inserted, report.Duplicates, err = e.showings.BulkInsert(ctx, batch)
	if err != nil {
		return nil, err
	}

	logger.Info("ingestion complete",
		"movies", report.MoviesMatched,
		"inserted", report.Inserted,
		"duplicates", report.Duplicates,
		"posters_fetched", report.PostersFetched)
	return report, nil
}

// reconcile resolves every scraped movie to a register id, memoizing by
// (title, year). All failures are collected so the operator sees the full
// list at once.
func (e *Engine) reconcile(
	ctx context.Context,
	selected []theaters.Theater,
	scraped [][]scrape.RawShowing,
) (map[movieKey]int64, map[int64]string, error) {
	resolved := make(map[movieKey]int64)
	failed := make(map[movieKey]bool)
	posterFor := make(map[int64]string)
	candidatesByYear := make(map[int][]registry.Candidate)
	var failures []MatchFailure

	for i, theater := range selected {
		for _, raw := range scraped[i] {
			key := movieKey{raw.Movie.Title, raw.Movie.Year}
			if failed[key] {
				continue
			}
			if id, ok := resolved[key]; ok {
				if posterFor[id] == "" && raw.Movie.PosterURL != "" {
					posterFor[id] = raw.Movie.PosterURL
				}
				continue
			}

			candidates, ok := candidatesByYear[raw.Movie.Year]
			if !ok {
				var err error
				candidates, err = e.registry.Candidates(ctx, raw.Movie.Year)
				if err != nil {
					return nil, nil, err
				}
				candidatesByYear[raw.Movie.Year] = candidates
			}

			result := registry.Match(raw.Movie.Title, candidates)
			if result.Kind != registry.MatchUnique {
				failed[key] = true
				failures = append(failures, MatchFailure{
					TheaterName:  theater.Name,
					Title:        raw.Movie.Title,
					Year:         raw.Movie.Year,
					Kind:         result.Kind,
					CandidateIDs: result.IDs,
				})
				continue
			}

			resolved[key] = result.ID
			if posterFor[result.ID] == "" && raw.Movie.PosterURL != "" {
				posterFor[result.ID] = raw.Movie.PosterURL
			}
		}
	}

	if len(failures) > 0 {
		return nil, nil, &ReconciliationError{Failures: failures}
	}
	return resolved, posterFor, nil
}

func filterTheaters(all []theaters.Theater, sources []string) []theaters.Theater {
	if len(sources) == 0 {
		return all
	}
	wanted := make(map[string]bool, len(sources))
	for _, source := range sources {
		wanted[strings.ToLower(strings.TrimSpace(source))] = true
	}
	var out []theaters.Theater
	for _, theater := range all {
		if wanted[theater.Source] {
			out = append(out, theater)
		}
	}
	return out
}
