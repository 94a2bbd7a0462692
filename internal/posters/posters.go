// Package posters caches register movie posters on disk. Each movie gets at
// most one poster for its lifetime: once a file is cached and recorded, later
// runs never refetch it, whatever URL the sites advertise next.
package posters

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"afisha/internal/config"
	"afisha/internal/registry"
)

// Outcome describes what Ensure did for one movie.
type Outcome int

const (
	// OutcomeAlreadyCached means a poster was recorded in an earlier run.
	OutcomeAlreadyCached Outcome = iota
	// OutcomeFetched means the poster was downloaded and recorded now.
	OutcomeFetched
	// OutcomeSkippedNoSource means no site offered a poster URL.
	OutcomeSkippedNoSource
	// OutcomeFetchFailed means the download failed; a later run may retry.
	OutcomeFetchFailed
)

// Result reports the outcome of a cache attempt. Path is relative to the
// media root and is set for the cached outcomes.
type Result struct {
	Outcome Outcome
	Path    string
}

// movieStore is the slice of the register store the cache needs.
type movieStore interface {
	GetByID(ctx context.Context, id int64) (*registry.Movie, error)
	SetPosterPath(ctx context.Context, id int64, path string) error
}

// Cache downloads posters into the configured directory and records their
// relative paths on the register rows.
type Cache struct {
	store      movieStore
	httpClient *http.Client
	userAgent  string
	mediaRoot  string
	postersDir string
	logger     *slog.Logger
}

// NewCache builds a poster cache from configuration.
func NewCache(cfg *config.Config, store movieStore, logger *slog.Logger) *Cache {
	return &Cache{
		store: store,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Scraping.TimeoutSeconds) * time.Second,
		},
		userAgent:  cfg.Scraping.UserAgent,
		mediaRoot:  cfg.Paths.MediaRoot,
		postersDir: cfg.Paths.PostersDir,
		logger:     logger,
	}
}

// Ensure guarantees the movie has a poster on disk if one can be had. The
// candidate URL is only consulted when the movie has no recorded poster yet.
// Download failures are reported as an outcome, not an error, so a flaky
// image host cannot abort ingestion.
func (c *Cache) Ensure(ctx context.Context, movieID int64, candidateURL string) (Result, error) {
	movie, err := c.store.GetByID(ctx, movieID)
	if err != nil {
		return Result{}, err
	}
	if movie == nil {
		return Result{}, fmt.Errorf("poster cache: movie %d not in register", movieID)
	}
	if movie.PosterPath != "" {
		return Result{Outcome: OutcomeAlreadyCached, Path: movie.PosterPath}, nil
	}
	if candidateURL == "" {
		return Result{Outcome: OutcomeSkippedNoSource}, nil
	}

	data, err := c.fetch(ctx, candidateURL)
	if err != nil {
		c.logger.Warn("poster fetch failed",
			"movie_id", movieID,
			"url", candidateURL,
			"error", err)
		return Result{Outcome: OutcomeFetchFailed}, nil
	}

	name := strconv.FormatInt(movieID, 10) + extensionFor(candidateURL)
	target := filepath.Join(c.mediaRoot, c.postersDir, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("write poster %s: %w", target, err)
	}

	relative := path.Join(c.postersDir, name)
	if err := c.store.SetPosterPath(ctx, movieID, relative); err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeFetched, Path: relative}, nil
}

func (c *Cache) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	return data, nil
}

// extensionFor derives the file extension from the URL path, defaulting to
// .jpg for extensionless or query-only poster links.
func extensionFor(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	}
	return ".jpg"
}
