// Package scrape defines the scraper contract and the site-specific
// implementations that extract raw showtime listings from cinema websites.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrSourceUnavailable marks scrape failures caused by the site itself: a
// non-2xx response or a page whose structure no longer matches the scraper.
// The ingestion engine isolates these per source instead of aborting the run.
var ErrSourceUnavailable = errors.New("source unavailable")

// RawMovie is the as-scraped description of a movie. Year and poster URL are
// frequently absent; sites disagree about what they publish.
type RawMovie struct {
	Title     string
	PosterURL string
	Year      int // 0 when the site does not publish a year
}

// RawShowing is one scraped screening before reconciliation.
type RawShowing struct {
	Movie     RawMovie
	Hall      string
	StartsAt  time.Time
	DetailURL string
}

// Scraper extracts the raw showings for one calendar date.
type Scraper interface {
	Scrape(ctx context.Context, date time.Time) ([]RawShowing, error)
}

// Factory builds a scraper from the shared HTTP client and the per-theater
// options configured for it.
type Factory func(client *Client, options map[string]string) Scraper

var factories = map[string]Factory{
	"rusich":  newRusich,
	"sputnik": newSputnik,
	"kinobel": newKinobel,
}

// ForSource returns the scraper registered under the given source key.
func ForSource(source string, client *Client, options map[string]string) (Scraper, error) {
	factory, ok := factories[source]
	if !ok {
		return nil, fmt.Errorf("unknown scraper source %q (known: %v)", source, Sources())
	}
	return factory(client, options), nil
}

// Sources lists the registered source keys in stable order.
func Sources() []string {
	keys := make([]string, 0, len(factories))
	for key := range factories {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
