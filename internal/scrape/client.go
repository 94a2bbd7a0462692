package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"afisha/internal/config"
)

// Client fetches and parses cinema pages on behalf of every scraper. Sites
// reject obviously non-browser requests, so it sends browser-shaped headers.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient builds the shared scraping client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Scraping.TimeoutSeconds) * time.Second,
		},
		userAgent: cfg.Scraping.UserAgent,
	}
}

// Document GETs rawURL with optional query parameters and parses the body.
// Transport errors and non-2xx responses are tagged ErrSourceUnavailable.
func (c *Client) Document(ctx context.Context, rawURL string, params url.Values) (*goquery.Document, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if params != nil {
		target.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrSourceUnavailable, target.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrSourceUnavailable, target.Host, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrSourceUnavailable, target.Host, err)
	}
	return doc, nil
}
