// Package registrysync replicates the state film register into the local
// database through the culture ministry's open data API. Sync is incremental:
// only records above the locally known id watermark are pulled.
package registrysync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"afisha/internal/config"
	"afisha/internal/registry"
)

// Client talks to the register open data API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
}

// NewClient builds an API client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RegistrySync.TimeoutSeconds) * time.Second,
		},
		baseURL:   strings.TrimRight(cfg.RegistrySync.BaseURL, "/"),
		apiKey:    cfg.RegistrySync.APIKey,
		userAgent: cfg.Scraping.UserAgent,
	}
}

// apiGeneral is the register record shape under data[].data.general.
type apiGeneral struct {
	ID                  int64  `json:"id"`
	CardNumber          string `json:"cardNumber"`
	Filmname            string `json:"filmname"`
	ForeignName         string `json:"foreignName"`
	Studio              string `json:"studio"`
	CrYearOfProduction  string `json:"crYearOfProduction"`
	Director            string `json:"director"`
	ScriptAuthor        string `json:"scriptAuthor"`
	Composer            string `json:"composer"`
	DurationMinute      int    `json:"durationMinute"`
	DurationHour        int    `json:"durationHour"`
	AgeCategory         string `json:"ageCategory"`
	AgeLimit            int    `json:"ageLimit"`
	Annotation          string `json:"annotation"`
	CountryOfProduction string `json:"countryOfProduction"`
}

type apiResponse struct {
	Data []struct {
		Data struct {
			General apiGeneral `json:"general"`
		} `json:"data"`
	} `json:"data"`
}

// MoviesSince fetches one page of register records whose id is at least
// afterID. The API caps page size server-side; callers page by advancing the
// watermark until a fetch comes back empty.
func (c *Client) MoviesSince(ctx context.Context, afterID int64) ([]registry.Movie, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("registry sync: api key not configured")
	}

	target, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", c.baseURL, err)
	}
	filter := fmt.Sprintf(`{"nativeId":{"$gte":%d}}`, afterID)
	target.RawQuery = "f=" + url.QueryEscape(filter)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch register page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("register api returned status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode register page: %w", err)
	}

	movies := make([]registry.Movie, 0, len(payload.Data))
	for _, record := range payload.Data {
		general := record.Data.General
		if general.ID == 0 {
			continue
		}
		movies = append(movies, registry.Movie{
			ID:              general.ID,
			CardNumber:      strings.TrimSpace(general.CardNumber),
			Title:           strings.TrimSpace(general.Filmname),
			ForeignTitle:    strings.TrimSpace(general.ForeignName),
			Studio:          strings.TrimSpace(general.Studio),
			ProductionYear:  strings.TrimSpace(general.CrYearOfProduction),
			Director:        strings.TrimSpace(general.Director),
			ScriptAuthor:    strings.TrimSpace(general.ScriptAuthor),
			Composer:        strings.TrimSpace(general.Composer),
			DurationMinutes: general.DurationMinute,
			DurationHours:   general.DurationHour,
			AgeCategory:     strings.TrimSpace(general.AgeCategory),
			AgeLimit:        general.AgeLimit,
			Annotation:      strings.TrimSpace(general.Annotation),
			Country:         strings.TrimSpace(general.CountryOfProduction),
		})
	}
	return movies, nil
}

// Syncer drives incremental replication into the register store.
type Syncer struct {
	client *Client
	store  *registry.Store
	logger *slog.Logger
}

// NewSyncer wires the API client to the register store.
func NewSyncer(client *Client, store *registry.Store, logger *slog.Logger) *Syncer {
	return &Syncer{client: client, store: store, logger: logger}
}

// Sync pulls every register record above the local watermark and upserts it.
// Returns how many records were written. A partial sync is not rolled back;
// the next run resumes from the new watermark.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	watermark, err := s.store.MaxID(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for {
		page, err := s.client.MoviesSince(ctx, watermark+1)
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			s.logger.Info("register sync complete", "added", total, "watermark", watermark)
			return total, nil
		}

		if err := s.store.Upsert(ctx, page); err != nil {
			return total, err
		}
		total += len(page)

		newWatermark := watermark
		for _, movie := range page {
			if movie.ID > newWatermark {
				newWatermark = movie.ID
			}
		}
		if newWatermark <= watermark {
			return total, nil
		}
		watermark = newWatermark
		s.logger.Debug("register page synced", "records", len(page), "watermark", watermark)
	}
}
