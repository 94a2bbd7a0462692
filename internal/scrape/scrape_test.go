package scrape_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"afisha/internal/config"
	"afisha/internal/scrape"
)

const rusichFixture = `<!DOCTYPE html>
<html><body>
<article class="movie-info-item">
  <div class="movie-info-img"><img src="/media/posters/matrix.jpg"></div>
  <a class="movie-info-name" href="matrica-voskreshenie">Матрица: Воскрешение</a>
  <div><span class="movie-info-label">Год</span> – 2021</div>
  <div class="cinema-block-hall-item">
    <div class="cinema-block-hall-number">Зал 1</div>
    <div class="cinema-block-hall-time">10:00 <span class="price">250р</span></div>
    <div class="cinema-block-hall-time">19:30</div>
  </div>
  <div class="cinema-block-hall-item">
    <div class="cinema-block-hall-number">Зал 2</div>
    <div class="cinema-block-hall-time">Все сеансы на сегодня завершены</div>
  </div>
</article>
<article class="movie-info-item">
  <a class="movie-info-name" href="elki-8">Ёлки 8</a>
  <div><span class="movie-info-label">Год</span> – </div>
  <div class="cinema-block-hall-item">
    <div class="cinema-block-hall-number">Зал 1</div>
    <div class="cinema-block-hall-time">12:15</div>
  </div>
</article>
</body></html>`

const sputnikFixture = `<!DOCTYPE html>
<html><body>
<div class="films" data-date="2021-12-15"></div>
<div class="films" data-date="2021-12-16">
  <div class="film flex">
    <a class="film__head" href="https://sputnik-cinema.ru/film/777"></a>
    <div class="film__title">Дюна</div>
    <img class="film__poster-image" src="https://sputnik-cinema.ru/posters/dune.jpg">
    <div class="schedule__seance">11:20</div>
    <span class="schedule__seance">21:45</span>
  </div>
</div>
</body></html>`

const kinobelFixture = `<!DOCTYPE html>
<html><body>
<div id="sp-showtime-tab-2021-12-16">
  <div class="movie-schedule">
    <a class="schedule-movie-name" href="/film/encanto">Энканто</a>
    <ul>
      <li class="time-select__item" data-session-time="09:40"></li>
      <li class="time-select__item" data-session-time="14:05"></li>
    </ul>
  </div>
</div>
</body></html>`

func newClient(t *testing.T) *scrape.Client {
	t.Helper()
	cfg := config.Default()
	return scrape.NewClient(&cfg)
}

func fixtureServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRusichScrape(t *testing.T) {
	server := fixtureServer(t, rusichFixture)
	scraper, err := scrape.ForSource("rusich", newClient(t), map[string]string{"base_url": server.URL})
	if err != nil {
		t.Fatalf("ForSource failed: %v", err)
	}

	date := time.Date(2021, 12, 16, 0, 0, 0, 0, time.UTC)
	showings, err := scraper.Scrape(context.Background(), date)
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if len(showings) != 3 {
		t.Fatalf("expected 3 showings, got %d: %+v", len(showings), showings)
	}

	first := showings[0]
	if first.Movie.Title != "Матрица: Воскрешение" {
		t.Fatalf("unexpected title %q", first.Movie.Title)
	}
	if first.Movie.Year != 2021 {
		t.Fatalf("expected year 2021, got %d", first.Movie.Year)
	}
	if first.Movie.PosterURL != server.URL+"/media/posters/matrix.jpg" {
		t.Fatalf("unexpected poster url %q", first.Movie.PosterURL)
	}
	if first.Hall != "Зал 1" {
		t.Fatalf("unexpected hall %q", first.Hall)
	}
	want := time.Date(2021, 12, 16, 10, 0, 0, 0, time.UTC)
	if !first.StartsAt.Equal(want) {
		t.Fatalf("expected start %v, got %v", want, first.StartsAt)
	}

	// The second movie has a blank year and must still come through.
	last := showings[2]
	if last.Movie.Title != "Ёлки 8" || last.Movie.Year != 0 {
		t.Fatalf("unexpected trailing showing: %+v", last)
	}
}

func TestSputnikScrape(t *testing.T) {
	server := fixtureServer(t, sputnikFixture)
	scraper, err := scrape.ForSource("sputnik", newClient(t), map[string]string{
		"base_url": server.URL,
		"city_no":  "1",
	})
	if err != nil {
		t.Fatalf("ForSource failed: %v", err)
	}

	date := time.Date(2021, 12, 16, 0, 0, 0, 0, time.UTC)
	showings, err := scraper.Scrape(context.Background(), date)
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if len(showings) != 2 {
		t.Fatalf("expected 2 showings, got %d", len(showings))
	}
	if showings[0].Movie.Title != "Дюна" || showings[0].Movie.Year != 0 {
		t.Fatalf("unexpected movie: %+v", showings[0].Movie)
	}
	if showings[0].Hall != "" {
		t.Fatalf("sputnik publishes no halls, got %q", showings[0].Hall)
	}
	if showings[0].DetailURL != "https://sputnik-cinema.ru/film/777?city=1" {
		t.Fatalf("unexpected detail url %q", showings[0].DetailURL)
	}
	want := time.Date(2021, 12, 16, 21, 45, 0, 0, time.UTC)
	if !showings[1].StartsAt.Equal(want) {
		t.Fatalf("expected start %v, got %v", want, showings[1].StartsAt)
	}
}

func TestSputnikScrapeMissingDay(t *testing.T) {
	server := fixtureServer(t, sputnikFixture)
	scraper, err := scrape.ForSource("sputnik", newClient(t), map[string]string{"base_url": server.URL})
	if err != nil {
		t.Fatalf("ForSource failed: %v", err)
	}

	date := time.Date(2021, 12, 20, 0, 0, 0, 0, time.UTC)
	_, err = scraper.Scrape(context.Background(), date)
	if !errors.Is(err, scrape.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable for missing day, got %v", err)
	}
}

func TestKinobelScrape(t *testing.T) {
	server := fixtureServer(t, kinobelFixture)
	scraper, err := scrape.ForSource("kinobel", newClient(t), map[string]string{
		"base_url":     server.URL,
		"theater_path": "/pobeda",
	})
	if err != nil {
		t.Fatalf("ForSource failed: %v", err)
	}

	date := time.Date(2021, 12, 16, 0, 0, 0, 0, time.UTC)
	showings, err := scraper.Scrape(context.Background(), date)
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if len(showings) != 2 {
		t.Fatalf("expected 2 showings, got %d", len(showings))
	}
	if showings[0].Movie.Title != "Энканто" {
		t.Fatalf("unexpected title %q", showings[0].Movie.Title)
	}
	if showings[0].DetailURL != server.URL+"/film/encanto" {
		t.Fatalf("unexpected detail url %q", showings[0].DetailURL)
	}
	want := time.Date(2021, 12, 16, 9, 40, 0, 0, time.UTC)
	if !showings[0].StartsAt.Equal(want) {
		t.Fatalf("expected start %v, got %v", want, showings[0].StartsAt)
	}
}

func TestClientNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone fishing", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	scraper, err := scrape.ForSource("rusich", newClient(t), map[string]string{"base_url": server.URL})
	if err != nil {
		t.Fatalf("ForSource failed: %v", err)
	}
	_, err = scraper.Scrape(context.Background(), time.Now())
	if !errors.Is(err, scrape.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestForSourceUnknownKey(t *testing.T) {
	if _, err := scrape.ForSource("imax", newClient(t), nil); err == nil {
		t.Fatal("expected error for unknown source key")
	}
}
