package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const kinobelDefaultBaseURL = "https://kinobel.ru"

// kinobel scrapes kinobel.ru. Each theater lives under its own path below
// /kinoteatry; days are tabs keyed by date. No year, poster, or hall data is
// published, and seance times sit in data attributes.
type kinobel struct {
	client      *Client
	baseURL     string
	theaterPath string
}

func newKinobel(client *Client, options map[string]string) Scraper {
	base := options["base_url"]
	if base == "" {
		base = kinobelDefaultBaseURL
	}
	return &kinobel{
		client:      client,
		baseURL:     strings.TrimRight(base, "/"),
		theaterPath: options["theater_path"],
	}
}

func (k *kinobel) Scrape(ctx context.Context, date time.Time) ([]RawShowing, error) {
	doc, err := k.client.Document(ctx, k.baseURL+"/kinoteatry"+k.theaterPath, nil)
	if err != nil {
		return nil, err
	}

	dateStr := date.Format("2006-01-02")
	daySchedule := doc.Find("#sp-showtime-tab-" + dateStr)
	if daySchedule.Length() == 0 {
		return nil, fmt.Errorf("%w: no showtime tab for %s", ErrSourceUnavailable, dateStr)
	}

	var showings []RawShowing
	daySchedule.Find("div.movie-schedule").Each(func(_ int, card *goquery.Selection) {
		nameTag := card.Find("a.schedule-movie-name").First()
		name := strings.TrimSpace(nameTag.Text())
		if name == "" {
			return
		}

		detailURL := ""
		if href, ok := nameTag.Attr("href"); ok {
			detailURL = k.baseURL + href
		}

		movie := RawMovie{Title: name}
		card.Find("li.time-select__item").Each(func(_ int, slot *goquery.Selection) {
			raw, ok := slot.Attr("data-session-time")
			if !ok {
				return
			}
			startsAt, ok := combineTime(date, raw)
			if !ok {
				return
			}
			showings = append(showings, RawShowing{
				Movie:     movie,
				StartsAt:  startsAt,
				DetailURL: detailURL,
			})
		})
	})

	return showings, nil
}
