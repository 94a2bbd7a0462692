package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const sputnikDefaultBaseURL = "https://sputnik-cinema.ru"

// sputnik scrapes sputnik-cinema.ru. The landing page carries the whole week;
// the day is picked by the data-date attribute. The site publishes neither
// the production year nor the hall for a seance, and showing links only point
// at the movie page.
type sputnik struct {
	client  *Client
	baseURL string
	cityNo  string
}

func newSputnik(client *Client, options map[string]string) Scraper {
	base := options["base_url"]
	if base == "" {
		base = sputnikDefaultBaseURL
	}
	return &sputnik{
		client:  client,
		baseURL: strings.TrimRight(base, "/"),
		cityNo:  options["city_no"],
	}
}

func (s *sputnik) Scrape(ctx context.Context, date time.Time) ([]RawShowing, error) {
	params := url.Values{}
	if s.cityNo != "" {
		params.Set("city", s.cityNo)
	}

	doc, err := s.client.Document(ctx, s.baseURL+"/", params)
	if err != nil {
		return nil, err
	}

	dateStr := date.Format("2006-01-02")
	daySchedule := doc.Find(fmt.Sprintf("div.films[data-date=%q]", dateStr))
	if daySchedule.Length() == 0 {
		return nil, fmt.Errorf("%w: no schedule block for %s", ErrSourceUnavailable, dateStr)
	}

	var showings []RawShowing
	daySchedule.Find("div.film").Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find("div.film__title").First().Text())
		if name == "" {
			return
		}

		detailURL := ""
		if href, ok := card.Find("a.film__head").First().Attr("href"); ok {
			detailURL = href
			if s.cityNo != "" {
				detailURL += "?city=" + s.cityNo
			}
		}

		movie := RawMovie{Title: name}
		if src, ok := card.Find("img.film__poster-image").First().Attr("src"); ok {
			movie.PosterURL = src
		}

		card.Find(".schedule__seance").Each(func(_ int, seance *goquery.Selection) {
			startsAt, ok := combineTime(date, seance.Text())
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
