package scrape

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const rusichDefaultBaseURL = "https://kinorusich.ru"

// rusichClosedSentinel replaces the time slots once the day's program is over.
const rusichClosedSentinel = "Все сеансы на сегодня завершены"

var (
	yearPattern = regexp.MustCompile(`\d{4}`)
	timePattern = regexp.MustCompile(`^\s*(\d{1,2}:\d{2})`)
)

// rusich scrapes kinorusich.ru. The schedule page takes the date as a unix
// timestamp query parameter and renders one card per movie with per-hall
// time slots.
type rusich struct {
	client  *Client
	baseURL string
}

func newRusich(client *Client, options map[string]string) Scraper {
	base := options["base_url"]
	if base == "" {
		base = rusichDefaultBaseURL
	}
	return &rusich{client: client, baseURL: strings.TrimRight(base, "/")}
}

func (r *rusich) Scrape(ctx context.Context, date time.Time) ([]RawShowing, error) {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	scheduleURL := r.baseURL + "/h/schedule/"

	params := url.Values{}
	params.Set("d", strconv.FormatInt(midnight.Unix(), 10))

	doc, err := r.client.Document(ctx, scheduleURL, params)
	if err != nil {
		return nil, err
	}

	var showings []RawShowing
	doc.Find("article.movie-info-item").Each(func(_ int, card *goquery.Selection) {
		nameTag := card.Find("a.movie-info-name").First()
		name := strings.TrimSpace(nameTag.Text())
		if name == "" {
			return
		}

		detailURL := scheduleURL
		if href, ok := nameTag.Attr("href"); ok {
			detailURL = scheduleURL + href
		}

		movie := RawMovie{
			Title: name,
			Year:  r.parseYear(card),
		}
		if src, ok := card.Find("div.movie-info-img img").First().Attr("src"); ok {
			movie.PosterURL = r.baseURL + src
		}

		card.Find("div.cinema-block-hall-item").Each(func(_ int, hall *goquery.Selection) {
			hallName := strings.TrimSpace(hall.Find("div.cinema-block-hall-number").First().Text())

			hall.Find("div.cinema-block-hall-time").EachWithBreak(func(_ int, slot *goquery.Selection) bool {
				text := slot.Text()
				if strings.Contains(text, rusichClosedSentinel) {
					return false
				}
				startsAt, ok := combineTime(date, text)
				if !ok {
					return true
				}
				showings = append(showings, RawShowing{
					Movie:     movie,
					Hall:      hallName,
					StartsAt:  startsAt,
					DetailURL: detailURL,
				})
				return true
			})
		})
	})

	return showings, nil
}

// The year sits next to a "Год" label inside the movie card info list.
func (r *rusich) parseYear(card *goquery.Selection) int {
	year := 0
	card.Find("span.movie-info-label").EachWithBreak(func(_ int, label *goquery.Selection) bool {
		if strings.TrimSpace(label.Text()) != "Год" {
			return true
		}
		raw := strings.Replace(label.Parent().Text(), "Год", "", 1)
		if match := yearPattern.FindString(raw); match != "" {
			year, _ = strconv.Atoi(match)
		}
		return false
	})
	return year
}

// combineTime attaches a scraped HH:MM to the scrape date in its location.
func combineTime(date time.Time, raw string) (time.Time, bool) {
	match := timePattern.FindStringSubmatch(raw)
	if match == nil {
		return time.Time{}, false
	}
	clock, err := time.Parse("15:04", match[1])
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, date.Location()), true
}
