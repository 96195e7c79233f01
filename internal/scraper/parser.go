package scraper

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/shiodat/feelbot/internal/dateparse"
	"github.com/shiodat/feelbot/internal/models"
)

// Page is one parsed calendar page: its reference date (the first visible
// day) and the already-reserved slots on it.
type Page struct {
	Reference time.Time
	Reserved  []models.Lesson
}

// ParsePage parses a reservation calendar snapshot.
func ParsePage(html, studio string) (*Page, error) {
	return ParsePageAt(html, studio, time.Now())
}

// ParsePageAt is ParsePage with an explicit reference time for year-less
// date headers.
func ParsePageAt(html, studio string, now time.Time) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse reservation page: %w", err)
	}

	page := &Page{}
	first := true
	doc.Find("div[id='day_'], div[id='day__b']").Each(func(_ int, day *goquery.Selection) {
		header := day.Find("div").First().Text()
		dateToken := strings.SplitN(header, "(", 2)[0]
		date, err := dateparse.ParseAt(dateToken, "", now)
		if err != nil {
			return
		}
		if first {
			page.Reference = date
			first = false
		}

		day.Find(".unit_reserved").Each(func(_ int, slot *goquery.Selection) {
			ps := slot.Find("p")
			if ps.Length() < 3 {
				return
			}
			startToken := strings.TrimSpace(strings.SplitN(ps.Eq(0).Text(), "～", 2)[0])
			start, err := dateparse.ParseAt(dateToken, startToken, now)
			if err != nil {
				return
			}
			page.Reserved = append(page.Reserved, models.Lesson{
				Schedule:   start,
				Studio:     studio,
				Program:    strings.TrimSpace(ps.Eq(1).Text()),
				Instructor: strings.TrimSpace(ps.Eq(2).Text()),
				Status:     models.StatusReserved,
			})
		})
	})
	if first {
		return nil, ErrNoCalendar
	}
	return page, nil
}
