// Package scraper exports the account's held reservations across studios.
package scraper

import (
	"errors"
	"fmt"
	"time"

	"github.com/shiodat/feelbot/internal/models"
)

// ErrNoCalendar means a page had no day containers to read a reference
// date from.
var ErrNoCalendar = errors.New("no calendar on page")

// PageSource is the slice of a browser session the scraper drives: studio
// selection, page snapshots and backward pagination.
type PageSource interface {
	SelectStudio(name string) error
	Content() (string, error)
	PrevWeek() error
}

// Scrape walks each studio's calendar backward from the current page and
// collects every already-reserved slot whose page is dated on or after
// startDate. One pass, no early exit; the combined result is sorted by
// schedule ascending.
func Scrape(src PageSource, studios []string, startDate time.Time) ([]models.Lesson, error) {
	var all []models.Lesson
	for _, studio := range studios {
		if err := src.SelectStudio(studio); err != nil {
			return nil, err
		}
		for {
			html, err := src.Content()
			if err != nil {
				return nil, err
			}
			page, err := ParsePage(html, studio)
			if err != nil {
				return nil, fmt.Errorf("scrape %s: %w", studio, err)
			}
			if page.Reference.Before(startDate) {
				break
			}
			all = append(all, page.Reserved...)
			if err := src.PrevWeek(); err != nil {
				return nil, err
			}
		}
	}
	models.SortLessons(all)
	return all, nil
}
