// Package locator finds a single lesson slot on the reservation calendar.
package locator

import (
	"log"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/shiodat/feelbot/internal/browser"
	"github.com/shiodat/feelbot/internal/dateparse"
	"github.com/shiodat/feelbot/internal/models"
)

// maxWeekTurns bounds the forward search across calendar pages.
const maxWeekTurns = 3

const (
	dayContainerSelector = "div[id='day_'], div[id='day__b']"
	slotSelector         = ".unit, .unit_past, .unit_reserved"
)

// Find locates the slot at schedule in the currently selected studio's
// calendar. A nil lesson means the slot does not exist within the search
// window.
func Find(bc *browser.Client, studio string, schedule time.Time) (*models.Lesson, error) {
	lesson, _, err := find(bc, studio, schedule, false)
	return lesson, err
}

// FindWithHandle additionally returns the live element for the slot, for
// callers that will act on it. The handle must not be re-derived from a
// later search; the page may have moved on.
func FindWithHandle(bc *browser.Client, studio string, schedule time.Time) (*models.Lesson, playwright.Locator, error) {
	return find(bc, studio, schedule, true)
}

func find(bc *browser.Client, studio string, schedule time.Time, wantHandle bool) (*models.Lesson, playwright.Locator, error) {
	ok, err := bc.IsLoggedIn()
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, browser.ErrNotLoggedIn
	}
	if err := bc.GotoReservePage(); err != nil {
		return nil, nil, err
	}

	page := bc.Page()
	for turn := 0; turn < maxWeekTurns; turn++ {
		days, err := page.Locator(dayContainerSelector).All()
		if err != nil {
			return nil, nil, err
		}
		for _, day := range days {
			header, err := day.Locator("div").First().TextContent()
			if err != nil {
				continue
			}
			dateToken := strings.SplitN(header, "(", 2)[0]
			date, err := dateparse.Parse(dateToken, "")
			if err != nil || !sameDate(date, schedule) {
				continue
			}

			slots, err := day.Locator(slotSelector).All()
			if err != nil {
				return nil, nil, err
			}
			for _, slot := range slots {
				lesson, ok, err := readSlot(slot, dateToken, studio, schedule)
				if err != nil {
					return nil, nil, err
				}
				if !ok {
					continue
				}
				log.Printf("located lesson %s %s (%s) @%s status=%s",
					lesson.Schedule.Format("01/02 15:04"),
					lesson.Program, lesson.Instructor, lesson.Studio, lesson.Status)
				if wantHandle {
					return lesson, slot, nil
				}
				return lesson, nil, nil
			}
		}
		if err := bc.NextWeek(); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

// readSlot parses one slot element; ok is false when the slot is not the
// one requested or cannot be read.
func readSlot(slot playwright.Locator, dateToken, studio string, schedule time.Time) (*models.Lesson, bool, error) {
	texts, err := slot.Locator("p").All()
	if err != nil || len(texts) < 3 {
		return nil, false, nil
	}
	startRaw, err := texts[0].TextContent()
	if err != nil {
		return nil, false, nil
	}
	startToken := strings.TrimSpace(strings.SplitN(startRaw, "～", 2)[0])
	start, err := dateparse.Parse(dateToken, startToken)
	if err != nil {
		return nil, false, nil
	}
	if !WithinTolerance(start, schedule) {
		return nil, false, nil
	}

	program, err := texts[1].TextContent()
	if err != nil {
		return nil, false, nil
	}
	instructor, err := texts[2].TextContent()
	if err != nil {
		return nil, false, nil
	}
	class, err := slot.GetAttribute("class")
	if err != nil {
		return nil, false, nil
	}
	status, ok := Classify(class, schedule, time.Now())
	if !ok {
		return nil, false, nil
	}

	return &models.Lesson{
		Schedule:   schedule,
		Studio:     studio,
		Program:    strings.TrimSpace(program),
		Instructor: strings.TrimSpace(instructor),
		Status:     status,
	}, true, nil
}

// Classify maps a slot's raw class marker to a reservation status. The
// calendar tags full slots and elapsed slots with the same marker; a
// "past" marker on a lesson that has not started yet really means full.
func Classify(rawClass string, schedule, now time.Time) (models.ReservationStatus, bool) {
	var status models.ReservationStatus
	switch strings.TrimSpace(rawClass) {
	case "unit":
		status = models.StatusVacant
	case "unit_full":
		status = models.StatusFull
	case "unit_past":
		status = models.StatusPast
	case "unit_reserved":
		status = models.StatusReserved
	default:
		return "", false
	}
	if status == models.StatusPast && now.Before(schedule) {
		status = models.StatusFull
	}
	return status, true
}

// WithinTolerance reports whether two timestamps are at most one minute
// apart, absorbing formatting drift in the page's clock labels.
func WithinTolerance(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= time.Minute
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
