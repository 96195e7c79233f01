// Package actor performs the click sequence that claims a seat in a
// located lesson slot.
package actor

import (
	"fmt"
	"strings"
	"time"

	"github.com/shiodat/feelbot/internal/browser"
	"github.com/shiodat/feelbot/internal/locator"
	"github.com/shiodat/feelbot/internal/models"
)

// Decision is what the actor does with a located slot given its status.
type Decision int

const (
	// DecisionSkip takes no action; the reservation was not made.
	DecisionSkip Decision = iota
	// DecisionDone takes no action; the desired state already holds.
	DecisionDone
	// DecisionClaim proceeds to the seat map.
	DecisionClaim
)

// Decide applies the status gate for a claim attempt. In relocate mode only
// an already-held slot can be acted on (the hold moves to a new seat);
// otherwise only a vacant slot is claimable and a held one is already done.
func Decide(status models.ReservationStatus, relocate bool) Decision {
	if relocate {
		if status == models.StatusReserved {
			return DecisionClaim
		}
		return DecisionSkip
	}
	switch status {
	case models.StatusReserved:
		return DecisionDone
	case models.StatusVacant:
		return DecisionClaim
	default:
		return DecisionSkip
	}
}

// Reserve locates the slot and, when its status allows, claims a seat.
// A false result with a non-nil lesson means the slot was found but no
// seat was claimed: either the status gate stopped the attempt or every
// seat was taken before we got there. Neither is an error; the portal is
// the sole arbiter of seat conflicts.
func Reserve(bc *browser.Client, studio string, schedule time.Time, relocate bool) (bool, *models.Lesson, error) {
	lesson, handle, err := locator.FindWithHandle(bc, studio, schedule)
	if err != nil {
		return false, nil, err
	}
	if lesson == nil {
		return false, nil, nil
	}

	switch Decide(lesson.Status, relocate) {
	case DecisionDone:
		return true, lesson, nil
	case DecisionSkip:
		return false, lesson, nil
	}

	// Open the seat map for this exact slot.
	if err := handle.Click(); err != nil {
		return false, lesson, fmt.Errorf("open seat map: %w", err)
	}

	page := bc.Page()
	if relocate {
		// Releasing the old seat pops a native confirm after the seat
		// click. A run where it never fires is fine; the policy only
		// covers this attempt.
		bc.AcceptDialogs(true)
		defer bc.AcceptDialogs(false)
	}

	seats, err := page.Locator(".number").All()
	if err != nil {
		return false, lesson, fmt.Errorf("list seats: %w", err)
	}
	// Scan seats back to front; concurrent bookers scan forward, so the
	// tail of the list is the least contended.
	for i := len(seats) - 1; i >= 0; i-- {
		link := seats[i].Locator("a")
		class, err := link.GetAttribute("class")
		if err != nil {
			continue
		}
		if !SeatAvailable(class) {
			continue
		}
		if err := link.Click(); err != nil {
			return false, lesson, fmt.Errorf("claim seat: %w", err)
		}
		confirm := page.Locator(".coment").Nth(1).Locator("a").Nth(1)
		if err := confirm.Click(); err != nil {
			return false, lesson, fmt.Errorf("confirm reservation: %w", err)
		}
		return true, lesson, nil
	}

	// No claimable seat left. Contention loss, not a failure.
	return false, lesson, nil
}

// SeatAvailable reports whether a seat link's class marks it claimable.
func SeatAvailable(class string) bool {
	c := strings.TrimSpace(class)
	return c == "thickbox" || c == ""
}
