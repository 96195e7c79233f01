// Package client is the stateful façade over the reservation components:
// it manages login, studio selection, and the retry loop that drives the
// locator, actor and scraper to a terminal outcome.
package client

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/shiodat/feelbot/internal/actor"
	"github.com/shiodat/feelbot/internal/browser"
	"github.com/shiodat/feelbot/internal/locator"
	"github.com/shiodat/feelbot/internal/models"
	"github.com/shiodat/feelbot/internal/scraper"
)

// ErrLessonNotFound means the target slot was absent from the whole search
// window. Bad studio or schedule input; never retried.
var ErrLessonNotFound = errors.New("lesson not found")

const (
	// DefaultSleepSeconds is the base polling interval when the caller
	// does not set one.
	DefaultSleepSeconds = 30

	maxRetries   = 10
	restartPause = 3 * time.Second
)

// Config carries everything a client needs to run a session.
type Config struct {
	Username     string
	Password     string
	Headless     bool
	PageTimeout  time.Duration
	LoginTimeout time.Duration
}

// Client owns one browser session for its lifetime. Not safe for
// concurrent use; spin up one Client per unit of work.
type Client struct {
	cfg     Config
	browser *browser.Client

	// studio currently selected in the session; cleared whenever the
	// session is replaced.
	studio string

	sleep   func(time.Duration)
	randf   func() float64
	refresh func() error
}

// New starts a browser session. Callers must Close the client on every
// exit path.
func New(cfg Config) (*Client, error) {
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 60 * time.Second
	}
	if cfg.LoginTimeout <= 0 {
		cfg.LoginTimeout = 5 * time.Second
	}
	bc, err := browser.New(cfg.PageTimeout)
	if err != nil {
		return nil, err
	}
	if err := bc.Start(cfg.Headless); err != nil {
		bc.Close()
		return nil, err
	}
	c := &Client{
		cfg:     cfg,
		browser: bc,
		sleep:   time.Sleep,
		randf:   rand.Float64,
	}
	c.refresh = c.refreshSession
	return c, nil
}

// Close releases the browser session.
func (c *Client) Close() error {
	if c.browser == nil {
		return nil
	}
	return c.browser.Close()
}

func (c *Client) ensureLogin() error {
	return c.browser.Login(c.cfg.Username, c.cfg.Password, c.cfg.LoginTimeout)
}

func (c *Client) ensureStudio(studio string) error {
	if c.studio == studio {
		return nil
	}
	if err := c.browser.SelectStudio(studio); err != nil {
		return err
	}
	c.studio = studio
	return nil
}

// refreshSession throws away the browser context and starts over. The old
// session may be degraded in ways a plain retry cannot fix.
func (c *Client) refreshSession() error {
	c.studio = ""
	c.sleep(restartPause)
	return c.browser.Restart()
}

// FindLesson locates the slot and returns its current state. With polling
// it keeps re-checking while the slot is full, so the caller learns the
// moment a seat frees up.
func (c *Client) FindLesson(studio string, schedule time.Time, polling bool, sleepSeconds int) (*models.Lesson, error) {
	attempt := func() (outcome, error) {
		if err := c.ensureLogin(); err != nil {
			return outcome{}, err
		}
		if err := c.ensureStudio(studio); err != nil {
			return outcome{}, err
		}
		lesson, err := locator.Find(c.browser, studio, schedule)
		if err != nil {
			return outcome{}, err
		}
		return outcome{lesson: lesson}, nil
	}
	done := func(out outcome) bool {
		return out.lesson.Status != models.StatusFull
	}

	out, err := c.poll(attempt, done, polling, sleepSeconds)
	if err != nil {
		return nil, err
	}
	return out.lesson, nil
}

// ReserveLesson claims a seat in the slot (or, with relocate, moves an
// existing hold to another seat). With polling, a plain reservation keeps
// trying while the slot is full and a relocation keeps trying until the
// move succeeds. On success the slot is re-read so the returned lesson
// carries the portal's post-action status where available.
func (c *Client) ReserveLesson(studio string, schedule time.Time, relocate, polling bool, sleepSeconds int) (bool, *models.Lesson, error) {
	attempt := func() (outcome, error) {
		if err := c.ensureLogin(); err != nil {
			return outcome{}, err
		}
		if err := c.ensureStudio(studio); err != nil {
			return outcome{}, err
		}
		success, lesson, err := actor.Reserve(c.browser, studio, schedule, relocate)
		if err != nil {
			return outcome{}, err
		}
		return outcome{success: success, lesson: lesson}, nil
	}
	done := func(out outcome) bool {
		if relocate {
			return out.success
		}
		return out.lesson.Status != models.StatusFull
	}

	out, err := c.poll(attempt, done, polling, sleepSeconds)
	if err != nil {
		return false, nil, err
	}
	if out.success {
		// The claim flow never re-reads confirmed state; look the slot up
		// once more so the caller gets what the portal now shows.
		lesson, err := locator.Find(c.browser, studio, schedule)
		out.lesson = postClaimLesson(out.lesson, lesson, err)
	}
	return out.success, out.lesson, nil
}

// postClaimLesson picks the lesson to report after a successful claim.
// The re-read is best effort: the seat is already held, so its failure is
// logged and the pre-claim snapshot reported instead.
func postClaimLesson(claimed, refreshed *models.Lesson, err error) *models.Lesson {
	if err != nil {
		log.Printf("refresh status after claim: %v", err)
		return claimed
	}
	if refreshed == nil {
		log.Printf("claimed slot missing on re-read, reporting pre-claim state")
		return claimed
	}
	return refreshed
}

// ScrapeLessons exports the account's held reservations across studios
// from startDate forward in time. Single pass, never polled.
func (c *Client) ScrapeLessons(studios []string, startDate time.Time) ([]models.Lesson, error) {
	if err := c.ensureLogin(); err != nil {
		return nil, err
	}
	// The scraper drives studio selection itself; the cached selection is
	// stale afterwards.
	c.studio = ""
	lessons, err := scraper.Scrape(c.browser, studios, startDate)
	if err != nil {
		return nil, fmt.Errorf("scrape lessons: %w", err)
	}
	return lessons, nil
}
