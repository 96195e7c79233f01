package client

import (
	"log"
	"time"

	"github.com/shiodat/feelbot/internal/browser"
	"github.com/shiodat/feelbot/internal/models"
)

// outcome is the result of one attempt against the reservation page.
type outcome struct {
	success bool
	lesson  *models.Lesson
}

// poll runs attempt until done reports a terminal outcome.
//
// A navigation timeout retries immediately: it is infrastructure noise,
// not an answer about lesson state, so it consumes neither the sleep
// interval nor the terminal predicate. An absent lesson is fatal. A
// non-terminal status sleeps a jittered interval before the next attempt;
// the jitter desynchronizes concurrent pollers racing for the same slot.
// Once the retry budget is spent the whole browser session is replaced.
func (c *Client) poll(attempt func() (outcome, error), done func(outcome) bool, polling bool, sleepSeconds int) (outcome, error) {
	if sleepSeconds <= 0 {
		sleepSeconds = DefaultSleepSeconds
	}
	base := time.Duration(sleepSeconds) * time.Second

	retries := 0
	for {
		out, err := attempt()
		switch {
		case browser.IsTimeout(err):
			log.Printf("transient session timeout, retrying: %v", err)
		case err != nil:
			return outcome{}, err
		case out.lesson == nil:
			return outcome{}, ErrLessonNotFound
		case !polling || done(out):
			return out, nil
		default:
			c.sleep(jitter(base, c.randf))
		}

		retries++
		if retries > maxRetries {
			log.Printf("retry budget spent, replacing browser session")
			if err := c.refresh(); err != nil {
				return outcome{}, err
			}
			retries = 0
		}
	}
}

// jitter draws a uniform duration from [0.5, 1.5) times base.
func jitter(base time.Duration, randf func() float64) time.Duration {
	return time.Duration((0.5 + randf()) * float64(base))
}
