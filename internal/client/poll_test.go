package client

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiodat/feelbot/internal/models"
)

// testClient returns a client with no browser attached; only the polling
// engine is exercised.
func testClient(t *testing.T) (*Client, *[]time.Duration) {
	t.Helper()
	var sleeps []time.Duration
	c := &Client{
		sleep:   func(d time.Duration) { sleeps = append(sleeps, d) },
		randf:   func() float64 { return 0.5 },
		refresh: func() error { return nil },
	}
	return c, &sleeps
}

func fullLesson() *models.Lesson {
	return &models.Lesson{Status: models.StatusFull}
}

func vacantLesson() *models.Lesson {
	return &models.Lesson{Status: models.StatusVacant}
}

func notFull(out outcome) bool {
	return out.lesson.Status != models.StatusFull
}

func TestPoll_SleepsBetweenFullAttempts(t *testing.T) {
	c, sleeps := testClient(t)

	statuses := []*models.Lesson{fullLesson(), fullLesson(), vacantLesson()}
	attempts := 0
	attempt := func() (outcome, error) {
		out := outcome{lesson: statuses[attempts]}
		attempts++
		return out, nil
	}

	out, err := c.poll(attempt, notFull, true, 30)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVacant, out.lesson.Status)
	assert.Equal(t, 3, attempts)
	// Exactly two sleeps: one after each FULL observation, none after the
	// terminal one.
	assert.Len(t, *sleeps, 2)
}

func TestPoll_NonPollingReturnsFirstResult(t *testing.T) {
	c, sleeps := testClient(t)

	out, err := c.poll(func() (outcome, error) {
		return outcome{lesson: fullLesson()}, nil
	}, notFull, false, 30)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFull, out.lesson.Status)
	assert.Empty(t, *sleeps)
}

func TestPoll_AbsentLessonIsFatal(t *testing.T) {
	c, sleeps := testClient(t)

	attempts := 0
	_, err := c.poll(func() (outcome, error) {
		attempts++
		return outcome{}, nil
	}, notFull, true, 30)

	assert.ErrorIs(t, err, ErrLessonNotFound)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, *sleeps)
}

func TestPoll_TimeoutRetriesWithoutSleeping(t *testing.T) {
	c, sleeps := testClient(t)

	attempts := 0
	out, err := c.poll(func() (outcome, error) {
		attempts++
		if attempts == 1 {
			return outcome{}, errors.New("page timeout exceeded")
		}
		return outcome{lesson: vacantLesson()}, nil
	}, notFull, true, 30)

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, models.StatusVacant, out.lesson.Status)
	assert.Empty(t, *sleeps)
}

func TestPoll_OtherErrorsSurface(t *testing.T) {
	c, _ := testClient(t)

	boom := errors.New("credentials rejected")
	_, err := c.poll(func() (outcome, error) {
		return outcome{}, boom
	}, notFull, true, 30)

	assert.ErrorIs(t, err, boom)
}

func TestPoll_SpentBudgetReplacesSession(t *testing.T) {
	c, sleeps := testClient(t)

	refreshes := 0
	c.refresh = func() error {
		refreshes++
		return nil
	}

	attempts := 0
	out, err := c.poll(func() (outcome, error) {
		attempts++
		if attempts <= maxRetries+1 {
			return outcome{lesson: fullLesson()}, nil
		}
		return outcome{lesson: vacantLesson()}, nil
	}, notFull, true, 30)

	require.NoError(t, err)
	assert.Equal(t, models.StatusVacant, out.lesson.Status)
	// Eleven FULL observations spend the budget of ten; the session is
	// replaced once and the counter starts over for the terminal attempt.
	assert.Equal(t, 1, refreshes)
	assert.Equal(t, maxRetries+2, attempts)
	assert.Len(t, *sleeps, maxRetries+1)
}

func TestPoll_RefreshFailureSurfaces(t *testing.T) {
	c, _ := testClient(t)

	boom := errors.New("browser gone")
	c.refresh = func() error { return boom }

	_, err := c.poll(func() (outcome, error) {
		return outcome{lesson: fullLesson()}, nil
	}, notFull, true, 30)

	assert.ErrorIs(t, err, boom)
}

func TestPoll_RelocatePredicateStopsOnSuccess(t *testing.T) {
	c, sleeps := testClient(t)

	succeeded := func(out outcome) bool { return out.success }

	attempts := 0
	out, err := c.poll(func() (outcome, error) {
		attempts++
		if attempts < 3 {
			return outcome{lesson: fullLesson()}, nil
		}
		return outcome{success: true, lesson: vacantLesson()}, nil
	}, succeeded, true, 30)

	require.NoError(t, err)
	assert.True(t, out.success)
	assert.Equal(t, 3, attempts)
	assert.Len(t, *sleeps, 2)
}

func TestPostClaimLesson(t *testing.T) {
	claimed := vacantLesson()
	refreshed := &models.Lesson{Status: models.StatusReserved}

	// A successful re-read reports the portal's fresh state.
	assert.Equal(t, refreshed, postClaimLesson(claimed, refreshed, nil))

	// A failed or empty re-read never masks the claim; the pre-claim
	// snapshot is reported instead of an error.
	assert.Equal(t, claimed, postClaimLesson(claimed, nil, errors.New("page timeout exceeded")))
	assert.Equal(t, claimed, postClaimLesson(claimed, nil, nil))
}

func TestPoll_JitterBounds(t *testing.T) {
	base := 30 * time.Second
	assert.Equal(t, 15*time.Second, jitter(base, func() float64 { return 0 }))
	assert.Equal(t, 45*time.Second, jitter(base, func() float64 { return 1 }))

	mid := jitter(base, func() float64 { return 0.5 })
	assert.Equal(t, 30*time.Second, mid)
}

func TestPoll_SleepUsesJitteredInterval(t *testing.T) {
	c, sleeps := testClient(t)

	first := true
	_, err := c.poll(func() (outcome, error) {
		if first {
			first = false
			return outcome{lesson: fullLesson()}, nil
		}
		return outcome{lesson: vacantLesson()}, nil
	}, notFull, true, 10)

	require.NoError(t, err)
	require.Len(t, *sleeps, 1)
	// randf is pinned to 0.5, so the jittered interval is exactly base.
	assert.Equal(t, 10*time.Second, (*sleeps)[0])
}
