// Package dateparse implements the date and clock token format used across
// the reservation page headers, chat commands and API parameters.
package dateparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidDate  = errors.New("invalid date format")
	ErrInvalidClock = errors.New("invalid clock format")
)

// Parse converts a slash-delimited date token and an optional colon-delimited
// clock token into a timestamp at minute precision. A two-component date
// ("3/21") takes the current year; a three-component one ("2024/3/21") is
// explicit. An empty clock means midnight.
func Parse(date, clock string) (time.Time, error) {
	return ParseAt(date, clock, time.Now())
}

// ParseAt is Parse with an explicit reference time supplying the implied year.
func ParseAt(date, clock string, now time.Time) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(date), "/")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
		nums = append(nums, n)
	}

	var year, month, day int
	switch len(nums) {
	case 2:
		year, month, day = now.Year(), nums[0], nums[1]
	case 3:
		year, month, day = nums[0], nums[1], nums[2]
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	// time.Date would normalize 2/30 into 3/1; a typo must not silently
	// target a different lesson.
	if month < 1 || month > 12 || day < 1 || day > daysIn(year, time.Month(month)) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	hour, minute := 0, 0
	if clock != "" {
		cp := strings.Split(strings.TrimSpace(clock), ":")
		if len(cp) != 2 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
		}
		var err error
		if hour, err = strconv.Atoi(cp[0]); err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
		}
		if minute, err = strconv.Atoi(cp[1]); err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
		}
		if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
		}
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local), nil
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
