package models

import (
	"fmt"
	"sort"
	"time"
)

// ReservationStatus classifies a lesson slot as shown on the reservation
// calendar.
type ReservationStatus string

const (
	// StatusVacant means the slot still has bookable seats.
	StatusVacant ReservationStatus = "VACANT"
	// StatusFull means the slot reached capacity.
	StatusFull ReservationStatus = "FULL"
	// StatusPast means the slot's start time has elapsed.
	StatusPast ReservationStatus = "PAST"
	// StatusReserved means this account already holds a seat in the slot.
	StatusReserved ReservationStatus = "RESERVED"
)

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusVacant, StatusFull, StatusPast, StatusReserved:
		return true
	}
	return false
}

// Lesson is a single slot offered at a studio. It is a plain value: two
// lessons with identical fields are interchangeable.
type Lesson struct {
	Schedule   time.Time         `json:"schedule" yaml:"schedule"`
	Studio     string            `json:"studio" yaml:"studio"`
	Program    string            `json:"program" yaml:"program"`
	Instructor string            `json:"instructor" yaml:"instructor"`
	Status     ReservationStatus `json:"status" yaml:"status"`
}

// Text renders the lesson as a chat message body.
func (l Lesson) Text(prefix, suffix string) string {
	return prefix +
		fmt.Sprintf("lesson: %s %s (%s) @%s\nstatus: %s",
			l.Schedule.Format("01/02 15:04"),
			l.Program, l.Instructor, l.Studio, l.Status) +
		suffix
}

// SortLessons orders lessons by schedule ascending, in place.
func SortLessons(lessons []Lesson) {
	sort.Slice(lessons, func(i, j int) bool {
		return lessons[i].Schedule.Before(lessons[j].Schedule)
	})
}
