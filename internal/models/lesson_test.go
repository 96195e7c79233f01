package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiodat/feelbot/internal/models"
)

func lessonAt(day, hour int, status models.ReservationStatus) models.Lesson {
	return models.Lesson{
		Schedule:   time.Date(2024, 3, day, hour, 30, 0, 0, time.Local),
		Studio:     "Shibuya",
		Program:    "BB2 House 1",
		Instructor: "A.Yuto",
		Status:     status,
	}
}

func TestLessonText(t *testing.T) {
	l := lessonAt(21, 18, models.StatusVacant)
	got := l.Text("lesson information\n", "")
	assert.Equal(t,
		"lesson information\nlesson: 03/21 18:30 BB2 House 1 (A.Yuto) @Shibuya\nstatus: VACANT",
		got)
}

func TestReservationStatusValid(t *testing.T) {
	for _, s := range []models.ReservationStatus{
		models.StatusVacant, models.StatusFull, models.StatusPast, models.StatusReserved,
	} {
		assert.True(t, s.Valid(), "status %s", s)
	}
	assert.False(t, models.ReservationStatus("CANCELLED").Valid())
}

func TestSortLessons(t *testing.T) {
	lessons := []models.Lesson{
		lessonAt(23, 10, models.StatusReserved),
		lessonAt(21, 18, models.StatusReserved),
		lessonAt(22, 7, models.StatusReserved),
	}
	models.SortLessons(lessons)

	assert.Equal(t, 21, lessons[0].Schedule.Day())
	assert.Equal(t, 22, lessons[1].Schedule.Day())
	assert.Equal(t, 23, lessons[2].Schedule.Day())
}

func TestLessonsToCSV(t *testing.T) {
	lessons := []models.Lesson{lessonAt(21, 18, models.StatusReserved)}
	got, err := models.LessonsToCSV(lessons)
	require.NoError(t, err)

	assert.Equal(t,
		"schedule,studio,program,instructor,status\n"+
			"2024-03-21 18:30,Shibuya,BB2 House 1,A.Yuto,RESERVED\n",
		got)
}

func TestLessonsToCSV_Empty(t *testing.T) {
	got, err := models.LessonsToCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "schedule,studio,program,instructor,status\n", got)
}
