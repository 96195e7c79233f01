package models

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// LessonsToCSV renders lessons as a CSV document for bulk export.
func LessonsToCSV(lessons []Lesson) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write([]string{"schedule", "studio", "program", "instructor", "status"}); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, l := range lessons {
		record := []string{
			l.Schedule.Format("2006-01-02 15:04"),
			l.Studio,
			l.Program,
			l.Instructor,
			string(l.Status),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return sb.String(), nil
}
