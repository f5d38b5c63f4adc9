// Package report renders validated grading results as plain-text student
// reports.
package report

import (
	"fmt"
	"strings"

	"github.com/mselheim/routegrader/internal/schema"
)

// RatingSymbol returns the bracketed label used for a rating in reports.
func RatingSymbol(r schema.Rating) string {
	switch r {
	case schema.RatingExcellent:
		return "[EXCELLENT]"
	case schema.RatingOK:
		return "[OK]"
	case schema.RatingNeedsWork:
		return "[NEEDS WORK]"
	default:
		return fmt.Sprintf("[%s]", string(r))
	}
}

// Render formats a grading result as a readable text report. Pure formatting;
// the result is assumed to have passed validation.
func Render(result *schema.GradingResult) string {
	wide := strings.Repeat("=", 60)
	thin := strings.Repeat("-", 60)

	var lines []string
	lines = append(lines, wide, "GRADING REPORT", wide, "")

	if result.StudentID != nil && *result.StudentID != "" {
		lines = append(lines, fmt.Sprintf("Student: %s", *result.StudentID))
	}
	if result.RouteID != nil && *result.RouteID != "" {
		lines = append(lines, fmt.Sprintf("Assignment: %s", *result.RouteID))
	}
	if len(lines) > 4 {
		lines = append(lines, "")
	}

	lines = append(lines, thin, "OVERALL SUMMARY", thin, result.OverallSummary, "")
	lines = append(lines, thin, "EXERCISE GRADES", thin, "")

	for _, ex := range result.Exercises {
		lines = append(lines, fmt.Sprintf("%s: %s", ex.ExerciseID, RatingSymbol(ex.Rating)))
		lines = append(lines, strings.Repeat("-", 40))

		if ex.Rationale != "" {
			lines = append(lines, fmt.Sprintf("Feedback: %s", ex.Rationale))
		}
		if len(ex.MissingOrWrong) > 0 {
			lines = append(lines, "", "Issues to address:")
			for _, item := range ex.MissingOrWrong {
				lines = append(lines, fmt.Sprintf("  - %s", item))
			}
		}
		if len(ex.Flags) > 0 {
			lines = append(lines, "", fmt.Sprintf("Flags: %s", strings.Join(ex.Flags, ", ")))
		}

		lines = append(lines, "", "")
	}

	var excellent, ok, needsWork int
	for _, ex := range result.Exercises {
		switch ex.Rating {
		case schema.RatingExcellent:
			excellent++
		case schema.RatingOK:
			ok++
		case schema.RatingNeedsWork:
			needsWork++
		}
	}
	total := len(result.Exercises)

	lines = append(lines, thin, "SUMMARY", thin)
	lines = append(lines, fmt.Sprintf("  EXCELLENT:   %d/%d", excellent, total))
	lines = append(lines, fmt.Sprintf("  OK:          %d/%d", ok, total))
	lines = append(lines, fmt.Sprintf("  NEEDS WORK:  %d/%d", needsWork, total))
	lines = append(lines, "", wide)

	return strings.Join(lines, "\n")
}
