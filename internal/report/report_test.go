package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mselheim/routegrader/internal/schema"
)

func strptr(s string) *string { return &s }

func sampleResult() *schema.GradingResult {
	return &schema.GradingResult{
		SchemaVersion: schema.SchemaVersion,
		RouteID:       strptr("RID_001"),
		StudentID:     strptr("smith_john"),
		Exercises: []schema.ExerciseGrade{
			{
				ExerciseID: "Exercise 1",
				Rating:     schema.RatingExcellent,
				Rationale:  "Correct and well presented.",
			},
			{
				ExerciseID:     "Exercise 2",
				Rating:         schema.RatingNeedsWork,
				Rationale:      "Plot is missing.",
				MissingOrWrong: []string{"scatter plot", "axis labels"},
				Flags:          []string{schema.FlagIncomplete},
			},
		},
		OverallSummary: "Good start, finish Exercise 2.",
	}
}

func TestRenderIncludesAllSections(t *testing.T) {
	out := Render(sampleResult())

	require.Contains(t, out, "GRADING REPORT")
	require.Contains(t, out, "Student: smith_john")
	require.Contains(t, out, "Assignment: RID_001")
	require.Contains(t, out, "OVERALL SUMMARY")
	require.Contains(t, out, "Good start, finish Exercise 2.")
	require.Contains(t, out, "Exercise 1: [EXCELLENT]")
	require.Contains(t, out, "Exercise 2: [NEEDS WORK]")
	require.Contains(t, out, "Feedback: Plot is missing.")
	require.Contains(t, out, "  - scatter plot")
	require.Contains(t, out, "Flags: incomplete")
}

func TestRenderSummaryCounts(t *testing.T) {
	out := Render(sampleResult())
	require.Contains(t, out, "EXCELLENT:   1/2")
	require.Contains(t, out, "OK:          0/2")
	require.Contains(t, out, "NEEDS WORK:  1/2")
}

func TestRenderOmitsMissingIdentifiers(t *testing.T) {
	result := sampleResult()
	result.RouteID = nil
	result.StudentID = nil

	out := Render(result)
	require.NotContains(t, out, "Student:")
	require.NotContains(t, out, "Assignment:")
}

func TestRenderEmptyExercises(t *testing.T) {
	result := &schema.GradingResult{
		SchemaVersion:  schema.SchemaVersion,
		Exercises:      []schema.ExerciseGrade{},
		OverallSummary: "Nothing gradable found.",
	}

	out := Render(result)
	require.Contains(t, out, "EXCELLENT:   0/0")
	require.True(t, strings.HasSuffix(out, strings.Repeat("=", 60)))
}

func TestRatingSymbolUnknownRating(t *testing.T) {
	require.Equal(t, "[WAT]", RatingSymbol(schema.Rating("WAT")))
}
