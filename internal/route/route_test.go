package route

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTitlePreambleAndExercises(t *testing.T) {
	content := "# Lab\n\nIntro.\n\n## Exercise 1: Molarity\n\nCompute it.\n\n## Exercise 2\n\nPlot it.\n"

	r := Parse(content)
	require.Equal(t, "Lab", r.Title)
	require.Contains(t, r.Preamble, "Intro.")
	require.Len(t, r.Exercises, 2)

	require.Equal(t, "Exercise 1", r.Exercises[0].ExerciseID)
	require.Equal(t, "Molarity", r.Exercises[0].Title)
	require.Equal(t, "Compute it.", r.Exercises[0].Instructions)
	require.False(t, r.Exercises[0].Optional)

	require.Equal(t, "Exercise 2", r.Exercises[1].ExerciseID)
	require.Equal(t, "", r.Exercises[1].Title)
	require.Equal(t, "Plot it.", r.Exercises[1].Instructions)
}

func TestParseBoldAndPartHeadings(t *testing.T) {
	content := `# Route 4

Warm up first.

## **Part A — Data loading**

Load the CSV.

### **Exercise 2a. Fitting**

Fit the curve.
`

	r := Parse(content)
	require.Len(t, r.Exercises, 2)
	require.Equal(t, "Part A", r.Exercises[0].ExerciseID)
	require.Equal(t, "Data loading", r.Exercises[0].Title)
	require.Equal(t, "Exercise 2a", r.Exercises[1].ExerciseID)
	require.Equal(t, "Fitting", r.Exercises[1].Title)
}

func TestParseOptionalDetection(t *testing.T) {
	content := `# Route 5

## Exercise 1: Required work

Do it.

## Exercise 2: Bonus plotting

Only if time allows.

### **Optional Hold (extra practice)**

Try the harder variant.
`

	r := Parse(content)
	require.Len(t, r.Exercises, 3)
	require.False(t, r.Exercises[0].Optional)
	require.True(t, r.Exercises[1].Optional, "bonus keyword in title marks optional")
	require.True(t, r.Exercises[2].Optional, "named optional section is always optional")
	require.Equal(t, "Optional_Hold", r.Exercises[2].ExerciseID)
}

func TestParseTrailingContentBelongsToLastExercise(t *testing.T) {
	content := "## Exercise 1\n\nFirst line.\nSecond line.\n"

	r := Parse(content)
	require.Len(t, r.Exercises, 1)
	require.Equal(t, "First line.\nSecond line.", r.Exercises[0].Instructions)
}

func TestParseUniqueOrderedIDs(t *testing.T) {
	content := "## Exercise 1\n\na\n\n## Exercise 2\n\nb\n\n## Exercise 3\n\nc\n"

	r := Parse(content)
	require.Equal(t, []string{"Exercise 1", "Exercise 2", "Exercise 3"}, r.ExerciseIDs())

	seen := map[string]bool{}
	for _, id := range r.ExerciseIDs() {
		require.False(t, seen[id], "duplicate exercise id %q", id)
		seen[id] = true
	}
}

func TestParseNoTitleNoPreamble(t *testing.T) {
	r := Parse("## Exercise 1\n\nWork.\n")
	require.Equal(t, "", r.Title)
	require.Equal(t, "", r.Preamble)
	require.Len(t, r.Exercises, 1)
}

func TestFormatForPromptMarksOptional(t *testing.T) {
	r := Route{
		Title:    "Lab",
		Preamble: "Intro.",
		Exercises: []Exercise{
			{ExerciseID: "Exercise 1", Title: "Molarity", Instructions: "Compute it."},
			{ExerciseID: "Exercise 2", Instructions: "Extra.", Optional: true},
		},
	}

	text := r.FormatForPrompt()
	require.Contains(t, text, "# Lab")
	require.Contains(t, text, "Intro.")
	require.Contains(t, text, "## Exercise 1")
	require.Contains(t, text, ": Molarity")
	require.Contains(t, text, "## Exercise 2 [OPTIONAL]")
}
