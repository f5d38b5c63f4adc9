package notebook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intptr(i int) *int { return &i }

func markdownCell(index int, source string) CellView {
	return CellView{Index: index, CellType: "markdown", Source: source}
}

func codeCell(index int, source string) CellView {
	return CellView{Index: index, CellType: "code", Source: source, ExecutionCount: intptr(index)}
}

func TestExtractExercisesGroupsAndClassifies(t *testing.T) {
	view := NotebookView{Cells: []CellView{
		markdownCell(0, "## Exercise 1"),
		codeCell(1, "a = 1"),
		codeCell(2, "b = 2"),
		codeCell(3, "a + b"),
		markdownCell(4, "## Exercise 2"),
		markdownCell(5, "This exercise asks for a written explanation."),
	}}

	exercises := ExtractExercises(view)
	require.Len(t, exercises, 2)

	require.Equal(t, "Exercise 1", exercises[0].ExerciseID)
	require.Equal(t, ExerciseTypeCode, exercises[0].ExerciseType)
	require.Len(t, exercises[0].Cells, 4)
	require.Equal(t, 0, exercises[0].Cells[0].Index)

	require.Equal(t, "Exercise 2", exercises[1].ExerciseID)
	require.Equal(t, ExerciseTypeWriting, exercises[1].ExerciseType)
	require.Len(t, exercises[1].Cells, 2)
}

func TestExtractExercisesHeaderVariants(t *testing.T) {
	cases := []struct {
		source string
		id     string
		title  string
	}{
		{"## Exercise 1", "Exercise 1", ""},
		{"### **Exercise 2a**", "Exercise 2a", ""},
		{"# Exercise 3: Beer-Lambert", "Exercise 3", "Beer-Lambert"},
		{"Ex. 4 - Curve fitting", "Exercise 4", "Curve fitting"},
		{"###### exercise 5", "Exercise 5", ""},
	}

	for _, tc := range cases {
		view := NotebookView{Cells: []CellView{
			markdownCell(0, tc.source),
			codeCell(1, "pass"),
		}}
		exercises := ExtractExercises(view)
		require.Len(t, exercises, 1, "source: %q", tc.source)
		require.Equal(t, tc.id, exercises[0].ExerciseID, "source: %q", tc.source)
		require.Equal(t, tc.title, exercises[0].Title, "source: %q", tc.source)
	}
}

func TestExtractExercisesIgnoresCellsBeforeFirstHeader(t *testing.T) {
	view := NotebookView{Cells: []CellView{
		markdownCell(0, "# Course intro"),
		codeCell(1, "import numpy as np"),
		markdownCell(2, "## Exercise 1"),
		codeCell(3, "np.zeros(3)"),
	}}

	exercises := ExtractExercises(view)
	require.Len(t, exercises, 1)
	require.Equal(t, 2, exercises[0].Cells[0].Index)
}

func TestExtractExercisesEmptyWhenNoHeaders(t *testing.T) {
	view := NotebookView{Cells: []CellView{
		markdownCell(0, "Just notes."),
		codeCell(1, "x = 1"),
	}}
	require.Empty(t, ExtractExercises(view))
}

func TestExtractExercisesWritingWhenMarkdownDominates(t *testing.T) {
	view := NotebookView{Cells: []CellView{
		markdownCell(0, "## Exercise 1"),
		markdownCell(1, "Explain part one."),
		markdownCell(2, "Explain part two."),
		codeCell(3, "x = 1"),
	}}

	exercises := ExtractExercises(view)
	require.Len(t, exercises, 1)
	require.Equal(t, ExerciseTypeWriting, exercises[0].ExerciseType)
}

func TestExerciseIDsAndTypes(t *testing.T) {
	exercises := []SolutionExercise{
		{ExerciseID: "Exercise 1", ExerciseType: ExerciseTypeCode},
		{ExerciseID: "Exercise 2", ExerciseType: ExerciseTypeWriting},
	}

	require.Equal(t, []string{"Exercise 1", "Exercise 2"}, ExerciseIDs(exercises))
	require.Equal(t, map[string]string{
		"Exercise 1": ExerciseTypeCode,
		"Exercise 2": ExerciseTypeWriting,
	}, ExerciseTypes(exercises))
}

func TestFormatSolutionAnnotatesTypes(t *testing.T) {
	exercises := ExtractExercises(NotebookView{Cells: []CellView{
		markdownCell(0, "## Exercise 1: Molarity"),
		codeCell(1, "molarity = 0.5"),
	}})

	text := FormatSolution(exercises)
	require.Contains(t, text, "SOLUTION NOTEBOOK")
	require.Contains(t, text, "### Exercise 1: Molarity [CODE]")
}
