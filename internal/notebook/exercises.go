package notebook

import (
	"fmt"
	"regexp"
	"strings"
)

// Exercise type classifications for solution exercises.
const (
	ExerciseTypeCode    = "code"
	ExerciseTypeWriting = "writing"
)

// SolutionExercise is one exercise extracted from a solution notebook,
// carrying the cells that belong to it.
type SolutionExercise struct {
	ExerciseID   string
	Title        string
	Cells        []CellView
	ExerciseType string // "code" or "writing"
}

// exerciseHeaderPattern matches the markdown headers that open an exercise
// in a solution notebook. Tolerant of heading depth, bold markup, and the
// abbreviated "Ex."/"Ex" forms, with an optional title after a separator:
//
//	## Exercise 1
//	### **Exercise 2a**
//	Ex. 3: Plotting
var exerciseHeaderPattern = regexp.MustCompile(
	`(?im)^(?:#{1,6}\s+)?(?:\*\*)?(?:Exercise|Ex\.?)\s+(\d+[a-z]?)(?:\*\*)?(?:\s*[:.\-—]\s*(.*))?$`,
)

// ExtractExercises scans a solution notebook for exercise headers. A
// markdown cell matching the header pattern starts a new exercise group that
// accumulates every following cell (header included) until the next header
// or the end of the notebook. An empty result means the notebook carries no
// exercise markers; callers must treat that as an unusable solution.
func ExtractExercises(view NotebookView) []SolutionExercise {
	var exercises []SolutionExercise
	var current *SolutionExercise

	for _, cell := range view.Cells {
		if cell.CellType == "markdown" {
			if match := exerciseHeaderPattern.FindStringSubmatch(cell.Source); match != nil {
				if current != nil {
					exercises = append(exercises, finalizeExercise(*current))
				}
				current = &SolutionExercise{
					ExerciseID: fmt.Sprintf("Exercise %s", match[1]),
					Title:      strings.TrimSpace(match[2]),
					Cells:      []CellView{cell},
				}
				continue
			}
		}

		if current != nil {
			current.Cells = append(current.Cells, cell)
		}
	}

	if current != nil {
		exercises = append(exercises, finalizeExercise(*current))
	}

	return exercises
}

// finalizeExercise classifies an exercise from its cell composition. The
// header cell is always markdown, so it is excluded from the markdown count.
func finalizeExercise(ex SolutionExercise) SolutionExercise {
	codeCells := 0
	markdownCells := 0
	for _, cell := range ex.Cells {
		switch cell.CellType {
		case "code":
			codeCells++
		case "markdown":
			markdownCells++
		}
	}

	if codeCells == 0 || (markdownCells-1) > codeCells {
		ex.ExerciseType = ExerciseTypeWriting
	} else {
		ex.ExerciseType = ExerciseTypeCode
	}
	return ex
}

// ExerciseIDs returns the exercise identifiers in notebook order.
func ExerciseIDs(exercises []SolutionExercise) []string {
	ids := make([]string, 0, len(exercises))
	for _, ex := range exercises {
		ids = append(ids, ex.ExerciseID)
	}
	return ids
}

// ExerciseTypes maps each exercise identifier to its inferred type.
func ExerciseTypes(exercises []SolutionExercise) map[string]string {
	types := make(map[string]string, len(exercises))
	for _, ex := range exercises {
		types[ex.ExerciseID] = ex.ExerciseType
	}
	return types
}
