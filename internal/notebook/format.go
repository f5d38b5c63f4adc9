package notebook

import (
	"fmt"
	"strings"
)

// maxOutputLines caps how many lines of a single output are embedded in the
// prompt.
const maxOutputLines = 50

// FormatForPrompt renders a student notebook view as prompt-ready text:
// a section banner, then per-cell headers with index, type and execution
// metadata followed by source and a line-capped slice of each output.
func FormatForPrompt(view NotebookView) string {
	var b strings.Builder
	banner(&b, "STUDENT NOTEBOOK")

	for _, cell := range view.Cells {
		b.WriteString(cellHeader(cell))
		b.WriteString("\n")
		b.WriteString(strings.Repeat("-", 40))
		b.WriteString("\n")
		b.WriteString(cell.Source)
		b.WriteString("\n")

		if len(cell.Outputs) > 0 {
			b.WriteString("\n>>> Output:\n")
			writeOutputs(&b, cell.Outputs)
		}

		b.WriteString("\n")
	}

	return b.String()
}

// FormatSolution renders solution exercises as prompt-ready text, grouping
// cells under per-exercise headers annotated with the inferred type and
// labelling outputs as expected outputs.
func FormatSolution(exercises []SolutionExercise) string {
	var b strings.Builder
	banner(&b, "SOLUTION NOTEBOOK")

	for _, ex := range exercises {
		title := ""
		if ex.Title != "" {
			title = ": " + ex.Title
		}
		fmt.Fprintf(&b, "### %s%s [%s]\n", ex.ExerciseID, title, strings.ToUpper(ex.ExerciseType))
		b.WriteString(strings.Repeat("-", 40))
		b.WriteString("\n")

		for _, cell := range ex.Cells {
			b.WriteString(cellHeader(cell))
			b.WriteString("\n")
			b.WriteString(cell.Source)
			b.WriteString("\n")

			if len(cell.Outputs) > 0 {
				b.WriteString("\n>>> Expected Output:\n")
				writeOutputs(&b, cell.Outputs)
			}

			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	return b.String()
}

// CellExcerpt returns a short excerpt from one cell, combining the source
// with the beginning of its first output when present. Used when rendering
// evidence back into reports.
func CellExcerpt(view NotebookView, cellIndex, maxLen int) string {
	if cellIndex < 0 || cellIndex >= len(view.Cells) {
		return ""
	}

	cell := view.Cells[cellIndex]
	text := cell.Source
	if cell.CellType == "code" && len(cell.Outputs) > 0 {
		first := cell.Outputs[0]
		if len(first) > 100 {
			first = first[:100]
		}
		text += "\n>>> " + first
	}

	return Truncate(text, maxLen)
}

func cellHeader(cell CellView) string {
	header := fmt.Sprintf("[Cell %d] (%s)", cell.Index, cell.CellType)
	if cell.ExecutionCount != nil {
		header += fmt.Sprintf(" In[%d]", *cell.ExecutionCount)
	}
	return header
}

func writeOutputs(b *strings.Builder, outputs []string) {
	for _, output := range outputs {
		lines := strings.Split(output, "\n")
		if len(lines) > maxOutputLines {
			lines = append(lines[:maxOutputLines], "... [output truncated]")
		}
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}
}

func banner(b *strings.Builder, title string) {
	sep := strings.Repeat("=", 60)
	b.WriteString(sep)
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(sep)
	b.WriteString("\n\n")
}
