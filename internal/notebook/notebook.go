package notebook

import (
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"
)

// MaxCellChars bounds the length of a single cell's source text and of each
// rendered output. Generous so students who put multiple exercises in one
// cell are not cut off.
const MaxCellChars = 15000

const truncationMarker = "\n... [truncated]"

// CellView is a compact representation of a notebook cell for grading.
type CellView struct {
	Index          int
	CellType       string // "code", "markdown", "raw"
	Source         string
	Outputs        []string
	ExecutionCount *int // nil means the cell was never executed
}

// NotebookView is a compact representation of a notebook for grading.
type NotebookView struct {
	Cells    []CellView
	Metadata map[string]interface{}
}

type rawOutput struct {
	OutputType string                     `json:"output_type"`
	Text       json.RawMessage            `json:"text"`
	Data       map[string]json.RawMessage `json:"data"`
	Ename      string                     `json:"ename"`
	Evalue     string                     `json:"evalue"`
}

type rawCell struct {
	CellType       string          `json:"cell_type"`
	Source         json.RawMessage `json:"source"`
	ExecutionCount *int            `json:"execution_count"`
	Outputs        []rawOutput     `json:"outputs"`
}

type rawNotebook struct {
	Cells    []rawCell              `json:"cells"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Parse converts raw notebook JSON into a NotebookView. Cell sources given
// as line lists are joined into single strings; sources and outputs are
// truncated independently to MaxCellChars.
func Parse(data []byte) (NotebookView, error) {
	var nb rawNotebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return NotebookView{}, fmt.Errorf("parse notebook json: %w", err)
	}

	cells := make([]CellView, 0, len(nb.Cells))
	for idx, cell := range nb.Cells {
		source, err := joinedText(cell.Source)
		if err != nil {
			return NotebookView{}, fmt.Errorf("parse cell %d source: %w", idx, err)
		}

		var outputs []string
		var executionCount *int
		if cell.CellType == "code" {
			executionCount = cell.ExecutionCount
			for _, output := range cell.Outputs {
				text := extractOutputText(output)
				if text != "" {
					outputs = append(outputs, Truncate(text, MaxCellChars))
				}
			}
		}

		cells = append(cells, CellView{
			Index:          idx,
			CellType:       cell.CellType,
			Source:         Truncate(source, MaxCellChars),
			Outputs:        outputs,
			ExecutionCount: executionCount,
		})
	}

	metadata := nb.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	return NotebookView{Cells: cells, Metadata: metadata}, nil
}

// ParseFile reads and parses a .ipynb file from disk.
func ParseFile(path string) (NotebookView, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NotebookView{}, fmt.Errorf("read notebook %s: %w", path, err)
	}
	return Parse(data)
}

// extractOutputText renders a single cell output as human-readable text.
// Rich outputs prefer the plain-text representation and fall back to a
// placeholder tag; errors render as a one-line summary.
func extractOutputText(output rawOutput) string {
	switch output.OutputType {
	case "stream":
		text, err := joinedText(output.Text)
		if err != nil {
			return ""
		}
		return text
	case "execute_result", "display_data":
		if plain, ok := output.Data["text/plain"]; ok {
			text, err := joinedText(plain)
			if err == nil {
				return text
			}
		}
		if _, ok := output.Data["text/html"]; ok {
			return "[HTML output]"
		}
		if _, ok := output.Data["image/png"]; ok {
			return "[Image output]"
		}
		if _, ok := output.Data["image/jpeg"]; ok {
			return "[Image output]"
		}
		return "[Data output]"
	case "error":
		ename := output.Ename
		if ename == "" {
			ename = "Error"
		}
		return fmt.Sprintf("[Error: %s: %s]", ename, output.Evalue)
	}
	return ""
}

// joinedText decodes a notebook text field that may be either a string or a
// list of line strings.
func joinedText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single, nil
	}

	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", fmt.Errorf("text field is neither string nor string list")
	}

	total := 0
	for _, line := range lines {
		total += len(line)
	}
	buf := make([]byte, 0, total)
	for _, line := range lines {
		buf = append(buf, line...)
	}
	return string(buf), nil
}

// Truncate caps text at max bytes, replacing the tail with an explicit
// truncation marker. The result never exceeds max and never ends in an
// invalid UTF-8 sequence.
func Truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}

	cut := max - 20
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + truncationMarker
}
