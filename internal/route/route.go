package route

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Exercise is one graded section of a route specification.
type Exercise struct {
	ExerciseID   string
	Title        string
	Instructions string
	Optional     bool // bonus exercises must not penalize omission
}

// Route is a parsed assignment specification.
type Route struct {
	Title     string
	Preamble  string
	Exercises []Exercise
}

// Heading patterns. Route authors are inconsistent, so these tolerate
// heading depth 1-4, bold markup, and several separator styles:
//
//	## Exercise 1. Title
//	### **Exercise 1: Title**
//	## **Part A — Title**
//	### **Optional Hold (extra practice)**
var (
	exercisePattern = regexp.MustCompile(
		`(?i)^(#{1,4})\s+\*{0,2}(?:Exercise\s+)?(\d+[a-z]?(?:\.\d+)?)\*{0,2}[.\\\s:\-]*\*{0,2}\s*(.*)$`,
	)
	partPattern = regexp.MustCompile(
		`(?i)^(#{1,4})\s+\*{0,2}Part\s+([A-Za-z])\s*[—\-–:.]*\s*\*{0,2}\s*(.*)$`,
	)
	optionalSectionPattern = regexp.MustCompile(
		`(?i)^(#{1,4})\s+\*{0,2}(Optional\s+Hold|The\s+Dyno|Bonus\s+Hold|Anchor\s+Challenge)[^*]*\*{0,2}\s*(.*)$`,
	)
	optionalKeywords = regexp.MustCompile(
		`(?i)\b(optional|bonus|dyno|extra\s+practice|anchor\s+challenge)\b`,
	)
	titlePattern = regexp.MustCompile(`^#\s+(.+)$`)
)

// Parse turns route markdown into a Route. The first top-level heading seen
// before any exercise becomes the title, text before the first exercise
// heading becomes the preamble, and each exercise heading closes the prior
// exercise. Trailing content belongs to the last exercise.
func Parse(content string) Route {
	lines := strings.Split(content, "\n")

	var (
		title         string
		preambleLines []string
		exercises     []Exercise
		current       *Exercise
		body          []string
	)

	finalize := func() {
		if current != nil {
			current.Instructions = strings.TrimSpace(strings.Join(body, "\n"))
			exercises = append(exercises, *current)
		}
		current = nil
		body = nil
	}

	for _, line := range lines {
		if m := titlePattern.FindStringSubmatch(line); m != nil && title == "" && len(exercises) == 0 && current == nil {
			title = strings.TrimSpace(m[1])
			continue
		}

		exerciseMatch := exercisePattern.FindStringSubmatch(line)
		partMatch := partPattern.FindStringSubmatch(line)
		optionalMatch := optionalSectionPattern.FindStringSubmatch(line)

		if exerciseMatch != nil || partMatch != nil || optionalMatch != nil {
			finalize()

			var exerciseID, exerciseTitle string
			var isOptional bool

			switch {
			case exerciseMatch != nil:
				exerciseID = fmt.Sprintf("Exercise %s", exerciseMatch[2])
				exerciseTitle = strings.TrimSpace(exerciseMatch[3])
				isOptional = optionalKeywords.MatchString(line + " " + exerciseTitle)
			case partMatch != nil:
				exerciseID = fmt.Sprintf("Part %s", strings.ToUpper(partMatch[2]))
				exerciseTitle = strings.TrimSpace(partMatch[3])
				isOptional = optionalKeywords.MatchString(line + " " + exerciseTitle)
			default:
				section := strings.TrimSpace(optionalMatch[2])
				exerciseID = strings.ReplaceAll(section, " ", "_")
				exerciseTitle = strings.TrimSpace(optionalMatch[3])
				if exerciseTitle == "" {
					exerciseTitle = section
				}
				isOptional = true
			}

			exerciseTitle = strings.TrimSpace(strings.TrimRight(exerciseTitle, "*"))

			current = &Exercise{
				ExerciseID: exerciseID,
				Title:      exerciseTitle,
				Optional:   isOptional,
			}
			continue
		}

		if current != nil {
			body = append(body, line)
		} else {
			preambleLines = append(preambleLines, line)
		}
	}

	finalize()

	return Route{
		Title:     title,
		Preamble:  strings.TrimSpace(strings.Join(preambleLines, "\n")),
		Exercises: exercises,
	}
}

// ParseFile reads and parses a route markdown file from disk.
func ParseFile(path string) (Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Route{}, fmt.Errorf("read route %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// ExerciseIDs returns all exercise identifiers in declaration order.
func (r Route) ExerciseIDs() []string {
	ids := make([]string, 0, len(r.Exercises))
	for _, ex := range r.Exercises {
		ids = append(ids, ex.ExerciseID)
	}
	return ids
}

// FormatForPrompt renders the route for embedding in a grading prompt.
// Optional exercises carry an explicit [OPTIONAL] marker so the model can
// apply the leniency rules.
func (r Route) FormatForPrompt() string {
	var parts []string

	if r.Title != "" {
		parts = append(parts, fmt.Sprintf("# %s\n", r.Title))
	}
	if r.Preamble != "" {
		parts = append(parts, r.Preamble+"\n")
	}

	for _, ex := range r.Exercises {
		marker := ""
		if ex.Optional {
			marker = " [OPTIONAL]"
		}
		parts = append(parts, fmt.Sprintf("## %s%s", ex.ExerciseID, marker))
		if ex.Title != "" {
			parts = append(parts, fmt.Sprintf(": %s", ex.Title))
		}
		parts = append(parts, "\n")
		parts = append(parts, ex.Instructions)
		parts = append(parts, "\n")
	}

	return strings.Join(parts, "\n")
}
