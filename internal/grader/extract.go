package grader

import (
	"regexp"
	"strings"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON pulls the JSON object out of a model response. Models wrap
// their output in markdown fences or prose despite instructions, so the
// strategies run from most to least specific: fenced block, bare object,
// first-to-last brace span, then the raw content as a last resort so the
// validator produces the error message.
func ExtractJSON(content string) string {
	if m := fencedJSONPattern.FindStringSubmatch(content); m != nil {
		return m[1]
	}

	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") {
		return trimmed
	}

	first := strings.Index(content, "{")
	last := strings.LastIndex(content, "}")
	if first >= 0 && last > first {
		return content[first : last+1]
	}

	return content
}
