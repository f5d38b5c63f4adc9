package grader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSONFencedBlock(t *testing.T) {
	content := "Here is the grading:\n```json\n{\"overall_summary\": \"ok\"}\n```\nLet me know!"
	require.Equal(t, `{"overall_summary": "ok"}`, ExtractJSON(content))
}

func TestExtractJSONFencedBlockWithoutTag(t *testing.T) {
	content := "```\n{\"a\": 1}\n```"
	require.Equal(t, `{"a": 1}`, ExtractJSON(content))
}

func TestExtractJSONBareObject(t *testing.T) {
	content := "  \n{\"a\": 1}\n  "
	require.Equal(t, `{"a": 1}`, ExtractJSON(content))
}

func TestExtractJSONBraceSpanInProse(t *testing.T) {
	content := `Sure! The result is {"a": {"b": 2}} as requested.`
	require.Equal(t, `{"a": {"b": 2}}`, ExtractJSON(content))
}

func TestExtractJSONNoBracesReturnsRaw(t *testing.T) {
	content := "I cannot grade this submission."
	require.Equal(t, content, ExtractJSON(content))
}
