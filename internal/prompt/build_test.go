package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildGradingPromptEmbedsSections(t *testing.T) {
	p := BuildGradingPrompt(
		"# Lab\nIntro.",
		"=== STUDENT NOTEBOOK ===",
		[]string{"Exercise 1", "Exercise 2"},
		"RID_001",
		"smith_john",
	)

	require.Contains(t, p, "## Assignment Specification")
	require.Contains(t, p, "# Lab")
	require.Contains(t, p, "## Student Submission")
	require.Contains(t, p, "- Exercise 1\n- Exercise 2")
	require.Contains(t, p, "Route ID: RID_001")
	require.Contains(t, p, "Student ID: smith_john")
	require.Contains(t, p, "ONLY valid JSON")
}

func TestBuildGradingPromptOmitsEmptyIdentifiers(t *testing.T) {
	p := BuildGradingPrompt("route", "notebook", []string{"Exercise 1"}, "", "")
	require.NotContains(t, p, "Route ID:")
	require.NotContains(t, p, "Student ID:")
}

func TestBuildSolutionGradingPromptAnnotatesTypes(t *testing.T) {
	p := BuildSolutionGradingPrompt(
		"solution text",
		"notebook text",
		[]string{"Exercise 1", "Exercise 2", "Exercise 3"},
		map[string]string{"Exercise 1": "code", "Exercise 2": "writing"},
		"", "",
	)

	require.Contains(t, p, "- Exercise 1 [CODE]")
	require.Contains(t, p, "- Exercise 2 [WRITING]")
	require.Contains(t, p, "- Exercise 3 [CODE]", "unknown ids default to code")
	require.Contains(t, p, "Solution Notebook (Expected Outputs)")
}

func TestBuildTextGradingPromptRendersNullIdentifiers(t *testing.T) {
	p := BuildTextGradingPrompt("route", "submission", []string{"Exercise 1"}, "", "sid_9")
	require.Contains(t, p, "Route ID: null")
	require.Contains(t, p, "Student ID: sid_9")
	require.Contains(t, p, `"rating": "EXCELLENT | OK | NEEDS_WORK"`)
}

func TestBuildRepairPromptTruncatesPreview(t *testing.T) {
	invalid := strings.Repeat("x", repairPreviewLimit+500)
	p := BuildRepairPrompt(invalid, "unexpected end of JSON input")

	require.Contains(t, p, "Error: unexpected end of JSON input")
	require.Contains(t, p, "ONLY the corrected JSON")
	require.Equal(t, repairPreviewLimit, strings.Count(p, "x"))
}

func TestSystemPromptsEncodeContract(t *testing.T) {
	for _, sp := range []string{SystemPrompt, SolutionSystemPrompt} {
		require.Contains(t, sp, "EXCELLENT")
		require.Contains(t, sp, "NEEDS_WORK")
		require.Contains(t, sp, "schema_version")
		require.Contains(t, sp, "ONLY valid JSON")
	}
	require.Contains(t, SolutionSystemPrompt, "manual_review")
	require.Contains(t, TextSystemPrompt, "Git Log Submissions")
}
