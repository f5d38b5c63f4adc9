package prompt

import (
	"fmt"
	"strings"
)

// repairPreviewLimit bounds how much of an invalid response is echoed back
// in a repair prompt.
const repairPreviewLimit = 2000

// textSchemaBlock is the inline output contract embedded in text-submission
// prompts; the text system prompt does not carry the schema itself.
const textSchemaBlock = `{
  "schema_version": "1.0",
  "route_id": "<route identifier or null>",
  "student_id": "<student identifier or null>",
  "exercises": [
    {
      "exercise_id": "<Exercise N or Part X>",
      "rating": "EXCELLENT | OK | NEEDS_WORK",
      "rationale": "<specific feedback>",
      "flags": ["<optional flags like manual_review>"]
    }
  ],
  "overall_summary": "<brief overall assessment>"
}`

func orNull(id string) string {
	if id == "" {
		return "null"
	}
	return id
}

func writeIdentifiers(b *strings.Builder, routeID, studentID string) {
	if routeID != "" {
		fmt.Fprintf(b, "Route ID: %s\n", routeID)
	}
	if studentID != "" {
		fmt.Fprintf(b, "Student ID: %s\n", studentID)
	}
}

// BuildGradingPrompt assembles the user prompt for route-based grading.
func BuildGradingPrompt(routeText, notebookText string, exerciseIDs []string, routeID, studentID string) string {
	var b strings.Builder

	b.WriteString("## Assignment Specification\n\n")
	b.WriteString(routeText)
	b.WriteString("\n\n## Student Submission\n\n")
	b.WriteString(notebookText)
	b.WriteString("\n\n## Grading Task\n\n")
	b.WriteString("Grade the student's notebook against the assignment specification above.\n\n")
	b.WriteString("Exercises to grade:\n")
	for _, id := range exerciseIDs {
		fmt.Fprintf(&b, "- %s\n", id)
	}
	b.WriteString("\n")
	writeIdentifiers(&b, routeID, studentID)
	b.WriteString(`
For each exercise:
1. Find the relevant cells in the student's notebook
2. Evaluate correctness, completeness, and presentation
3. Assign a rating (EXCELLENT, OK, or NEEDS_WORK)
4. Provide specific evidence with cell indices and excerpts
5. List any missing or incorrect elements

Remember:
- You MUST cite specific cell indices for every claim
- Include short excerpts as evidence
- Be constructive but accurate in your assessment

Respond with ONLY valid JSON matching the schema described in your instructions.`)

	return b.String()
}

// BuildSolutionGradingPrompt assembles the user prompt for solution-based
// grading. Each exercise id is annotated with its inferred type so the model
// can apply the CODE/WRITING rules from the system prompt.
func BuildSolutionGradingPrompt(solutionText, notebookText string, exerciseIDs []string, exerciseTypes map[string]string, routeID, studentID string) string {
	var b strings.Builder

	b.WriteString("## Solution Notebook (Expected Outputs)\n\n")
	b.WriteString(solutionText)
	b.WriteString("\n\n## Student Submission\n\n")
	b.WriteString(notebookText)
	b.WriteString("\n\n## Grading Task\n\n")
	b.WriteString("Compare the student's notebook against the solution notebook above.\n\n")
	b.WriteString("Exercises to grade:\n")
	for _, id := range exerciseIDs {
		exerciseType, ok := exerciseTypes[id]
		if !ok {
			exerciseType = "code"
		}
		fmt.Fprintf(&b, "- %s [%s]\n", id, strings.ToUpper(exerciseType))
	}
	b.WriteString("\n")
	writeIdentifiers(&b, routeID, studentID)
	b.WriteString(`
For each exercise:
1. Find the corresponding cells in the student's notebook
2. Compare outputs to the expected outputs in the solution
3. For CODE exercises: Check if outputs match or are equivalent
4. For WRITING exercises: Flag as "manual_review" and give rating OK
5. Assign a rating (EXCELLENT, OK, or NEEDS_WORK)
6. Provide specific evidence with cell indices and excerpts

Remember:
- You MUST cite specific cell indices for every claim
- Include short excerpts as evidence
- Award partial credit (OK) for correct approach with minor issues
- WRITING exercises should always get "manual_review" flag

Respond with ONLY valid JSON matching the schema described in your instructions.`)

	return b.String()
}

// BuildTextGradingPrompt assembles the user prompt for text submissions.
func BuildTextGradingPrompt(routeText, submissionText string, exerciseIDs []string, routeID, studentID string) string {
	var b strings.Builder

	b.WriteString("# Grading Task\n\n")
	b.WriteString("Grade the following text submission against the assignment instructions.\n\n")
	b.WriteString("## Assignment Instructions\n")
	b.WriteString(routeText)
	b.WriteString("\n\n## Student Submission\n")
	b.WriteString(submissionText)
	b.WriteString("\n\n## Exercises to Grade\n")
	b.WriteString(strings.Join(exerciseIDs, ", "))
	b.WriteString("\n\n## Output Format\nReturn a JSON object matching this schema:\n")
	b.WriteString(textSchemaBlock)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Route ID: %s\n", orNull(routeID))
	fmt.Fprintf(&b, "Student ID: %s\n", orNull(studentID))
	b.WriteString("\nGrade each exercise and provide specific feedback based on what you see in their submission.")

	return b.String()
}

// BuildRepairPrompt asks the model to fix a previous response that failed
// JSON parsing or schema validation. The invalid output is echoed back as a
// bounded preview together with the validation error.
func BuildRepairPrompt(invalidJSON, errorMessage string) string {
	preview := invalidJSON
	if len(preview) > repairPreviewLimit {
		preview = preview[:repairPreviewLimit]
	}

	var b strings.Builder
	b.WriteString("The previous JSON response was invalid.\n\n")
	fmt.Fprintf(&b, "Error: %s\n\n", errorMessage)
	b.WriteString("Invalid response:\n```\n")
	b.WriteString(preview)
	b.WriteString("\n```\n\n")
	b.WriteString(`Please provide a corrected JSON response that:
1. Is valid JSON (properly escaped strings, no trailing commas)
2. Matches the required schema exactly
3. Contains all required fields

Respond with ONLY the corrected JSON, no other text.`)

	return b.String()
}
