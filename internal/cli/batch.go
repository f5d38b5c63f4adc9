package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mselheim/routegrader/internal/grader"
	"github.com/mselheim/routegrader/internal/llm"
	"github.com/mselheim/routegrader/internal/schema"
)

// batchEntry is one row of the batch summary file.
type batchEntry struct {
	StudentID          string            `json:"student_id"`
	File               string            `json:"file,omitempty"`
	Deliverable        string            `json:"deliverable,omitempty"`
	Logbook            string            `json:"logbook,omitempty"`
	Exercises          map[string]string `json:"exercises,omitempty"`
	ManualReviewNeeded bool              `json:"manual_review_needed,omitempty"`
	OutputFile         string            `json:"output_file,omitempty"`
	Skipped            bool              `json:"skipped,omitempty"`
	Error              string            `json:"error,omitempty"`
}

type batchSummary struct {
	RouteID       string       `json:"route_id,omitempty"`
	GradingMode   string       `json:"grading_mode"`
	ReferenceFile string       `json:"reference_file"`
	TotalGraded   int          `json:"total_graded"`
	Successful    int          `json:"successful"`
	Failed        int          `json:"failed"`
	Results       []batchEntry `json:"results"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Grade a folder of student notebooks",
		Long: "Grades every notebook in the submissions folder against a route or\n" +
			"solution notebook. One failure logs and continues; results land as\n" +
			"individual JSON files plus a summary.json. Already-graded notebooks\n" +
			"are skipped so interrupted runs can resume.",
		RunE: runBatch,
	}

	cmd.Flags().StringP("route", "r", "", "Path to the route/assignment markdown file")
	cmd.Flags().StringP("solution", "s", "", "Path to the solution notebook (.ipynb)")
	cmd.Flags().StringP("submissions", "i", "", "Folder containing student notebooks")
	cmd.Flags().StringP("out", "o", "", "Output folder for grading results")
	cmd.Flags().String("route-id", "", "Route identifier to include in output")
	cmd.Flags().String("pattern", "*.ipynb", "Glob pattern for notebook files")

	cmd.MarkFlagRequired("submissions")
	cmd.MarkFlagRequired("out")

	RootCmd.AddCommand(cmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	routePath, _ := cmd.Flags().GetString("route")
	solutionPath, _ := cmd.Flags().GetString("solution")
	submissionsDir, _ := cmd.Flags().GetString("submissions")
	outDir, _ := cmd.Flags().GetString("out")
	routeID, _ := cmd.Flags().GetString("route-id")
	pattern, _ := cmd.Flags().GetString("pattern")

	if routePath == "" && solutionPath == "" {
		return errors.New("you must provide either --route or --solution")
	}
	if routePath != "" && solutionPath != "" {
		return errors.New("cannot use both --route and --solution, choose one")
	}
	useSolution := solutionPath != ""

	notebooks, err := filepath.Glob(filepath.Join(submissionsDir, pattern))
	if err != nil {
		return fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if len(notebooks) == 0 {
		return fmt.Errorf("no notebooks found matching %q in %s", pattern, submissionsDir)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Found %d notebooks to grade\n", len(notebooks))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	logger := newLogger()
	client, err := newClient(logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Using %s\n\n", client.Name())

	opts := gradeOptions(logger)
	var results []batchEntry
	successful, failed := 0, 0

	for i, notebookPath := range notebooks {
		studentName := stem(notebookPath)
		outputFile := filepath.Join(outDir, studentName+"_grading.json")
		progress := fmt.Sprintf("[%d/%d]", i+1, len(notebooks))

		if entry, ok := loadExistingEntry(outputFile, studentName, filepath.Base(notebookPath)); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Skipping %s - already graded\n", progress, filepath.Base(notebookPath))
			results = append(results, entry)
			successful++
			continue
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "%s Grading %s...\n", progress, filepath.Base(notebookPath))

		result, err := gradeOneNotebook(cmd, client, opts, useSolution, routePath, solutionPath, notebookPath, routeID, studentName)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "    ERROR: %v\n", err)
			results = append(results, batchEntry{
				StudentID: studentName,
				File:      filepath.Base(notebookPath),
				Error:     err.Error(),
			})
			failed++
			continue
		}

		if err := writeResultFile(result, outputFile); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "    ERROR: %v\n", err)
			results = append(results, batchEntry{
				StudentID: studentName,
				File:      filepath.Base(notebookPath),
				Error:     err.Error(),
			})
			failed++
			continue
		}

		ratings := exerciseRatings(result)
		results = append(results, batchEntry{
			StudentID:          studentName,
			File:               filepath.Base(notebookPath),
			Exercises:          ratings,
			ManualReviewNeeded: needsManualReview(result),
			OutputFile:         filepath.Base(outputFile),
		})
		fmt.Fprintf(cmd.ErrOrStderr(), "    %s\n", formatRatings(ratings))
		successful++
	}

	mode := "route"
	reference := routePath
	if useSolution {
		mode = "solution"
		reference = solutionPath
	}

	summaryFile, err := writeSummary(outDir, batchSummary{
		RouteID:       routeID,
		GradingMode:   mode,
		ReferenceFile: filepath.Base(reference),
		TotalGraded:   len(notebooks),
		Successful:    successful,
		Failed:        failed,
		Results:       results,
	})
	if err != nil {
		return err
	}

	printBatchFooter(cmd, "Batch grading complete!", successful, len(notebooks), failed, outDir, summaryFile)
	return nil
}

func gradeOneNotebook(cmd *cobra.Command, client llm.Client, opts grader.Options, useSolution bool, routePath, solutionPath, notebookPath, routeID, studentName string) (*schema.GradingResult, error) {
	if useSolution {
		sctx, err := grader.PrepareSolutionContext(solutionPath, notebookPath, routeID, studentName)
		if err != nil {
			return nil, err
		}
		return grader.GradeWithSolution(cmd.Context(), client, sctx, opts)
	}

	gctx, err := grader.PrepareContext(routePath, notebookPath, routeID, studentName)
	if err != nil {
		return nil, err
	}
	return grader.Grade(cmd.Context(), client, gctx, opts)
}

// loadExistingEntry resumes an interrupted batch by summarizing an existing
// result file instead of re-grading.
func loadExistingEntry(outputFile, studentName, fileName string) (batchEntry, bool) {
	data, err := os.ReadFile(outputFile)
	if err != nil {
		return batchEntry{}, false
	}

	result, err := schema.Validate(data)
	if err != nil {
		return batchEntry{}, false
	}

	return batchEntry{
		StudentID:  studentName,
		File:       fileName,
		Exercises:  exerciseRatings(result),
		OutputFile: filepath.Base(outputFile),
		Skipped:    true,
	}, true
}

func exerciseRatings(result *schema.GradingResult) map[string]string {
	ratings := make(map[string]string, len(result.Exercises))
	for _, ex := range result.Exercises {
		ratings[ex.ExerciseID] = string(ex.Rating)
	}
	return ratings
}

func needsManualReview(result *schema.GradingResult) bool {
	for _, ex := range result.Exercises {
		for _, flag := range ex.Flags {
			if flag == schema.FlagManualReview {
				return true
			}
		}
	}
	return false
}

func formatRatings(ratings map[string]string) string {
	parts := make([]string, 0, len(ratings))
	for id, rating := range ratings {
		parts = append(parts, fmt.Sprintf("%s: %s", id, rating))
	}
	return strings.Join(parts, ", ")
}

func writeResultFile(result *schema.GradingResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeSummary(outDir string, summary batchSummary) (string, error) {
	path := filepath.Join(outDir, "summary.json")
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, data, 0o644)
}

func printBatchFooter(cmd *cobra.Command, title string, successful, total, failed int, outDir, summaryFile string) {
	fmt.Fprintln(cmd.ErrOrStderr())
	fmt.Fprintln(cmd.ErrOrStderr(), strings.Repeat("=", 50))
	fmt.Fprintln(cmd.ErrOrStderr(), title)
	fmt.Fprintf(cmd.ErrOrStderr(), "  Successful: %d/%d\n", successful, total)
	if failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "  Failed: %d\n", failed)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "  Results: %s\n", outDir)
	fmt.Fprintf(cmd.ErrOrStderr(), "  Summary: %s\n", summaryFile)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
