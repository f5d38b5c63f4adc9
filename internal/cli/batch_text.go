package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mselheim/routegrader/internal/grader"
	"github.com/mselheim/routegrader/internal/textsub"
)

func init() {
	cmd := &cobra.Command{
		Use:   "batch-text",
		Short: "Grade a folder of student text submissions",
		Long: "Grades text deliverables (git logs, reflections, .docx reports) grouped\n" +
			"by student name. Each student may have a deliverable plus an optional\n" +
			"logbook file.",
		RunE: runBatchText,
	}

	cmd.Flags().StringP("route", "r", "", "Path to the route/assignment markdown file")
	cmd.Flags().StringP("submissions", "i", "", "Folder containing student text submissions")
	cmd.Flags().StringP("out", "o", "", "Output folder for grading results")
	cmd.Flags().String("route-id", "", "Route identifier to include in output")

	cmd.MarkFlagRequired("route")
	cmd.MarkFlagRequired("submissions")
	cmd.MarkFlagRequired("out")

	RootCmd.AddCommand(cmd)
}

func runBatchText(cmd *cobra.Command, _ []string) error {
	routePath, _ := cmd.Flags().GetString("route")
	submissionsDir, _ := cmd.Flags().GetString("submissions")
	outDir, _ := cmd.Flags().GetString("out")
	routeID, _ := cmd.Flags().GetString("route-id")

	submissions, err := textsub.ListSubmissions(submissionsDir)
	if err != nil {
		return err
	}
	if len(submissions) == 0 {
		return fmt.Errorf("no text submissions found in %s", submissionsDir)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Found %d student submissions to grade\n", len(submissions))

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

	for i, sub := range submissions {
		outputFile := filepath.Join(outDir, sub.Student+"_grading.json")
		progress := fmt.Sprintf("[%d/%d]", i+1, len(submissions))

		if sub.Deliverable == "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Skipping %s - no deliverable found\n", progress, sub.Student)
			results = append(results, batchEntry{
				StudentID: sub.Student,
				Error:     "No deliverable file found",
			})
			failed++
			continue
		}

		if entry, ok := loadExistingEntry(outputFile, sub.Student, ""); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Skipping %s - already graded\n", progress, sub.Student)
			entry.Deliverable = filepath.Base(sub.Deliverable)
			if sub.Logbook != "" {
				entry.Logbook = filepath.Base(sub.Logbook)
			}
			results = append(results, entry)
			successful++
			continue
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "%s Grading %s...\n", progress, sub.Student)

		tctx, err := grader.PrepareTextContext(routePath, sub.Deliverable, sub.Logbook, routeID, sub.Student)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "    ERROR: %v\n", err)
			results = append(results, batchEntry{StudentID: sub.Student, Error: err.Error()})
			failed++
			continue
		}

		result, err := grader.GradeText(cmd.Context(), client, tctx, opts)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "    ERROR: %v\n", err)
			results = append(results, batchEntry{StudentID: sub.Student, Error: err.Error()})
			failed++
			continue
		}

		if err := writeResultFile(result, outputFile); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "    ERROR: %v\n", err)
			results = append(results, batchEntry{StudentID: sub.Student, Error: err.Error()})
			failed++
			continue
		}

		ratings := exerciseRatings(result)
		entry := batchEntry{
			StudentID:   sub.Student,
			Deliverable: filepath.Base(sub.Deliverable),
			Exercises:   ratings,
			OutputFile:  filepath.Base(outputFile),
		}
		if sub.Logbook != "" {
			entry.Logbook = filepath.Base(sub.Logbook)
		}
		results = append(results, entry)
		fmt.Fprintf(cmd.ErrOrStderr(), "    %s\n", formatRatings(ratings))
		successful++
	}

	summaryFile, err := writeSummary(outDir, batchSummary{
		RouteID:       routeID,
		GradingMode:   "text",
		ReferenceFile: filepath.Base(routePath),
		TotalGraded:   len(submissions),
		Successful:    successful,
		Failed:        failed,
		Results:       results,
	})
	if err != nil {
		return err
	}

	printBatchFooter(cmd, "Batch text grading complete!", successful, len(submissions), failed, outDir, summaryFile)
	return nil
}
