package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mselheim/routegrader/internal/grader"
)

func init() {
	cmd := &cobra.Command{
		Use:   "grade-text",
		Short: "Grade a text submission against a route specification",
		Long: "Grades a text deliverable (git log, reflection, .docx report) with an\n" +
			"optional companion logbook file.",
		RunE: runGradeText,
	}

	cmd.Flags().StringP("route", "r", "", "Path to the route/assignment markdown file")
	cmd.Flags().String("deliverable", "", "Path to the student deliverable file")
	cmd.Flags().String("logbook", "", "Path to the optional logbook file")
	cmd.Flags().StringP("out", "o", "", "Path to write grading JSON output (default: stdout)")
	cmd.Flags().String("route-id", "", "Route identifier to include in output")
	cmd.Flags().String("student-id", "", "Student identifier to include in output")

	cmd.MarkFlagRequired("route")
	cmd.MarkFlagRequired("deliverable")

	RootCmd.AddCommand(cmd)
}

func runGradeText(cmd *cobra.Command, _ []string) error {
	routePath, _ := cmd.Flags().GetString("route")
	deliverablePath, _ := cmd.Flags().GetString("deliverable")
	logbookPath, _ := cmd.Flags().GetString("logbook")
	outPath, _ := cmd.Flags().GetString("out")
	routeID, _ := cmd.Flags().GetString("route-id")
	studentID, _ := cmd.Flags().GetString("student-id")

	tctx, err := grader.PrepareTextContext(routePath, deliverablePath, logbookPath, routeID, studentID)
	if err != nil {
		return err
	}

	logger := newLogger()
	client, err := newClient(logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Grading submission with %s...\n", client.Name())

	result, err := grader.GradeText(cmd.Context(), client, tctx, gradeOptions(logger))
	if err != nil {
		return err
	}

	if err := writeResult(result, outPath); err != nil {
		return err
	}
	printRatings(result)
	return nil
}
