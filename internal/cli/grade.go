package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mselheim/routegrader/internal/grader"
	"github.com/mselheim/routegrader/internal/schema"
)

func init() {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade a student notebook against a route or solution notebook",
		Long: "Grades a student Jupyter notebook. Provide exactly one reference:\n" +
			"--route (assignment markdown) or --solution (solution notebook).",
		RunE: runGrade,
	}

	cmd.Flags().StringP("route", "r", "", "Path to the route/assignment markdown file")
	cmd.Flags().StringP("solution", "s", "", "Path to the solution notebook (.ipynb)")
	cmd.Flags().StringP("notebook", "n", "", "Path to the student notebook (.ipynb)")
	cmd.Flags().StringP("out", "o", "", "Path to write grading JSON output (default: stdout)")
	cmd.Flags().String("route-id", "", "Route identifier to include in output")
	cmd.Flags().String("student-id", "", "Student identifier to include in output")
	cmd.Flags().BoolP("dry-run", "d", false, "Print composed prompts without calling the provider")

	cmd.MarkFlagRequired("notebook")

	RootCmd.AddCommand(cmd)
}

func runGrade(cmd *cobra.Command, _ []string) error {
	routePath, _ := cmd.Flags().GetString("route")
	solutionPath, _ := cmd.Flags().GetString("solution")
	notebookPath, _ := cmd.Flags().GetString("notebook")
	outPath, _ := cmd.Flags().GetString("out")
	routeID, _ := cmd.Flags().GetString("route-id")
	studentID, _ := cmd.Flags().GetString("student-id")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if routePath == "" && solutionPath == "" {
		return errors.New("you must provide either --route or --solution")
	}
	if routePath != "" && solutionPath != "" {
		return errors.New("cannot use both --route and --solution, choose one")
	}

	logger := newLogger()
	var result *schema.GradingResult

	if solutionPath != "" {
		sctx, err := grader.PrepareSolutionContext(solutionPath, notebookPath, routeID, studentID)
		if err != nil {
			return err
		}

		if dryRun {
			systemPrompt, userPrompt := grader.SolutionDryRun(sctx)
			printPrompts(cmd, systemPrompt, userPrompt)
			return nil
		}

		client, err := newClient(logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Grading notebook with %s...\n", client.Name())

		result, err = grader.GradeWithSolution(cmd.Context(), client, sctx, gradeOptions(logger))
		if err != nil {
			return err
		}
	} else {
		gctx, err := grader.PrepareContext(routePath, notebookPath, routeID, studentID)
		if err != nil {
			return err
		}

		if dryRun {
			systemPrompt, userPrompt := grader.DryRun(gctx)
			printPrompts(cmd, systemPrompt, userPrompt)
			return nil
		}

		client, err := newClient(logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Grading notebook with %s...\n", client.Name())

		result, err = grader.Grade(cmd.Context(), client, gctx, gradeOptions(logger))
		if err != nil {
			return err
		}
	}

	if err := writeResult(result, outPath); err != nil {
		return err
	}
	printRatings(result)
	return nil
}

func printPrompts(cmd *cobra.Command, systemPrompt, userPrompt string) {
	fmt.Fprintln(cmd.OutOrStdout(), "=== SYSTEM PROMPT ===")
	fmt.Fprintln(cmd.OutOrStdout(), systemPrompt)
	fmt.Fprintln(cmd.OutOrStdout(), "\n=== USER PROMPT ===")
	fmt.Fprintln(cmd.OutOrStdout(), userPrompt)
}
