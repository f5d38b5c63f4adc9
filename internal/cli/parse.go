package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mselheim/routegrader/internal/notebook"
	"github.com/mselheim/routegrader/internal/route"
)

// Debug commands for inspecting how route files and solution notebooks are
// parsed before spending tokens on a grading run.

func init() {
	parseRoute := &cobra.Command{
		Use:   "parse-route <route.md>",
		Short: "Parse a route file and display extracted exercises",
		Args:  cobra.ExactArgs(1),
		RunE:  runParseRoute,
	}

	parseSolution := &cobra.Command{
		Use:   "parse-solution <solution.ipynb>",
		Short: "Parse a solution notebook and display extracted exercises",
		Args:  cobra.ExactArgs(1),
		RunE:  runParseSolution,
	}

	RootCmd.AddCommand(parseRoute, parseSolution)
}

func runParseRoute(cmd *cobra.Command, args []string) error {
	parsed, err := route.ParseFile(args[0])
	if err != nil {
		return err
	}

	title := parsed.Title
	if title == "" {
		title = "(no title)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Route: %s\n", title)
	fmt.Fprintf(cmd.OutOrStdout(), "Exercises found: %d\n\n", len(parsed.Exercises))

	for _, ex := range parsed.Exercises {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", ex.ExerciseID)
		if ex.Title != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "    Title: %s\n", ex.Title)
		}
		if ex.Optional {
			fmt.Fprintln(cmd.OutOrStdout(), "    Optional: yes")
		}
		preview := strings.ReplaceAll(ex.Instructions, "\n", " ")
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		fmt.Fprintf(cmd.OutOrStdout(), "    Instructions: %s\n\n", preview)
	}

	return nil
}

func runParseSolution(cmd *cobra.Command, args []string) error {
	view, err := notebook.ParseFile(args[0])
	if err != nil {
		return err
	}

	exercises := notebook.ExtractExercises(view)
	if len(exercises) == 0 {
		return fmt.Errorf("no exercises found in solution notebook %s (headers like '## Exercise 1' are required)", args[0])
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Solution notebook: %s\n", args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "Exercises found: %d\n\n", len(exercises))

	for _, ex := range exercises {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s [%s]\n", ex.ExerciseID, strings.ToUpper(ex.ExerciseType))
		if ex.Title != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "    Title: %s\n", ex.Title)
		}

		codeCells, markdownCells := 0, 0
		for _, cell := range ex.Cells {
			switch cell.CellType {
			case "code":
				codeCells++
			case "markdown":
				markdownCells++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "    Cells: %d\n", len(ex.Cells))
		fmt.Fprintf(cmd.OutOrStdout(), "    Code cells: %d, Markdown cells: %d\n\n", codeCells, markdownCells)
	}

	return nil
}
