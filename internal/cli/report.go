package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mselheim/routegrader/internal/report"
	"github.com/mselheim/routegrader/internal/schema"
)

func init() {
	cmd := &cobra.Command{
		Use:   "report <grading.json>",
		Short: "Generate a readable student report from grading JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runReport,
	}

	cmd.Flags().StringP("out", "o", "", "Path for the output report (default: same name with .txt)")

	RootCmd.AddCommand(cmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	jsonPath := args[0]
	outPath, _ := cmd.Flags().GetString("out")

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return err
	}

	result, err := schema.Validate(data)
	if err != nil {
		return fmt.Errorf("invalid grading file %s: %w", jsonPath, err)
	}

	text := report.Render(result)
	fmt.Fprintln(cmd.OutOrStdout(), text)

	if outPath == "" {
		outPath = strings.TrimSuffix(jsonPath, ".json") + ".txt"
	}
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "\nReport saved to: %s\n", outPath)

	return nil
}
