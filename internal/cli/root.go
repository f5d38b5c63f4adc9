// Package cli implements the routegrader command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mselheim/routegrader/internal/grader"
	"github.com/mselheim/routegrader/internal/llm"
	"github.com/mselheim/routegrader/internal/schema"
)

var (
	providerFlag   string
	modelFlag      string
	maxRetriesFlag int
	timeoutFlag    time.Duration
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "routegrader",
	Short: "LLM-powered grading assistant for Jupyter notebooks",
	Long: "Grades student Jupyter notebooks and text submissions against assignment\n" +
		"specifications or solution notebooks, producing structured JSON results.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&providerFlag, "provider", "p", "anthropic", "LLM provider: openai, anthropic, or mock")
	RootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (provider-specific default if not set)")
	RootCmd.PersistentFlags().IntVar(&maxRetriesFlag, "max-retries", 2, "Maximum repair retries for invalid JSON output")
	RootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 120*time.Second, "Per-request HTTP timeout")
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func newClient(logger zerolog.Logger) (llm.Client, error) {
	apiKey := ""
	switch providerFlag {
	case llm.ProviderOpenAI:
		apiKey = os.Getenv("GRADER_OPENAI_API_KEY")
	case llm.ProviderAnthropic:
		apiKey = os.Getenv("GRADER_ANTHROPIC_API_KEY")
	}

	return llm.New(llm.Config{
		Provider: providerFlag,
		Model:    modelFlag,
		APIKey:   apiKey,
		Timeout:  timeoutFlag,
		Logger:   logger,
	})
}

func gradeOptions(logger zerolog.Logger) grader.Options {
	return grader.Options{
		MaxRetries:  maxRetriesFlag,
		Temperature: 0,
		Logger:      logger,
	}
}

// writeResult marshals the result to the given path, or to stdout when the
// path is empty.
func writeResult(result *schema.GradingResult, outPath string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	if outPath == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Grading complete. Output written to: %s\n", outPath)
	return nil
}

// printRatings echoes a per-exercise rating summary to stderr.
func printRatings(result *schema.GradingResult) {
	fmt.Fprintf(os.Stderr, "\nGraded %d exercises.\n", len(result.Exercises))
	for _, ex := range result.Exercises {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", ex.ExerciseID, ex.Rating)
	}
}
