package grader

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mselheim/routegrader/internal/llm"
	"github.com/mselheim/routegrader/internal/observability"
	"github.com/mselheim/routegrader/internal/prompt"
	"github.com/mselheim/routegrader/internal/schema"
)

// Grading modes, used as metric and log labels.
const (
	modeRoute    = "route"
	modeSolution = "solution"
	modeText     = "text"
)

// Options tunes one grading run. MaxRetries counts repair round-trips after
// the initial attempt; repair calls always run at temperature 0.
type Options struct {
	MaxRetries  int
	Temperature float32
	Logger      zerolog.Logger
}

// DefaultOptions matches the shipped configuration defaults.
func DefaultOptions() Options {
	return Options{MaxRetries: 2, Temperature: 0}
}

// GradingError is the terminal failure after the repair budget is spent.
type GradingError struct {
	Attempts int
	LastErr  error
}

func (e *GradingError) Error() string {
	return fmt.Sprintf("failed to get valid grading response after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *GradingError) Unwrap() error {
	return e.LastErr
}

var tracer = otel.Tracer("github.com/mselheim/routegrader/internal/grader")

// Grade runs route-based grading: one model call, then up to MaxRetries
// repair round-trips until the response validates.
func Grade(ctx context.Context, client llm.Client, gctx Context, opts Options) (*schema.GradingResult, error) {
	userPrompt := prompt.BuildGradingPrompt(
		gctx.RouteText, gctx.NotebookText, gctx.ExerciseIDs, gctx.RouteID, gctx.StudentID)
	return run(ctx, client, modeRoute, prompt.SystemPrompt, userPrompt, gctx.RouteID, gctx.StudentID, opts)
}

// GradeWithSolution runs solution-based grading.
func GradeWithSolution(ctx context.Context, client llm.Client, sctx SolutionContext, opts Options) (*schema.GradingResult, error) {
	userPrompt := prompt.BuildSolutionGradingPrompt(
		sctx.SolutionText, sctx.NotebookText, sctx.ExerciseIDs, sctx.ExerciseTypes, sctx.RouteID, sctx.StudentID)
	return run(ctx, client, modeSolution, prompt.SolutionSystemPrompt, userPrompt, sctx.RouteID, sctx.StudentID, opts)
}

// GradeText runs text-submission grading.
func GradeText(ctx context.Context, client llm.Client, tctx TextContext, opts Options) (*schema.GradingResult, error) {
	userPrompt := prompt.BuildTextGradingPrompt(
		tctx.RouteText, tctx.SubmissionText, tctx.ExerciseIDs, tctx.RouteID, tctx.StudentID)
	return run(ctx, client, modeText, prompt.TextSystemPrompt, userPrompt, tctx.RouteID, tctx.StudentID, opts)
}

// DryRun renders the prompts a route-based grading run would send.
func DryRun(gctx Context) (systemPrompt, userPrompt string) {
	return prompt.SystemPrompt, prompt.BuildGradingPrompt(
		gctx.RouteText, gctx.NotebookText, gctx.ExerciseIDs, gctx.RouteID, gctx.StudentID)
}

// SolutionDryRun renders the prompts a solution-based grading run would send.
func SolutionDryRun(sctx SolutionContext) (systemPrompt, userPrompt string) {
	return prompt.SolutionSystemPrompt, prompt.BuildSolutionGradingPrompt(
		sctx.SolutionText, sctx.NotebookText, sctx.ExerciseIDs, sctx.ExerciseTypes, sctx.RouteID, sctx.StudentID)
}

// run is the shared validate-or-repair loop. The first attempt uses the
// caller's temperature; every repair attempt reuses the mode's system prompt
// at temperature 0 with the invalid output and the validation error echoed
// back.
func run(parent context.Context, client llm.Client, mode, systemPrompt, userPrompt, routeID, studentID string, opts Options) (*schema.GradingResult, error) {
	ctx, span := tracer.Start(parent, "grader.run", trace.WithAttributes(
		attribute.String("grading.mode", mode),
		attribute.String("llm.client", client.Name()),
	))
	defer span.End()

	logger := opts.Logger.With().
		Str("component", "grader").
		Str("mode", mode).
		Logger()

	maxAttempts := opts.MaxRetries + 1
	start := time.Now()

	currentPrompt := userPrompt
	temperature := opts.Temperature
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := client.Chat(ctx, systemPrompt, currentPrompt, temperature)
		if err != nil {
			// Transport failures are not repairable; surface them directly.
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			observability.GradingFailures.WithLabelValues(mode).Inc()
			return nil, err
		}

		raw := ExtractJSON(resp.Content)
		result, err := schema.Validate([]byte(raw))
		if err == nil {
			backfillIdentifiers(result, routeID, studentID)
			observability.GradingDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
			logger.Info().
				Int("attempt", attempt).
				Str("model", resp.Model).
				Int("exercises", len(result.Exercises)).
				Msg("grading complete")
			return result, nil
		}

		lastErr = err
		logger.Warn().
			Int("attempt", attempt).
			Err(err).
			Msg("invalid grading response, requesting repair")

		if attempt < maxAttempts {
			observability.GradingRepairAttempts.WithLabelValues(mode).Inc()
			currentPrompt = prompt.BuildRepairPrompt(raw, err.Error())
			temperature = 0
		}
	}

	observability.GradingFailures.WithLabelValues(mode).Inc()
	gradingErr := &GradingError{Attempts: maxAttempts, LastErr: lastErr}
	span.RecordError(gradingErr)
	span.SetStatus(otelcodes.Error, gradingErr.Error())
	return nil, gradingErr
}

// backfillIdentifiers fills route and student ids from the request context
// when the model returned null for them. A model-supplied value is kept even
// if it disagrees with the context.
func backfillIdentifiers(result *schema.GradingResult, routeID, studentID string) {
	if result.RouteID == nil && routeID != "" {
		result.RouteID = &routeID
	}
	if result.StudentID == nil && studentID != "" {
		result.StudentID = &studentID
	}
}
