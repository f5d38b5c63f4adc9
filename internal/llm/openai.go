package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mselheim/routegrader/internal/observability"
)

const defaultOpenAIModel = "gpt-4o"

// OpenAIClient talks to the OpenAI chat-completions API or any compatible
// endpoint selected via the base URL override.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	backoff backoffPolicy
	tracer  trace.Tracer
	logger  zerolog.Logger
}

// NewOpenAIClient builds the client. A missing API key is a configuration
// error raised here, not at call time.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		backoff: defaultBackoffPolicy(),
		tracer:  otel.Tracer("github.com/mselheim/routegrader/internal/llm/openai"),
		logger:  cfg.Logger.With().Str("component", "openai_client").Logger(),
	}, nil
}

// Name identifies the provider and model for logging.
func (c *OpenAIClient) Name() string {
	return fmt.Sprintf("OpenAI-compatible (%s)", c.model)
}

// Chat sends one chat-completion request, retrying rate limits with bounded
// exponential backoff. Non-429 provider errors propagate immediately.
func (c *OpenAIClient) Chat(parent context.Context, systemPrompt, userPrompt string, temperature float32) (Response, error) {
	ctx, span := c.tracer.Start(parent, "llm.chat", trace.WithAttributes(
		attribute.String("llm.provider", ProviderOpenAI),
		attribute.String("llm.model", c.model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	start := time.Now()
	var response Response

	err := c.backoff.run(ctx, c.logRetry, func() error {
		resp, err := c.client.CreateChatCompletion(ctx, request)
		if err != nil {
			return classifyOpenAIError(err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no choices returned from provider")
		}

		model := resp.Model
		if model == "" {
			model = c.model
		}
		response = Response{
			Content: resp.Choices[0].Message.Content,
			Model:   model,
			Usage: &Usage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			},
		}
		return nil
	})

	observability.LLMRequestDuration.WithLabelValues(ProviderOpenAI, c.model).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.LLMRequestFailures.WithLabelValues(ProviderOpenAI).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Response{}, fmt.Errorf("openai chat: %w", err)
	}

	return response, nil
}

func (c *OpenAIClient) logRetry(attempt int, delay time.Duration) {
	observability.LLMRateLimitRetries.WithLabelValues(ProviderOpenAI).Inc()
	c.logger.Warn().
		Int("attempt", attempt).
		Dur("delay", delay).
		Msg("rate limited, backing off")
}

// classifyOpenAIError maps SDK errors onto the shared transport taxonomy so
// the retry loop only ever retries 429s.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return &HTTPError{Status: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return &HTTPError{Status: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}

	return err
}
