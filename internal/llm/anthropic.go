package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mselheim/routegrader/internal/observability"
)

const (
	defaultAnthropicModel   = "claude-sonnet-4-20250514"
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
	defaultMaxTokens        = 4096
)

// AnthropicClient talks to the Anthropic messages API directly over HTTP.
type AnthropicClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	backoff    backoffPolicy
	tracer     trace.Tracer
	logger     zerolog.Logger
}

func NewAnthropicClient(cfg Config) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAnthropicBaseURL
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	return &AnthropicClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		backoff:    defaultBackoffPolicy(),
		tracer:     otel.Tracer("github.com/mselheim/routegrader/internal/llm/anthropic"),
		logger:     cfg.Logger.With().Str("component", "anthropic_client").Logger(),
	}, nil
}

// Name identifies the provider and model for logging.
func (c *AnthropicClient) Name() string {
	return fmt.Sprintf("Anthropic (%s)", c.model)
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float32            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Chat sends one messages-API request, retrying rate limits with bounded
// exponential backoff.
func (c *AnthropicClient) Chat(parent context.Context, systemPrompt, userPrompt string, temperature float32) (Response, error) {
	ctx, span := c.tracer.Start(parent, "llm.chat", trace.WithAttributes(
		attribute.String("llm.provider", ProviderAnthropic),
		attribute.String("llm.model", c.model),
	))
	defer span.End()

	payload, err := json.Marshal(anthropicRequest{
		Model:       c.model,
		System:      systemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: userPrompt}},
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return Response{}, fmt.Errorf("anthropic chat: marshal request: %w", err)
	}

	start := time.Now()
	var response Response

	err = c.backoff.run(ctx, c.logRetry, func() error {
		resp, err := c.send(ctx, payload)
		if err != nil {
			return err
		}
		response = resp
		return nil
	})

	observability.LLMRequestDuration.WithLabelValues(ProviderAnthropic, c.model).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.LLMRequestFailures.WithLabelValues(ProviderAnthropic).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Response{}, fmt.Errorf("anthropic chat: %w", err)
	}

	return response, nil
}

func (c *AnthropicClient) send(ctx context.Context, payload []byte) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return Response{}, fmt.Errorf("%w: %s", ErrRateLimited, strings.TrimSpace(string(body)))
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, &HTTPError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	model := parsed.Model
	if model == "" {
		model = c.model
	}
	return Response{
		Content: sb.String(),
		Model:   model,
		Usage: &Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}

func (c *AnthropicClient) logRetry(attempt int, delay time.Duration) {
	observability.LLMRateLimitRetries.WithLabelValues(ProviderAnthropic).Inc()
	c.logger.Warn().
		Int("attempt", attempt).
		Dur("delay", delay).
		Msg("rate limited, backing off")
}
