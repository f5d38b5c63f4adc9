package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Provider tags accepted by the factory. The set is closed; anything else is
// a configuration error.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Configuration errors, raised at construction time.
var (
	ErrMissingAPIKey   = errors.New("api key required")
	ErrUnknownProvider = errors.New("unknown llm provider")
)

// ErrRateLimited marks a 429 from a provider. It is the only transport error
// the retry loop will retry.
var ErrRateLimited = errors.New("rate limited by provider")

// HTTPError is a non-retryable provider error carrying the status and body.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Body)
}

// Usage reports token consumption for one chat call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the provider-agnostic result of one chat call.
type Response struct {
	Content string
	Model   string
	Usage   *Usage
}

// Client is the capability the grading orchestrator needs from a language
// model provider. Chat blocks until the provider responds or the configured
// timeout elapses; rate-limit retries happen inside the implementation.
type Client interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (Response, error)
	Name() string
}

// Config carries the provider selection and tuning read once at client
// construction.
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
	Logger    zerolog.Logger
}

// DefaultTimeout bounds a single provider round-trip.
const DefaultTimeout = 120 * time.Second

// New builds a client for the configured provider. The mapping from tag to
// constructor is closed; an unrecognized tag fails immediately.
func New(cfg Config) (Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg)
	case ProviderMock:
		return NewMockClient(""), nil
	default:
		return nil, fmt.Errorf("%w: %q (choose openai, anthropic, or mock)", ErrUnknownProvider, cfg.Provider)
	}
}
