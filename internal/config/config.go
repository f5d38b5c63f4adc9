package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the grading service.
type Config struct {
	AppEnv          string
	AppPort         string
	Provider        string
	Model           string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      int
	ResultsDir      string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// APIKey returns the key for the configured provider. Empty for mock.
func (c Config) APIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

// Validate checks the provider tag against the supported set and requires a
// key for the HTTP providers. Mock needs no credentials.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("GRADER_OPENAI_API_KEY must be set for provider openai")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("GRADER_ANTHROPIC_API_KEY must be set for provider anthropic")
		}
	case "mock":
	default:
		return fmt.Errorf("unsupported provider %q (choose openai, anthropic, or mock)", c.Provider)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}

	return nil
}

// Load reads configuration values from environment variables and an optional
// .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("provider", "anthropic")
	v.SetDefault("timeout", "120s")
	v.SetDefault("max_retries", 2)
	v.SetDefault("results_dir", "results")

	timeoutString := v.GetString("timeout")
	timeout, err := time.ParseDuration(timeoutString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid timeout: %w", err)
	}

	cfg := Config{
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		Provider:        strings.ToLower(v.GetString("provider")),
		Model:           v.GetString("model"),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
		BaseURL:         v.GetString("base_url"),
		Timeout:         timeout,
		MaxRetries:      v.GetInt("max_retries"),
		ResultsDir:      v.GetString("results_dir"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
