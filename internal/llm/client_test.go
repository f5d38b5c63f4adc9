package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "bard"})
	require.ErrorIs(t, err, ErrUnknownProvider)
	require.Contains(t, err.Error(), "bard")
}

func TestNewRequiresAPIKey(t *testing.T) {
	for _, provider := range []string{ProviderOpenAI, ProviderAnthropic} {
		_, err := New(Config{Provider: provider})
		require.ErrorIs(t, err, ErrMissingAPIKey, provider)
	}
}

func TestNewMockNeedsNoKey(t *testing.T) {
	client, err := New(Config{Provider: ProviderMock})
	require.NoError(t, err)
	require.Equal(t, "Mock (mock)", client.Name())
}

func TestMockClientRecordsPrompts(t *testing.T) {
	mock := NewMockClient("")

	resp, err := mock.Chat(context.Background(), "system here", "user here", 0)
	require.NoError(t, err)
	require.Equal(t, "mock", resp.Model)
	require.Equal(t, 1, mock.Calls)
	require.Equal(t, "system here", mock.LastSystemPrompt)
	require.Equal(t, "user here", mock.LastUserPrompt)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Content), &parsed))
	require.Equal(t, "1.0", parsed["schema_version"])
}

func TestMockClientCannedResponse(t *testing.T) {
	mock := NewMockClient(`{"custom":true}`)
	resp, err := mock.Chat(context.Background(), "s", "u", 0.7)
	require.NoError(t, err)
	require.Equal(t, `{"custom":true}`, resp.Content)
}

func anthropicTestClient(t *testing.T, url string) *AnthropicClient {
	t.Helper()
	client, err := NewAnthropicClient(Config{
		APIKey:  "test-key",
		BaseURL: url,
		Timeout: 5 * time.Second,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	client.backoff.sleep = func(context.Context, time.Duration) error { return nil }
	return client
}

func TestAnthropicChatParsesTextBlocks(t *testing.T) {
	var gotHeaders http.Header
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "claude-sonnet-4-20250514",
			"content": []map[string]any{
				{"type": "text", "text": "hello "},
				{"type": "tool_use", "id": "ignored"},
				{"type": "text", "text": "world"},
			},
			"usage": map[string]int{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer server.Close()

	client := anthropicTestClient(t, server.URL)
	resp, err := client.Chat(context.Background(), "be terse", "say hello", 0.2)
	require.NoError(t, err)

	require.Equal(t, "hello world", resp.Content)
	require.Equal(t, 15, resp.Usage.TotalTokens)

	require.Equal(t, "test-key", gotHeaders.Get("x-api-key"))
	require.Equal(t, "2023-06-01", gotHeaders.Get("anthropic-version"))
	require.Equal(t, "be terse", gotBody["system"])
	require.Equal(t, float64(4096), gotBody["max_tokens"])

	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 1)
	first := messages[0].(map[string]any)
	require.Equal(t, "user", first["role"])
	require.Equal(t, "say hello", first["content"])
}

func TestAnthropicChatRetriesRateLimit(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "ok"}},
			"usage":   map[string]int{"input_tokens": 1, "output_tokens": 1},
		})
	}))
	defer server.Close()

	client := anthropicTestClient(t, server.URL)
	resp, err := client.Chat(context.Background(), "s", "u", 0)
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Content)
	require.Equal(t, 2, calls)
}

func TestAnthropicChatSurfacesHTTPError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := anthropicTestClient(t, server.URL)
	_, err := client.Chat(context.Background(), "s", "u", 0)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusBadRequest, httpErr.Status)
	require.Equal(t, 1, calls, "non-429 errors are not retried")
}

func TestAnthropicDefaults(t *testing.T) {
	client, err := NewAnthropicClient(Config{APIKey: "k"})
	require.NoError(t, err)
	require.Equal(t, defaultAnthropicBaseURL, client.baseURL)
	require.Equal(t, defaultAnthropicModel, client.model)
	require.Equal(t, defaultMaxTokens, client.maxTokens)
	require.Equal(t, "Anthropic (claude-sonnet-4-20250514)", client.Name())
}

func TestOpenAIDefaults(t *testing.T) {
	client, err := NewOpenAIClient(Config{APIKey: "k"})
	require.NoError(t, err)
	require.Equal(t, defaultOpenAIModel, client.model)
	require.Equal(t, "OpenAI-compatible (gpt-4o)", client.Name())
}
