package llm

import "context"

// mockResult is a schema-valid grading result so the full pipeline can run
// end to end without a provider.
const mockResult = `{"schema_version":"1.0","route_id":null,"student_id":null,"exercises":[],"overall_summary":"Mock grading - no actual evaluation performed."}`

// MockClient returns a canned response and records the last prompts it saw.
type MockClient struct {
	response string

	Calls            int
	LastSystemPrompt string
	LastUserPrompt   string
}

// NewMockClient builds a mock. An empty response selects the built-in
// schema-valid result.
func NewMockClient(response string) *MockClient {
	if response == "" {
		response = mockResult
	}
	return &MockClient{response: response}
}

func (c *MockClient) Name() string {
	return "Mock (mock)"
}

func (c *MockClient) Chat(_ context.Context, systemPrompt, userPrompt string, _ float32) (Response, error) {
	c.Calls++
	c.LastSystemPrompt = systemPrompt
	c.LastUserPrompt = userPrompt
	return Response{Content: c.response, Model: "mock"}, nil
}
