package ai

import (
	"context"
	"sync"
)

// MockProvider is a test provider that records calls and returns
// configurable responses.
type MockProvider struct {
	name      string
	responses []MockResponse
	calls     []MockCall
	mu        sync.Mutex
	respIndex int
}

// MockResponse represents a pre-configured response for the mock provider.
type MockResponse struct {
	Content string
	Usage   Usage
	Error   error
}

// MockCall records information about a call to GenerateResponse.
type MockCall struct {
	Request *GenerateRequest
}

// NewMockProvider creates a new mock provider for testing.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		name:      name,
		responses: []MockResponse{},
		calls:     []MockCall{},
	}
}

// Name returns the provider name.
func (m *MockProvider) Name() string {
	return m.name
}

// GenerateResponse records the call and returns the next configured response.
func (m *MockProvider) GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Request: req})

	if m.respIndex < len(m.responses) {
		resp := m.responses[m.respIndex]
		m.respIndex++

		if resp.Error != nil {
			return nil, resp.Error
		}
		return &GenerateResponse{Content: resp.Content, Usage: resp.Usage}, nil
	}

	// Default response when no responses configured
	return &GenerateResponse{
		Content: "Mock response",
		Usage: Usage{
			PromptTokens:     10,
			CompletionTokens: 5,
			TotalTokens:      15,
		},
	}, nil
}

// SetResponses configures the responses returned by GenerateResponse,
// in order.
func (m *MockProvider) SetResponses(responses []MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	m.respIndex = 0
}

// AddResponse appends a single content response to the queue.
func (m *MockProvider) AddResponse(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, MockResponse{
		Content: content,
		Usage: Usage{
			PromptTokens:     10,
			CompletionTokens: 5,
			TotalTokens:      15,
		},
	})
}

// AddError appends an error response to the queue.
func (m *MockProvider) AddError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, MockResponse{Error: err})
}

// Calls returns a copy of the recorded calls.
func (m *MockProvider) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns the number of recorded calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears recorded calls and configured responses.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.responses = nil
	m.respIndex = 0
}
