package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Text string
	Err  error
}

// MockProvider is a deterministic Provider for tests. It answers from Respond
// when set, otherwise from canned responses in FIFO order, and records all
// requests.
type MockProvider struct {
	// Respond, when set, computes the reply for each request.
	Respond func(ctx context.Context, req Request) (string, error)

	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next reply, or ErrProviderUnavailable when the queue
// is empty.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	respond := m.Respond
	var next *MockResponse
	if respond == nil && len(m.responses) > 0 {
		next = &m.responses[0]
		m.responses = m.responses[1:]
	}
	m.mu.Unlock()

	var text string
	var err error
	switch {
	case respond != nil:
		text, err = respond(ctx, req)
	case next != nil:
		text, err = next.Text, next.Err
	default:
		return nil, &ErrProviderUnavailable{}
	}
	if err != nil {
		return nil, err
	}
	if req.Schema != nil {
		if text, err = ValidateJSON(req.Schema, text); err != nil {
			return nil, err
		}
	}
	return &Response{Text: text, Model: "mock", StopReason: "end"}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
