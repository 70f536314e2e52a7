package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a deterministic client for tests and dry runs. It
// records every request and answers from a per-stage response map.
type MockClient struct {
	mu        sync.Mutex
	requests  []*Request
	responses map[string]string
	err       error
}

// NewMockClient returns a mock with no canned responses; Complete
// answers with a generic line until SetResponse is called.
func NewMockClient() *MockClient {
	return &MockClient{responses: make(map[string]string)}
}

// SetResponse sets the canned response for a stage.
func (m *MockClient) SetResponse(stage, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[stage] = content
}

// SetError makes every Complete call fail with err.
func (m *MockClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Complete records the request and returns the stage's canned
// response.
func (m *MockClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if content, ok := m.responses[req.Stage]; ok {
		return &Response{Content: content}, nil
	}
	return &Response{Content: fmt.Sprintf("mock response for %s", req.Stage)}, nil
}

// Requests returns a copy of the recorded requests.
func (m *MockClient) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Close is a no-op for MockClient.
func (m *MockClient) Close() error {
	return nil
}
