package ai

import (
	"context"
	"sync"
)

// MockProvider is a deterministic Provider for tests. It returns canned
// results in FIFO order and records every prompt it receives.
type MockProvider struct {
	mu      sync.Mutex
	backend Backend
	results []mockResult
	Prompts []string
}

type mockResult struct {
	content string
	err     error
}

// NewMockProvider creates a MockProvider reporting the given backend tag.
func NewMockProvider(backend Backend) *MockProvider {
	return &MockProvider{backend: backend}
}

// Reply queues a successful canned response.
func (m *MockProvider) Reply(content string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, mockResult{content: content})
	return m
}

// Fail queues a canned error.
func (m *MockProvider) Fail(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, mockResult{err: err})
	return m
}

func (m *MockProvider) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)

	if len(m.results) == 0 {
		return "", ErrServiceUnavailable
	}

	next := m.results[0]
	m.results = m.results[1:]
	return next.content, next.err
}

func (m *MockProvider) Backend() Backend {
	return m.backend
}

// CallCount returns the number of Complete calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
