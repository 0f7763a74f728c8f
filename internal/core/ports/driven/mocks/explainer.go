package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
)

// MockExplainer is a mock implementation of Explainer for testing
type MockExplainer struct {
	mu       sync.Mutex
	requests []driven.ExplainRequest

	ExplainFn func(ctx context.Context, req driven.ExplainRequest) (string, error)
	ModelFn   func() string
	PingFn    func(ctx context.Context) error
}

func NewMockExplainer() *MockExplainer {
	return &MockExplainer{}
}

func (m *MockExplainer) Explain(ctx context.Context, req driven.ExplainRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.ExplainFn != nil {
		return m.ExplainFn(ctx, req)
	}
	return fmt.Sprintf("This %s clause (%s risk) means the matched terms may bind you beyond standard practice.",
		req.Category, req.Severity), nil
}

// Requests returns the explain requests observed so far
func (m *MockExplainer) Requests() []driven.ExplainRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]driven.ExplainRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockExplainer) Model() string {
	if m.ModelFn != nil {
		return m.ModelFn()
	}
	return "mock-explainer"
}

func (m *MockExplainer) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

func (m *MockExplainer) Close() error {
	return nil
}
