package mocks

import (
	"context"
	"sync"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// MockPatternStore is a mock implementation of PatternStore for testing
type MockPatternStore struct {
	mu       sync.RWMutex
	patterns []domain.RiskPattern
	version  string

	VersionFn       func(ctx context.Context) (string, error)
	GetByLanguageFn func(ctx context.Context, lang domain.Language) ([]domain.RiskPattern, error)
	GetAllFn        func(ctx context.Context) ([]domain.RiskPattern, error)
	PingFn          func(ctx context.Context) error
}

func NewMockPatternStore() *MockPatternStore {
	return &MockPatternStore{version: "test-kb-1"}
}

// SetPatterns seeds the mock with patterns
func (m *MockPatternStore) SetPatterns(version string, patterns []domain.RiskPattern) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version = version
	m.patterns = patterns
}

func (m *MockPatternStore) Version(ctx context.Context) (string, error) {
	if m.VersionFn != nil {
		return m.VersionFn(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version, nil
}

func (m *MockPatternStore) GetByLanguage(ctx context.Context, lang domain.Language) ([]domain.RiskPattern, error) {
	if m.GetByLanguageFn != nil {
		return m.GetByLanguageFn(ctx, lang)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.RiskPattern
	for _, p := range m.patterns {
		if p.AppliesTo(lang) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPatternStore) GetAll(ctx context.Context) ([]domain.RiskPattern, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.RiskPattern, len(m.patterns))
	copy(out, m.patterns)
	return out, nil
}

func (m *MockPatternStore) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}
