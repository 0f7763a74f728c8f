package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// MockAuditStore is an in-memory mock implementation of AuditStore
type MockAuditStore struct {
	mu      sync.RWMutex
	records map[string]*domain.AnalysisResult

	SaveFn func(ctx context.Context, result *domain.AnalysisResult) error
	GetFn  func(ctx context.Context, id string) (*domain.AnalysisResult, error)
	PingFn func(ctx context.Context) error
}

func NewMockAuditStore() *MockAuditStore {
	return &MockAuditStore{
		records: make(map[string]*domain.AnalysisResult),
	}
}

func (m *MockAuditStore) Save(ctx context.Context, result *domain.AnalysisResult) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, result)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[result.ID] = result
	return nil
}

func (m *MockAuditStore) Get(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *MockAuditStore) GetByContentHash(ctx context.Context, hash string) ([]*domain.AnalysisResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AnalysisResult
	for _, r := range m.records {
		if r.ContentHash == hash {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (m *MockAuditStore) ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AnalysisResult, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockAuditStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

func (m *MockAuditStore) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}
