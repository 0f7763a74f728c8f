package services

import (
	"context"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driving"
)

// Ensure auditService implements AuditService
var _ driving.AuditService = (*auditService)(nil)

// auditService provides read access to stored analysis records
type auditService struct {
	store driven.AuditStore
}

// NewAuditService creates a new AuditService
func NewAuditService(store driven.AuditStore) driving.AuditService {
	return &auditService{store: store}
}

// Get retrieves a record by ID
func (s *auditService) Get(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	return s.store.Get(ctx, id)
}

// ListRecent retrieves the most recent records, newest first
func (s *auditService) ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisResult, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	return s.store.ListRecent(ctx, limit)
}

// FindDuplicates returns prior records sharing the given content hash
func (s *auditService) FindDuplicates(ctx context.Context, contentHash string) ([]*domain.AnalysisResult, error) {
	return s.store.GetByContentHash(ctx, contentHash)
}

// Count returns the total number of stored records
func (s *auditService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
