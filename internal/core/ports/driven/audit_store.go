package driven

import (
	"context"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// AuditStore persists finished analysis records. Records are immutable:
// the store only ever inserts and reads, never updates.
type AuditStore interface {
	// Save persists a complete analysis record.
	Save(ctx context.Context, result *domain.AnalysisResult) error

	// Get retrieves a record by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.AnalysisResult, error)

	// GetByContentHash retrieves prior records for the same input text,
	// newest first. Used for duplicate detection.
	GetByContentHash(ctx context.Context, hash string) ([]*domain.AnalysisResult, error)

	// ListRecent retrieves the most recent records, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisResult, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int, error)

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}
