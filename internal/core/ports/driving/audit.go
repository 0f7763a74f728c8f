package driving

import (
	"context"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// AuditService provides read access to stored analysis records
type AuditService interface {
	// Get retrieves a record by ID
	Get(ctx context.Context, id string) (*domain.AnalysisResult, error)

	// ListRecent retrieves the most recent records, newest first
	ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisResult, error)

	// FindDuplicates returns prior records sharing the given content hash
	FindDuplicates(ctx context.Context, contentHash string) ([]*domain.AnalysisResult, error)

	// Count returns the total number of stored records
	Count(ctx context.Context) (int, error)
}
