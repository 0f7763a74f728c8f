package driven

import (
	"context"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// PatternStore provides read access to the risk pattern Knowledge Base.
// The KB is versioned and read-only at run time: the engine loads it once
// per run (or per process lifetime) and never writes through this port.
type PatternStore interface {
	// Version returns the KB version identifier currently served.
	Version(ctx context.Context) (string, error)

	// GetByLanguage retrieves the ordered pattern set active for a
	// language. An empty result is legitimate at this level; the engine
	// decides whether that is a configuration error.
	GetByLanguage(ctx context.Context, lang domain.Language) ([]domain.RiskPattern, error)

	// GetAll retrieves every pattern, ordered by pattern ID.
	GetAll(ctx context.Context) ([]domain.RiskPattern, error)

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}
