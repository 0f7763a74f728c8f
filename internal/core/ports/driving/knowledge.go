package driving

import (
	"context"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// KnowledgeService owns the knowledge base lifecycle: load once, serve a
// read-only snapshot, reload on demand.
type KnowledgeService interface {
	// Snapshot returns the current knowledge base, loading it from the
	// pattern store on first use.
	Snapshot(ctx context.Context) (*domain.KnowledgeBase, error)

	// Reload replaces the snapshot with a fresh load from the store.
	// In-flight runs keep the snapshot they started with.
	Reload(ctx context.Context) error

	// Patterns lists the patterns active for a language.
	Patterns(ctx context.Context, lang domain.Language) ([]domain.RiskPattern, error)
}
