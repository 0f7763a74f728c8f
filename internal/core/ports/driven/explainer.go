package driven

import (
	"context"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// ExplainRequest carries the bounded context sent to the generative
// explanation collaborator. It deliberately never includes the full
// contract text: only the matched span, its category and severity, and a
// clipped clause excerpt.
type ExplainRequest struct {
	Category      string
	Severity      domain.Severity
	MatchedText   string
	ClauseExcerpt string
	Language      domain.Language
}

// Explainer generates plain-language explanations for risk findings.
// Implementations are best-effort: the engine never blocks core scoring on
// them and treats every failure as a degraded (absent) explanation.
type Explainer interface {
	// Explain returns an explanation for one finding group. Implementations
	// must honour ctx cancellation and deadlines.
	Explain(ctx context.Context, req ExplainRequest) (string, error)

	// Model returns the model or template identifier being used.
	Model() string

	// Ping verifies the explanation service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the explainer.
	Close() error
}
