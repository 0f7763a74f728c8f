package runtime

import (
	"context"
	"sync"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
)

// Services holds references to dynamically configurable services.
// The generative explainer can be swapped at runtime (configured,
// reconfigured, or removed) without restarting the engine.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Dynamic services (can be nil, updated at runtime)
	explainer driven.Explainer
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// Explainer returns the current explainer (may be nil)
func (s *Services) Explainer() driven.Explainer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.explainer
}

// SetExplainer updates the explainer.
// Closes the old explainer if present. Updates config flags.
func (s *Services) SetExplainer(svc driven.Explainer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.explainer != nil {
		_ = s.explainer.Close()
	}

	s.explainer = svc
	s.config.SetExplainerAvailable(svc != nil)
}

// ValidateAndSetExplainer validates connectivity before setting the
// explainer
func (s *Services) ValidateAndSetExplainer(ctx context.Context, svc driven.Explainer) error {
	if svc == nil {
		s.SetExplainer(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetExplainer(svc)
	return nil
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.explainer != nil {
		_ = s.explainer.Close()
		s.explainer = nil
	}

	s.config.SetExplainerAvailable(false)

	return nil
}
