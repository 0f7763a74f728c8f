package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driving"
	"github.com/nyaya-labs/nyaya-core/internal/kb"
)

// Ensure knowledgeService implements KnowledgeService
var _ driving.KnowledgeService = (*knowledgeService)(nil)

// knowledgeService owns the knowledge base lifecycle. The snapshot is
// loaded once and shared read-only across concurrent runs; Reload swaps
// in a fresh snapshot without disturbing runs already in flight.
type knowledgeService struct {
	store  driven.PatternStore
	logger *slog.Logger

	mu       sync.RWMutex
	snapshot *domain.KnowledgeBase
}

// NewKnowledgeService creates the knowledge service. The pattern store
// is optional: without one (or when it is unreachable) the embedded
// default pattern set is served.
func NewKnowledgeService(store driven.PatternStore, logger *slog.Logger) driving.KnowledgeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &knowledgeService{
		store:  store,
		logger: logger,
	}
}

// Snapshot returns the current knowledge base, loading on first use.
func (s *knowledgeService) Snapshot(ctx context.Context) (*domain.KnowledgeBase, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()
	if snapshot != nil {
		return snapshot, nil
	}
	return s.load(ctx)
}

// Reload replaces the snapshot with a fresh load.
func (s *knowledgeService) Reload(ctx context.Context) error {
	_, err := s.load(ctx)
	return err
}

// Patterns lists the patterns active for a language.
func (s *knowledgeService) Patterns(ctx context.Context, lang domain.Language) ([]domain.RiskPattern, error) {
	if !lang.Supported() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, lang)
	}
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.ForLanguage(lang), nil
}

func (s *knowledgeService) load(ctx context.Context) (*domain.KnowledgeBase, error) {
	snapshot, err := s.loadFromStore(ctx)
	if err != nil {
		s.logger.Warn("pattern store unavailable, serving embedded knowledge base", "error", err)
		snapshot, err = kb.Default()
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	s.logger.Info("knowledge base loaded",
		"version", snapshot.Version,
		"patterns", snapshot.Size())
	return snapshot, nil
}

func (s *knowledgeService) loadFromStore(ctx context.Context) (*domain.KnowledgeBase, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: no pattern store configured", domain.ErrKnowledgeBase)
	}

	version, err := s.store.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading version: %v", domain.ErrKnowledgeBase, err)
	}
	patterns, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading patterns: %v", domain.ErrKnowledgeBase, err)
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: pattern store is empty", domain.ErrKnowledgeBase)
	}
	for _, p := range patterns {
		if err := kb.Validate(p); err != nil {
			return nil, err
		}
	}

	return domain.NewKnowledgeBase(version, patterns), nil
}
