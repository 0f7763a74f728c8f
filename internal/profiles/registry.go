package profiles

import (
	"sort"
	"strings"
	"sync"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ProfileRegistry = (*Registry)(nil)

// DefaultConfidenceThreshold is the minimum detection score required to
// classify a document's language
const DefaultConfidenceThreshold = 0.60

// Registry implements ProfileRegistry. Detection scores every registered
// profile against the text and selects the best one; a score below the
// threshold rejects the document as unsupported.
type Registry struct {
	mu        sync.RWMutex
	profiles  map[domain.Language]driven.LanguageProfile
	threshold float64
}

// NewRegistry creates a profile registry with the given confidence threshold
func NewRegistry(threshold float64) *Registry {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultConfidenceThreshold
	}
	return &Registry{
		profiles:  make(map[domain.Language]driven.LanguageProfile),
		threshold: threshold,
	}
}

// Register registers a profile. Later registrations for the same language
// replace earlier ones.
func (r *Registry) Register(profile driven.LanguageProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.Language()] = profile
}

// Get retrieves the profile for a language, or nil if unregistered.
func (r *Registry) Get(lang domain.Language) driven.LanguageProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[lang]
}

// Detect classifies the text's working language. Deterministic: profiles
// are scored in language-code order, and a strictly higher score is needed
// to displace the current best.
func (r *Registry) Detect(text string) (driven.LanguageProfile, float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, 0, domain.ErrUnsupportedLanguage
	}

	r.mu.RLock()
	langs := make([]domain.Language, 0, len(r.profiles))
	for lang := range r.profiles {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })

	var best driven.LanguageProfile
	bestScore := 0.0
	for _, lang := range langs {
		p := r.profiles[lang]
		if score := p.DetectionScore(text); score > bestScore {
			best, bestScore = p, score
		}
	}
	r.mu.RUnlock()

	if best == nil || bestScore < r.threshold {
		return nil, bestScore, domain.ErrUnsupportedLanguage
	}
	return best, bestScore, nil
}

// List returns the registered language codes, sorted.
func (r *Registry) List() []domain.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Language, 0, len(r.profiles))
	for lang := range r.profiles {
		out = append(out, lang)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultRegistry creates a registry with the built-in English and Hindi
// profiles registered.
func DefaultRegistry() *Registry {
	r := NewRegistry(DefaultConfidenceThreshold)
	r.Register(NewEnglishProfile())
	r.Register(NewHindiProfile())
	return r
}
