package kb

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

//go:embed patterns.json
var defaultPatterns []byte

type patternFile struct {
	Version  string               `json:"version"`
	Patterns []domain.RiskPattern `json:"patterns"`
}

// Default returns the built-in knowledge base embedded in the binary.
// It is the fallback when no pattern store is configured or reachable.
func Default() (*domain.KnowledgeBase, error) {
	return Parse(defaultPatterns)
}

// LoadFile reads and validates a knowledge base from a JSON file,
// for operators overriding the built-in pattern set.
func LoadFile(path string) (*domain.KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrKnowledgeBase, path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a pattern file. Every pattern is checked
// before any is accepted: a knowledge base with one broken pattern is a
// configuration problem, not a partial success.
func Parse(data []byte) (*domain.KnowledgeBase, error) {
	var file patternFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decoding pattern file: %v", domain.ErrKnowledgeBase, err)
	}
	if file.Version == "" {
		return nil, fmt.Errorf("%w: pattern file has no version", domain.ErrKnowledgeBase)
	}
	if len(file.Patterns) == 0 {
		return nil, fmt.Errorf("%w: pattern file has no patterns", domain.ErrKnowledgeBase)
	}

	seen := make(map[string]struct{}, len(file.Patterns))
	for _, p := range file.Patterns {
		if err := Validate(p); err != nil {
			return nil, err
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate pattern id %q", domain.ErrKnowledgeBase, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	return domain.NewKnowledgeBase(file.Version, file.Patterns), nil
}

// Validate checks a single pattern for structural problems.
func Validate(p domain.RiskPattern) error {
	if p.ID == "" {
		return fmt.Errorf("%w: pattern with empty id", domain.ErrKnowledgeBase)
	}
	if p.Category == "" {
		return fmt.Errorf("%w: pattern %s has no category", domain.ErrKnowledgeBase, p.ID)
	}
	if !p.Severity.Valid() {
		return fmt.Errorf("%w: pattern %s has invalid severity %q", domain.ErrKnowledgeBase, p.ID, p.Severity)
	}
	if len(p.Languages) == 0 {
		return fmt.Errorf("%w: pattern %s applies to no languages", domain.ErrKnowledgeBase, p.ID)
	}
	for _, lang := range p.Languages {
		if !lang.Supported() {
			return fmt.Errorf("%w: pattern %s references unsupported language %q", domain.ErrKnowledgeBase, p.ID, lang)
		}
	}

	switch p.Kind {
	case domain.PatternLexical:
		if p.Expression == "" {
			return fmt.Errorf("%w: lexical pattern %s has no expression", domain.ErrKnowledgeBase, p.ID)
		}
		if _, err := regexp.Compile("(?i)" + p.Expression); err != nil {
			return fmt.Errorf("%w: lexical pattern %s: %v", domain.ErrKnowledgeBase, p.ID, err)
		}
	case domain.PatternSemantic:
		if len(p.ReferencePhrases) == 0 {
			return fmt.Errorf("%w: semantic pattern %s has no reference phrases", domain.ErrKnowledgeBase, p.ID)
		}
		if p.Threshold <= 0 || p.Threshold > 1 {
			return fmt.Errorf("%w: semantic pattern %s has threshold %v outside (0,1]", domain.ErrKnowledgeBase, p.ID, p.Threshold)
		}
	default:
		return fmt.Errorf("%w: pattern %s has unknown kind %q", domain.ErrKnowledgeBase, p.ID, p.Kind)
	}

	return nil
}
