package domain

// KnowledgeBase is the read-only pattern configuration an analysis run
// works against. It is loaded once (at process start or per run), passed
// in explicitly, and never mutated mid-run: concurrent clause evaluations
// share it without locking.
type KnowledgeBase struct {
	Version  string
	patterns map[Language][]RiskPattern
	index    map[string]RiskPattern
}

// NewKnowledgeBase builds an immutable knowledge base from a pattern list
func NewKnowledgeBase(version string, patterns []RiskPattern) *KnowledgeBase {
	kb := &KnowledgeBase{
		Version:  version,
		patterns: make(map[Language][]RiskPattern),
		index:    make(map[string]RiskPattern, len(patterns)),
	}
	for _, p := range patterns {
		kb.index[p.ID] = p
		for _, lang := range p.Languages {
			kb.patterns[lang] = append(kb.patterns[lang], p)
		}
	}
	return kb
}

// ForLanguage returns the ordered pattern set active for a language
func (kb *KnowledgeBase) ForLanguage(lang Language) []RiskPattern {
	return kb.patterns[lang]
}

// Pattern returns a pattern by ID
func (kb *KnowledgeBase) Pattern(id string) (RiskPattern, bool) {
	p, ok := kb.index[id]
	return p, ok
}

// Size returns the total number of patterns
func (kb *KnowledgeBase) Size() int {
	return len(kb.index)
}
