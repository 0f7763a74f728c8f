package matcher

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// Matcher evaluates risk patterns against clauses. Lexical patterns are
// compiled case-insensitive regexes; semantic patterns score token
// overlap against the pattern's reference phrases. Compiled expressions
// are cached per pattern ID.
type Matcher struct {
	mu       sync.RWMutex
	compiled map[string]*regexp.Regexp
}

// New creates a matcher with an empty compile cache.
func New() *Matcher {
	return &Matcher{
		compiled: make(map[string]*regexp.Regexp),
	}
}

// Match evaluates every pattern against the clause and returns the
// findings. Multiple findings per clause are allowed and nothing is
// deduplicated. Finding IDs are deterministic for a given clause and
// pattern set.
func (m *Matcher) Match(clause domain.Clause, patterns []domain.RiskPattern) ([]domain.Finding, error) {
	var findings []domain.Finding

	for _, pattern := range patterns {
		switch pattern.Kind {
		case domain.PatternLexical:
			matched, err := m.matchLexical(clause, pattern)
			if err != nil {
				return nil, err
			}
			findings = append(findings, matched...)
		case domain.PatternSemantic:
			if finding, ok := matchSemantic(clause, pattern); ok {
				findings = append(findings, finding)
			}
		default:
			return nil, fmt.Errorf("%w: pattern %s has unknown kind %q",
				domain.ErrKnowledgeBase, pattern.ID, pattern.Kind)
		}
	}

	return findings, nil
}

func (m *Matcher) matchLexical(clause domain.Clause, pattern domain.RiskPattern) ([]domain.Finding, error) {
	re, err := m.compile(pattern)
	if err != nil {
		return nil, err
	}

	locs := re.FindAllStringIndex(clause.Text, -1)
	if locs == nil {
		return nil, nil
	}

	findings := make([]domain.Finding, 0, len(locs))
	for i, loc := range locs {
		findings = append(findings, domain.Finding{
			ID:          findingID(clause, pattern, i),
			ClauseID:    clause.ID,
			PatternID:   pattern.ID,
			Category:    pattern.Category,
			Severity:    pattern.Severity,
			Confidence:  1.0,
			MatchedSpan: domain.Span{Start: loc[0], End: loc[1]},
			MatchedText: clause.Text[loc[0]:loc[1]],
		})
	}
	return findings, nil
}

// matchSemantic scores the clause against each reference phrase and
// keeps the best score. The finding is accepted only when the score
// reaches the pattern's threshold; its confidence is the score itself.
func matchSemantic(clause domain.Clause, pattern domain.RiskPattern) (domain.Finding, bool) {
	clauseTokens := tokenize(clause.Text)
	if len(clauseTokens) == 0 || len(pattern.ReferencePhrases) == 0 {
		return domain.Finding{}, false
	}

	clauseSet := make(map[string]struct{}, len(clauseTokens))
	for _, tok := range clauseTokens {
		clauseSet[tok] = struct{}{}
	}

	best := 0.0
	var bestShared []string
	for _, phrase := range pattern.ReferencePhrases {
		phraseTokens := tokenize(phrase)
		if len(phraseTokens) == 0 {
			continue
		}

		var shared []string
		seen := make(map[string]struct{})
		for _, tok := range phraseTokens {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			if _, ok := clauseSet[tok]; ok {
				shared = append(shared, tok)
			}
		}

		score := float64(len(shared)) / float64(len(seen))
		if score > best {
			best = score
			bestShared = shared
		}
	}

	if best < pattern.Threshold || best == 0 {
		return domain.Finding{}, false
	}

	span := sharedTokenSpan(clause.Text, bestShared)
	return domain.Finding{
		ID:          findingID(clause, pattern, 0),
		ClauseID:    clause.ID,
		PatternID:   pattern.ID,
		Category:    pattern.Category,
		Severity:    pattern.Severity,
		Confidence:  best,
		MatchedSpan: span,
		MatchedText: clause.Text[span.Start:span.End],
	}, true
}

func (m *Matcher) compile(pattern domain.RiskPattern) (*regexp.Regexp, error) {
	m.mu.RLock()
	re, ok := m.compiled[pattern.ID]
	m.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile("(?i)" + pattern.Expression)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %s: %v", domain.ErrKnowledgeBase, pattern.ID, err)
	}

	m.mu.Lock()
	m.compiled[pattern.ID] = re
	m.mu.Unlock()
	return re, nil
}

func findingID(clause domain.Clause, pattern domain.RiskPattern, n int) string {
	return fmt.Sprintf("%s:%s:%d", clause.ID, pattern.ID, n)
}

// tokenize lowercases and splits on anything that is not a letter or
// digit. Works for both Latin and Devanagari text.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// sharedTokenSpan returns the byte span from the first to the last
// occurrence of the shared tokens within the clause text.
func sharedTokenSpan(text string, tokens []string) domain.Span {
	lower := strings.ToLower(text)

	starts := make([]int, 0, len(tokens))
	ends := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if idx := strings.Index(lower, tok); idx != -1 {
			starts = append(starts, idx)
			ends = append(ends, idx+len(tok))
		}
	}
	if len(starts) == 0 {
		return domain.Span{Start: 0, End: len(text)}
	}

	sort.Ints(starts)
	sort.Ints(ends)
	return domain.Span{Start: starts[0], End: ends[len(ends)-1]}
}
