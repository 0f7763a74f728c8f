package segmenter

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
)

// Config configures the segmenter behavior.
type Config struct {
	// MinClauseLength is the minimum clause length in bytes. Shorter
	// fragments are merged into a neighboring clause.
	MinClauseLength int

	// MaxClauseLength is the maximum clause length in bytes. Longer
	// clauses are split at sentence boundaries.
	MaxClauseLength int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MinClauseLength: 30,
		MaxClauseLength: 2000,
	}
}

// Segmenter splits contract text into clauses.
// Boundaries come from the language profile's heading rules first, then
// paragraph breaks; undersized fragments are merged so the resulting
// spans always partition the input exactly.
type Segmenter struct {
	config Config
}

// New creates a segmenter with the given config.
func New(config Config) *Segmenter {
	return &Segmenter{config: config}
}

// Segment splits text into clauses using the profile's boundary rules.
// The returned spans are contiguous, strictly increasing, and cover
// every byte of the input. Clause IDs are derived from the content hash
// and ordinal, so re-running on the same text yields the same IDs.
func (s *Segmenter) Segment(text string, profile driven.LanguageProfile) ([]domain.Clause, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty document text", domain.ErrSegmentationFailure)
	}

	boundaries := s.findBoundaries(text, profile)
	spans := spansFromBoundaries(boundaries, len(text))
	spans = s.splitOversized(text, spans, profile)
	spans = s.mergeFragments(text, spans)

	docHash := contentHash(text)

	clauses := make([]domain.Clause, 0, len(spans))
	for i, span := range spans {
		clauseText := text[span.Start:span.End]
		label, _ := headingLabel(clauseText, profile)
		clauses = append(clauses, domain.Clause{
			ID:           fmt.Sprintf("%s-%03d", docHash, i),
			Ordinal:      i,
			Text:         clauseText,
			StartOffset:  span.Start,
			EndOffset:    span.End,
			SectionLabel: label,
		})
	}

	if len(clauses) == 0 {
		return nil, fmt.Errorf("%w: no clauses produced", domain.ErrSegmentationFailure)
	}
	return clauses, nil
}

// findBoundaries returns the byte offsets where new clauses start.
// Offset 0 is always a boundary. A line opens a clause when the profile
// recognizes it as a heading, or when it follows one or more blank
// lines (paragraph fallback).
func (s *Segmenter) findBoundaries(text string, profile driven.LanguageProfile) []int {
	boundaries := []int{0}

	offset := 0
	afterBlank := false
	for offset < len(text) {
		lineEnd := strings.IndexByte(text[offset:], '\n')
		var line string
		if lineEnd == -1 {
			line = text[offset:]
			lineEnd = len(text)
		} else {
			line = text[offset : offset+lineEnd]
			lineEnd = offset + lineEnd + 1
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			afterBlank = true
			offset = lineEnd
			continue
		}

		if offset > 0 {
			if _, ok := profile.MatchHeading(trimmed); ok {
				boundaries = append(boundaries, offset)
			} else if afterBlank {
				boundaries = append(boundaries, offset)
			}
		}
		afterBlank = false
		offset = lineEnd
	}

	return boundaries
}

// spansFromBoundaries converts sorted boundary offsets into contiguous
// spans covering [0, length).
func spansFromBoundaries(boundaries []int, length int) []domain.Span {
	spans := make([]domain.Span, 0, len(boundaries))
	for i, start := range boundaries {
		end := length
		if i+1 < len(boundaries) {
			end = boundaries[i+1]
		}
		if end > start {
			spans = append(spans, domain.Span{Start: start, End: end})
		}
	}
	return spans
}

// splitOversized breaks spans longer than MaxClauseLength at sentence
// boundaries. A period following an abbreviation is not a sentence
// boundary, so "Pvt. Ltd." never splits a clause.
func (s *Segmenter) splitOversized(text string, spans []domain.Span, profile driven.LanguageProfile) []domain.Span {
	var result []domain.Span
	for _, span := range spans {
		if span.End-span.Start <= s.config.MaxClauseLength {
			result = append(result, span)
			continue
		}
		result = append(result, s.splitSpan(text, span, profile)...)
	}
	return result
}

func (s *Segmenter) splitSpan(text string, span domain.Span, profile driven.LanguageProfile) []domain.Span {
	var spans []domain.Span
	start := span.Start

	for span.End-start > s.config.MaxClauseLength {
		limit := start + s.config.MaxClauseLength
		breakPoint := s.findSentenceBreak(text, start, limit, profile)
		if breakPoint <= start {
			// No safe break point; keep the remainder whole
			break
		}
		spans = append(spans, domain.Span{Start: start, End: breakPoint})
		start = breakPoint
	}
	if start < span.End {
		spans = append(spans, domain.Span{Start: start, End: span.End})
	}
	return spans
}

// findSentenceBreak returns the offset just after the last sentence
// ending in (start, limit], or start if none qualifies.
func (s *Segmenter) findSentenceBreak(text string, start, limit int, profile driven.LanguageProfile) int {
	window := text[start:limit]

	best := -1
	for _, ender := range []string{". ", ".\n", "। ", "।\n", "! ", "? "} {
		idx := strings.LastIndex(window, ender)
		for idx != -1 {
			if ender[0] != '.' || !endsWithAbbreviation(window[:idx+1], profile) {
				if idx+len(ender) > best {
					best = idx + len(ender)
				}
				break
			}
			// The period belongs to an abbreviation; look earlier
			idx = strings.LastIndex(window[:idx], ender)
		}
	}

	if best <= 0 {
		return start
	}
	return start + best
}

// endsWithAbbreviation reports whether the text ends in a token like
// "Pvt." or "No." that the profile treats as an abbreviation.
func endsWithAbbreviation(text string, profile driven.LanguageProfile) bool {
	text = strings.TrimRight(text, " ")
	idx := strings.LastIndexAny(text, " \n\t(")
	token := text[idx+1:]
	return profile.IsAbbreviation(token)
}

// mergeFragments merges spans whose visible content is shorter than
// MinClauseLength into the preceding span, or the following one when
// the fragment is first. Nothing is dropped.
func (s *Segmenter) mergeFragments(text string, spans []domain.Span) []domain.Span {
	if len(spans) <= 1 {
		return spans
	}

	var result []domain.Span
	for _, span := range spans {
		visible := len(strings.TrimSpace(text[span.Start:span.End]))
		if visible >= s.config.MinClauseLength || len(result) == 0 {
			result = append(result, span)
			continue
		}
		result[len(result)-1].End = span.End
	}

	// A leading fragment merges forward
	if len(result) > 1 {
		first := result[0]
		if len(strings.TrimSpace(text[first.Start:first.End])) < s.config.MinClauseLength {
			result[1].Start = first.Start
			result = result[1:]
		}
	}

	return result
}

// headingLabel extracts the section label from the clause's first
// non-blank line, if the profile recognizes it as a heading.
func headingLabel(clauseText string, profile driven.LanguageProfile) (string, bool) {
	for _, line := range strings.Split(clauseText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		return profile.MatchHeading(trimmed)
	}
	return "", false
}

// contentHash returns a short stable identifier for the document text.
func contentHash(text string) string {
	sum := sha3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:6])
}
