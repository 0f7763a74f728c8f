package profiles

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.LanguageProfile = (*EnglishProfile)(nil)

// English stop words used as detection evidence. Legal English is heavy on
// these even in short excerpts.
var englishStopWords = []string{
	"the", "and", "of", "to", "in", "for", "shall", "party", "agreement",
	"this", "herein", "be", "by", "with", "or", "not",
}

// Heading patterns, tried in order: numbered sections, named sections,
// roman numerals, alphabetic markers.
var englishHeadingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d+(?:\.\d+)*)[.:\-)]\s+\S`),
	regexp.MustCompile(`(?i)^(?:article|section|clause)\s+(\d+(?:\.\d+)*|[IVXLC]+)\b`),
	regexp.MustCompile(`^([IVX]+|[ivx]+)[.:\-]\s+\S`),
	regexp.MustCompile(`^\(?([a-z])\)\s+\S`),
}

// Abbreviations that end with a period without ending a sentence
var englishAbbreviations = map[string]struct{}{
	"no": {}, "rs": {}, "ltd": {}, "pvt": {}, "inc": {}, "corp": {},
	"co": {}, "mr": {}, "mrs": {}, "ms": {}, "dr": {}, "st": {},
	"e.g": {}, "i.e": {}, "etc": {}, "viz": {}, "vs": {}, "approx": {},
	"art": {}, "sec": {}, "cl": {}, "para": {}, "w.e.f": {},
}

// EnglishProfile implements the extraction contract for English contracts
type EnglishProfile struct {
	floor    float64
	patterns []entityPattern
}

// NewEnglishProfile creates the English profile with the default
// confidence floor
func NewEnglishProfile() *EnglishProfile {
	return &EnglishProfile{
		floor:    DefaultConfidenceFloor,
		patterns: englishEntityPatterns(),
	}
}

// Language returns "en"
func (p *EnglishProfile) Language() domain.Language {
	return domain.LanguageEnglish
}

// DetectionScore scores the Latin-script share of the letters plus
// stop-word evidence
func (p *EnglishProfile) DetectionScore(text string) float64 {
	latin, total := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		total++
		if r < 0x0900 || r > 0x097F {
			latin++
		}
	}
	if total == 0 {
		return 0
	}

	score := 0.8 * float64(latin) / float64(total)

	lower := strings.ToLower(text)
	hits := 0
	for _, w := range englishStopWords {
		if strings.Contains(lower, " "+w+" ") || strings.HasPrefix(lower, w+" ") {
			hits++
		}
	}
	score += 0.2 * float64(hits) / float64(len(englishStopWords))

	if score > 1 {
		score = 1
	}
	return score
}

// MatchHeading reports whether a line opens a new clause
func (p *EnglishProfile) MatchHeading(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}

	for _, re := range englishHeadingPatterns {
		if m := re.FindStringSubmatch(trimmed); m != nil {
			return m[1], true
		}
	}

	// ALL-CAPS heading lines are common in contracts
	if len(trimmed) > 3 && len(trimmed) < 100 && isUpperLine(trimmed) {
		return trimmed, true
	}
	return "", false
}

// IsAbbreviation reports whether a period-terminated token is a known
// abbreviation rather than a sentence end
func (p *EnglishProfile) IsAbbreviation(token string) bool {
	t := strings.ToLower(strings.Trim(token, "()\"'"))
	t = strings.TrimSuffix(t, ".")
	_, ok := englishAbbreviations[t]
	return ok
}

// ExtractEntities extracts parties, dates, amounts, jurisdictions, and
// obligation statements from one clause
func (p *EnglishProfile) ExtractEntities(clause domain.Clause) ([]domain.Entity, error) {
	return extractWithPatterns(clause, p.patterns, p.floor)
}

func isUpperLine(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func englishEntityPatterns() []entityPattern {
	return []entityPattern{
		// Parties: corporate suffixes are the strongest signal
		{
			kind:       domain.EntityParty,
			re:         regexp.MustCompile(`((?:[A-Z][A-Za-z&.]*\s+)+(?:Pvt\.?\s+Ltd\.?|Private\s+Limited|Ltd\.?|Limited|LLP|Inc\.?|Corp\.?))`),
			confidence: 0.85,
			group:      1,
			normalize:  trimName,
		},
		{
			kind:       domain.EntityParty,
			re:         regexp.MustCompile(`(?i)hereinafter\s+(?:referred\s+to\s+as|called)\s+(?:the\s+)?["']?([A-Za-z][A-Za-z\s]{2,40}?)["']?[\s,.)]`),
			confidence: 0.75,
			group:      1,
			normalize:  trimName,
		},
		{
			kind:       domain.EntityParty,
			re:         regexp.MustCompile(`(?i)between\s+([A-Z][A-Za-z&.\s]{3,60}?)\s+(?:and|,|\()`),
			confidence: 0.60,
			group:      1,
			normalize:  trimName,
		},

		// Dates: numeric forms then month-name forms
		{
			kind:       domain.EntityDate,
			re:         regexp.MustCompile(`\b(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{4})\b`),
			confidence: 0.90,
			group:      1,
			normalize:  normalizeDate,
		},
		{
			kind:       domain.EntityDate,
			re:         regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
			confidence: 0.90,
			group:      1,
			normalize:  normalizeDate,
		},
		{
			kind:       domain.EntityDate,
			re:         regexp.MustCompile(`(?i)\b(\d{1,2}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4})\b`),
			confidence: 0.85,
			group:      1,
			normalize:  normalizeDate,
		},
		{
			kind:       domain.EntityDate,
			re:         regexp.MustCompile(`(?i)\b((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4})\b`),
			confidence: 0.85,
			group:      1,
			normalize:  normalizeDate,
		},

		// Amounts: rupee forms, then western currencies, then worded units
		{
			kind:       domain.EntityAmount,
			re:         regexp.MustCompile(`(?:Rs\.?|INR|₹)\s*([\d,]+(?:\.\d{2})?)`),
			confidence: 0.95,
			group:      1,
			normalize:  normalizeAmount,
		},
		{
			kind:       domain.EntityAmount,
			re:         regexp.MustCompile(`(?:\$|USD|EUR|GBP)\s*([\d,]+(?:\.\d{2})?)`),
			confidence: 0.95,
			group:      1,
			normalize:  normalizeAmount,
		},
		{
			kind:       domain.EntityAmount,
			re:         regexp.MustCompile(`(?i)([\d,]+(?:\.\d{2})?)\s*(?:rupees|lakhs?|crores?)`),
			confidence: 0.80,
			group:      1,
			normalize:  normalizeAmount,
		},

		// Jurisdiction
		{
			kind:       domain.EntityJurisdiction,
			re:         regexp.MustCompile(`(?i)(?:exclusive\s+)?jurisdiction\s+of\s+the\s+courts?\s+(?:of|at|in)\s+([A-Z][A-Za-z\s]{2,30}?)[.,;]`),
			confidence: 0.80,
			group:      1,
			normalize:  trimName,
		},
		{
			kind:       domain.EntityJurisdiction,
			re:         regexp.MustCompile(`(?i)laws?\s+of\s+([A-Z][A-Za-z\s]{2,30}?)[.,;]`),
			confidence: 0.70,
			group:      1,
			normalize:  trimName,
		},

		// Obligations: the sentence around a strong modal marker
		{
			kind:       domain.EntityObligation,
			re:         regexp.MustCompile(`(?i)[^.;\n]*\b(?:shall|must|undertakes\s+to|agrees\s+to|is\s+required\s+to)\b[^.;\n]*`),
			confidence: 0.80,
		},
		{
			kind:       domain.EntityObligation,
			re:         regexp.MustCompile(`(?i)[^.;\n]*\b(?:should|is\s+expected\s+to|is\s+responsible\s+for)\b[^.;\n]*`),
			confidence: 0.55,
		},
	}
}
