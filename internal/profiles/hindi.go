package profiles

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.LanguageProfile = (*HindiProfile)(nil)

// Common Hindi legal terms used as detection evidence
var hindiLegalTerms = []string{
	"अनुबंध", "करार", "पक्ष", "नियम", "शर्तें", "दायित्व", "अधिकार",
	"समाप्ति", "हस्ताक्षर", "गवाह", "तारीख", "राशि", "भुगतान", "अवधि",
	"नोटिस", "विवाद", "मध्यस्थता", "क्षतिपूर्ति", "गोपनीयता",
}

// Heading patterns: section words followed by ASCII or Devanagari digits,
// plus plain numbered lines in either digit script
var hindiHeadingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:धारा|अनुच्छेद|खंड|भाग)\s+([\d०-९]+(?:[.][\d०-९]+)*)`),
	regexp.MustCompile(`^([\d०-९]+(?:[.][\d०-९]+)*)[.:\-)]\s+\S`),
}

// HindiProfile implements the extraction contract for Hindi contracts
type HindiProfile struct {
	floor    float64
	patterns []entityPattern
}

// NewHindiProfile creates the Hindi profile with the default confidence floor
func NewHindiProfile() *HindiProfile {
	return &HindiProfile{
		floor:    DefaultConfidenceFloor,
		patterns: hindiEntityPatterns(),
	}
}

// Language returns "hi"
func (p *HindiProfile) Language() domain.Language {
	return domain.LanguageHindi
}

// DetectionScore scores the Devanagari share of the letters plus legal
// term evidence. The Devanagari block is U+0900..U+097F.
func (p *HindiProfile) DetectionScore(text string) float64 {
	devanagari, total := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		total++
		if r >= 0x0900 && r <= 0x097F {
			devanagari++
		}
	}
	if total == 0 {
		return 0
	}

	score := 0.8 * float64(devanagari) / float64(total)

	hits := 0
	for _, term := range hindiLegalTerms {
		if strings.Contains(text, term) {
			hits++
		}
	}
	score += 0.2 * float64(hits) / float64(len(hindiLegalTerms))

	if score > 1 {
		score = 1
	}
	return score
}

// MatchHeading reports whether a line opens a new clause
func (p *HindiProfile) MatchHeading(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}
	for _, re := range hindiHeadingPatterns {
		if m := re.FindStringSubmatch(trimmed); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// IsAbbreviation: Hindi contract text rarely uses period-terminated
// abbreviations; only the rupee shorthand matters in practice
func (p *HindiProfile) IsAbbreviation(token string) bool {
	t := strings.TrimSuffix(strings.TrimSpace(token), ".")
	return t == "रु" || t == "सं"
}

// ExtractEntities extracts entities from one Hindi clause
func (p *HindiProfile) ExtractEntities(clause domain.Clause) ([]domain.Entity, error) {
	return extractWithPatterns(clause, p.patterns, p.floor)
}

func hindiEntityPatterns() []entityPattern {
	return []entityPattern{
		// Parties: transliterated corporate suffixes
		{
			kind:       domain.EntityParty,
			re:         regexp.MustCompile(`([\p{Devanagari}][\p{Devanagari}\s]+?(?:प्राइवेट\s+लिमिटेड|लिमिटेड|कंपनी))`),
			confidence: 0.80,
			group:      1,
			normalize:  trimName,
		},
		{
			kind:       domain.EntityParty,
			re:         regexp.MustCompile(`([\p{Devanagari}][\p{Devanagari}\s]{2,40}?)\s+(?:और|तथा|एवं)\s+[\p{Devanagari}].{0,40}?के\s+बीच`),
			confidence: 0.60,
			group:      1,
			normalize:  trimName,
		},

		// Dates: numeric forms are shared across scripts
		{
			kind:       domain.EntityDate,
			re:         regexp.MustCompile(`\b(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{4})\b`),
			confidence: 0.90,
			group:      1,
			normalize:  normalizeDate,
		},
		{
			kind:       domain.EntityDate,
			re:         regexp.MustCompile(`(\d{1,2}\s+(?:जनवरी|फरवरी|मार्च|अप्रैल|मई|जून|जुलाई|अगस्त|सितंबर|अक्टूबर|नवंबर|दिसंबर)\s+\d{4})`),
			confidence: 0.85,
			group:      1,
		},

		// Amounts
		{
			kind:       domain.EntityAmount,
			re:         regexp.MustCompile(`(?:रु\.?|₹|Rs\.?|INR)\s*([\d,०-९]+(?:\.\d{2})?)`),
			confidence: 0.95,
			group:      1,
			normalize:  normalizeHindiAmount,
		},
		{
			kind:       domain.EntityAmount,
			re:         regexp.MustCompile(`([\d,०-९]+)\s*(?:रुपये|रुपए|लाख|करोड़)`),
			confidence: 0.80,
			group:      1,
			normalize:  normalizeHindiAmount,
		},

		// Jurisdiction
		{
			kind:       domain.EntityJurisdiction,
			re:         regexp.MustCompile(`([\p{Devanagari}]{2,20})\s+(?:के\s+)?न्यायालय`),
			confidence: 0.70,
			group:      1,
			normalize:  trimName,
		},
		{
			kind:       domain.EntityJurisdiction,
			re:         regexp.MustCompile(`क्षेत्राधिकार\s+([\p{Devanagari}]{2,20})`),
			confidence: 0.70,
			group:      1,
			normalize:  trimName,
		},

		// Obligations: sentence around strong Hindi obligation markers
		{
			kind:       domain.EntityObligation,
			re:         regexp.MustCompile(`[^।.;\n]*(?:करेगा|करेगी|करना\s+होगा|बाध्य\s+(?:होगा|है)|अनिवार्य|देय\s+होगा)[^।.;\n]*`),
			confidence: 0.80,
		},
	}
}

// normalizeHindiAmount converts Devanagari digits before the shared
// amount normalization
func normalizeHindiAmount(value, fullMatch string) string {
	return normalizeAmount(devanagariToASCII(value), devanagariToASCII(fullMatch))
}

func devanagariToASCII(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '०' && r <= '९' {
			b.WriteRune('0' + (r - '०'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
