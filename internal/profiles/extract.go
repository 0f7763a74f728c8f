package profiles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// DefaultConfidenceFloor discards entities the extractor is not reasonably
// sure about, instead of returning them with near-zero confidence
const DefaultConfidenceFloor = 0.50

// entityPattern couples a compiled expression with the entity kind it
// extracts, the confidence assigned to its matches, and an optional
// normalizer for the canonical value.
type entityPattern struct {
	kind       domain.EntityKind
	re         *regexp.Regexp
	confidence float64
	group      int // capture group holding the value; 0 = whole match
	normalize  func(value, fullMatch string) string
}

// extractWithPatterns applies a pattern set to one clause. Duplicate
// (kind, value) pairs keep only the highest-confidence entity. Matches
// below the floor are discarded.
func extractWithPatterns(clause domain.Clause, patterns []entityPattern, floor float64) ([]domain.Entity, error) {
	if strings.TrimSpace(clause.Text) == "" {
		return nil, domain.ErrInvalidClause
	}

	best := make(map[string]domain.Entity)
	var order []string

	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(clause.Text, -1) {
			value := m[0]
			if p.group > 0 && p.group < len(m) {
				value = m[p.group]
			}
			value = collapseSpaces(value)
			if value == "" || p.confidence < floor {
				continue
			}

			entity := domain.Entity{
				Kind:       p.kind,
				Value:      value,
				ClauseID:   clause.ID,
				Confidence: p.confidence,
			}
			if p.normalize != nil {
				entity.NormalizedValue = p.normalize(value, collapseSpaces(m[0]))
			}

			key := string(p.kind) + "\x00" + strings.ToLower(value)
			if prev, ok := best[key]; !ok {
				best[key] = entity
				order = append(order, key)
			} else if entity.Confidence > prev.Confidence {
				best[key] = entity
			}
		}
	}

	out := make([]domain.Entity, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out, nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var dateLayouts = []string{
	"02/01/2006", "02-01-2006", "02.01.2006",
	"2006-01-02",
	"2 January 2006", "January 2, 2006", "January 2 2006",
}

// normalizeDate parses common contract date spellings into RFC 3339 date
// form. Unparseable dates return "" (the raw value is still kept).
func normalizeDate(value, _ string) string {
	cleaned := strings.TrimSpace(strings.TrimSuffix(value, ","))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// normalizeAmount canonicalizes a monetary match as "CUR value", sniffing
// the currency from the full match the way the currency symbol appears.
func normalizeAmount(value, fullMatch string) string {
	currency := "INR"
	switch {
	case strings.Contains(fullMatch, "$") || strings.Contains(fullMatch, "USD"):
		currency = "USD"
	case strings.Contains(fullMatch, "EUR"):
		currency = "EUR"
	case strings.Contains(fullMatch, "GBP"):
		currency = "GBP"
	}

	numeric := strings.NewReplacer(",", "", " ", "").Replace(value)
	f, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s %s", currency, strconv.FormatFloat(f, 'f', -1, 64))
}

// trimName tidies a captured party or jurisdiction name
func trimName(value, _ string) string {
	return strings.Trim(collapseSpaces(value), " .,;:\"'")
}
