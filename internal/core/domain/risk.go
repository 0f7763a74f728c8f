package domain

// Severity ranks how dangerous a matched risk pattern is.
// The same scale is used for the bands derived from numeric risk scores.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the ordering position of a severity (low=0 .. critical=3).
// Unknown severities rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// Valid reports whether the severity is a known value
func (s Severity) Valid() bool {
	return s.Rank() >= 0
}

// MaxSeverity returns the higher-ranked of two severities
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// PatternKind declares how a risk pattern matches clause text
type PatternKind string

const (
	// PatternLexical matches with a deterministic regular expression;
	// findings carry confidence 1.0.
	PatternLexical PatternKind = "lexical"

	// PatternSemantic matches by similarity against a reference phrase set;
	// findings carry the similarity score as confidence and are only
	// accepted above the pattern's threshold.
	PatternSemantic PatternKind = "semantic"
)

// RiskPattern is one entry of the Knowledge Base. Patterns are versioned,
// loaded once per run, and never mutated while an analysis is in flight.
type RiskPattern struct {
	ID       string      `json:"pattern_id"`
	Category string      `json:"category"` // indemnity, termination, penalty, ...
	Severity Severity    `json:"severity"`
	Kind     PatternKind `json:"kind"`

	// Expression is the regex for lexical patterns
	Expression string `json:"expression,omitempty"`

	// ReferencePhrases and Threshold drive semantic patterns
	ReferencePhrases []string `json:"reference_phrases,omitempty"`
	Threshold        float64  `json:"threshold,omitempty"`

	// Languages the pattern applies to
	Languages []Language `json:"languages"`

	// Description is shown alongside findings and used for fallback
	// explanations when no generative explainer is configured
	Description string `json:"description,omitempty"`
}

// AppliesTo reports whether the pattern is active for a language
func (p *RiskPattern) AppliesTo(lang Language) bool {
	for _, l := range p.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Finding records that a specific risk pattern matched a specific clause
type Finding struct {
	ID          string   `json:"id"`
	ClauseID    string   `json:"clause_id"`
	PatternID   string   `json:"pattern_id"`
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Confidence  float64  `json:"confidence"` // 1.0 for lexical matches
	MatchedSpan Span     `json:"matched_span"`
	MatchedText string   `json:"matched_text"`
}

// ExplanationSource tells where an explanation came from
type ExplanationSource string

const (
	ExplanationSourceModel    ExplanationSource = "model"
	ExplanationSourceTemplate ExplanationSource = "template"
)

// ExplanationStatus is the reconciliation outcome for one finding group
type ExplanationStatus string

const (
	// ExplanationVerified passed validation against its finding
	ExplanationVerified ExplanationStatus = "verified"
	// ExplanationUnverified was returned but failed validation;
	// the text is retained for display but must not be trusted
	ExplanationUnverified ExplanationStatus = "unverified"
	// ExplanationAbsent means the explainer was unavailable, timed out,
	// or errored; scores and findings remain authoritative
	ExplanationAbsent ExplanationStatus = "absent"
)

// Explanation is the optional plain-language annotation attached to a
// finding. It is additive: scoring never depends on it.
type Explanation struct {
	FindingID string            `json:"finding_id"`
	Text      string            `json:"text,omitempty"`
	Source    ExplanationSource `json:"source,omitempty"`
	Status    ExplanationStatus `json:"status"`
	Reason    string            `json:"reason,omitempty"` // why unverified/absent
}

// RiskScore is a normalized [0,100] risk value with its severity band.
// Clause-level scores carry the clause ID; the single contract-level score
// does not.
type RiskScore struct {
	ClauseID             string   `json:"clause_id,omitempty"`
	Value                float64  `json:"value"` // [0,100]
	Band                 Severity `json:"severity_band"`
	ContributingFindings []string `json:"contributing_finding_ids"`
}
