package domain

import "time"

// ContractType is the coarse classification of a contract document
type ContractType string

const (
	ContractEmployment  ContractType = "employment_agreement"
	ContractVendor      ContractType = "vendor_contract"
	ContractLease       ContractType = "lease_agreement"
	ContractPartnership ContractType = "partnership_deed"
	ContractService     ContractType = "service_contract"
	ContractNDA         ContractType = "nda"
	ContractUnknown     ContractType = "unknown"
)

// ComplianceStatus is the outcome of one statutory requirement check
type ComplianceStatus string

const (
	// ComplianceSatisfied means the requirement is addressed in the text
	ComplianceSatisfied ComplianceStatus = "satisfied"
	// ComplianceMissing means the requirement was not found in the text
	ComplianceMissing ComplianceStatus = "missing"
	// ComplianceManualReview means the requirement cannot be checked by
	// pattern presence and needs human review
	ComplianceManualReview ComplianceStatus = "manual_review"
)

// ComplianceCheck records the outcome of a single requirement check
type ComplianceCheck struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Status      ComplianceStatus `json:"status"`
}

// ComplianceSummary reports statutory requirement coverage for a
// contract: basic Contract Act elements plus contract-type specific
// checks. Score is the percentage of checks satisfied.
type ComplianceSummary struct {
	Score           float64           `json:"score"`
	Checks          []ComplianceCheck `json:"checks"`
	Issues          []string          `json:"issues,omitempty"`
	Warnings        []string          `json:"warnings,omitempty"`
	Recommendations []string          `json:"recommendations,omitempty"`
}

// RiskSummary condenses an analysis for list views and audit trails
type RiskSummary struct {
	TotalClauses   int               `json:"total_clauses"`
	TotalFindings  int               `json:"total_findings"`
	TotalEntities  int               `json:"total_entities"`
	BySeverity     map[Severity]int  `json:"findings_by_severity"`
	AmbiguityCount int               `json:"ambiguity_count"`
	TopClauseIDs   []string          `json:"top_clause_ids,omitempty"` // highest scoring first
	Recommendation string            `json:"recommendation"`
	Compliance     ComplianceSummary `json:"compliance"`
}

// AnalysisResult is the immutable, audit-grade outcome of one analysis run.
// Re-analysis of the same text produces a new result; prior results are
// never mutated.
type AnalysisResult struct {
	ID string `json:"id"`

	Document Document `json:"document"`

	// ContentHash is the SHA3-256 of the normalized input text, hex encoded.
	// It supports duplicate detection and tamper evidence.
	ContentHash string `json:"content_hash"`

	ContractType ContractType `json:"contract_type"`

	Clauses       []Clause      `json:"clauses"`
	Entities      []Entity      `json:"entities"`
	Findings      []Finding     `json:"findings"`
	ClauseScores  []RiskScore   `json:"clause_scores"`
	ContractScore RiskScore     `json:"contract_score"`
	Explanations  []Explanation `json:"explanations"`

	Summary RiskSummary `json:"summary"`

	// EngineVersion, ScoringVersion, and KBVersion pin the code, scoring
	// policy, and pattern set that produced this result
	EngineVersion  string `json:"engine_version"`
	ScoringVersion string `json:"scoring_version"`
	KBVersion      string `json:"kb_version,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// FindingsForClause returns the findings recorded against one clause
func (r *AnalysisResult) FindingsForClause(clauseID string) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.ClauseID == clauseID {
			out = append(out, f)
		}
	}
	return out
}

// ExplanationFor returns the explanation attached to a finding, if any
func (r *AnalysisResult) ExplanationFor(findingID string) *Explanation {
	for i := range r.Explanations {
		if r.Explanations[i].FindingID == findingID {
			return &r.Explanations[i]
		}
	}
	return nil
}
