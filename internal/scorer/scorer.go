package scorer

import (
	"math"
	"sort"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// Version identifies the scoring configuration. Any change to the
// weights, the saturation constant, or the band cutoffs must bump it.
const Version = "v1"

// saturationK controls how quickly accumulated weight saturates toward
// a score of 100.
const saturationK = 20.0

// severityWeights maps each severity to its base contribution before
// confidence scaling.
var severityWeights = map[domain.Severity]float64{
	domain.SeverityLow:      1,
	domain.SeverityMedium:   3,
	domain.SeverityHigh:     7,
	domain.SeverityCritical: 15,
}

// ScoreClause computes the risk score for one clause from its findings.
// The score is a pure function of the findings: weighted severity sums
// are pushed through a saturating curve so no single clause can exceed
// 100 regardless of how many patterns hit it. The band is floored at
// the highest finding severity, so one critical finding always yields
// a critical clause band even before the value saturates.
func ScoreClause(clauseID string, findings []domain.Finding) domain.RiskScore {
	sum := 0.0
	ids := make([]string, 0, len(findings))
	band := domain.SeverityLow
	for _, f := range findings {
		sum += severityWeights[f.Severity] * f.Confidence
		ids = append(ids, f.ID)
		if f.Severity.Rank() > band.Rank() {
			band = f.Severity
		}
	}
	sort.Strings(ids)

	value := saturate(sum)
	if valueBand := Band(value); valueBand.Rank() > band.Rank() {
		band = valueBand
	}
	return domain.RiskScore{
		ClauseID:             clauseID,
		Value:                value,
		Band:                 band,
		ContributingFindings: ids,
	}
}

// ScoreContract computes the overall contract score from all findings
// across all clauses. The band is floored at the highest clause band,
// so a single critical clause keeps the contract critical even when
// the aggregate value alone would band lower.
func ScoreContract(findings []domain.Finding, clauseScores []domain.RiskScore) domain.RiskScore {
	sum := 0.0
	ids := make([]string, 0, len(findings))
	for _, f := range findings {
		sum += severityWeights[f.Severity] * f.Confidence
		ids = append(ids, f.ID)
	}
	sort.Strings(ids)

	value := saturate(sum)
	band := Band(value)
	for _, cs := range clauseScores {
		if cs.Band.Rank() > band.Rank() {
			band = cs.Band
		}
	}

	return domain.RiskScore{
		Value:                value,
		Band:                 band,
		ContributingFindings: ids,
	}
}

// Band maps a score in [0,100] to its severity band.
func Band(value float64) domain.Severity {
	switch {
	case value < 25:
		return domain.SeverityLow
	case value < 50:
		return domain.SeverityMedium
	case value < 75:
		return domain.SeverityHigh
	default:
		return domain.SeverityCritical
	}
}

func saturate(sum float64) float64 {
	if sum <= 0 {
		return 0
	}
	return 100 * (1 - math.Exp(-sum/saturationK))
}
