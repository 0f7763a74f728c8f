package services

import (
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/scorer"
)

// EngineVersion pins the pipeline code that produced a result.
const EngineVersion = "1.0.0"

// recordClock hands out strictly increasing completion timestamps so
// record IDs stay unique and ordered even when runs finish within the
// same nanosecond tick.
type recordClock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *recordClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	if !now.After(c.last) {
		now = c.last.Add(time.Nanosecond)
	}
	c.last = now
	return now
}

var clock recordClock

// recorderInput bundles everything the recorder assembles into the
// immutable analysis record.
type recorderInput struct {
	Document      domain.Document
	ContractType  domain.ContractType
	Clauses       []domain.Clause
	Entities      []domain.Entity
	Findings      []domain.Finding
	ClauseScores  []domain.RiskScore
	ContractScore domain.RiskScore
	Explanations  []domain.Explanation
	Compliance    domain.ComplianceSummary
	KBVersion     string
	StartedAt     time.Time
}

// buildResult assembles the immutable AnalysisResult: content hash,
// record ID, monotonic completion timestamp, and versions. Pure except
// for the clock; persistence is the caller's concern.
func buildResult(in recorderInput) *domain.AnalysisResult {
	completedAt := clock.next()

	return &domain.AnalysisResult{
		ID:             fmt.Sprintf("ANL-%s", completedAt.Format("20060102T150405.000000000Z")),
		Document:       in.Document,
		ContentHash:    ContentHash(in.Document.Text),
		ContractType:   in.ContractType,
		Clauses:        in.Clauses,
		Entities:       in.Entities,
		Findings:       in.Findings,
		ClauseScores:   in.ClauseScores,
		ContractScore:  in.ContractScore,
		Explanations:   in.Explanations,
		Summary:        buildSummary(in),
		EngineVersion:  EngineVersion,
		ScoringVersion: scorer.Version,
		KBVersion:      in.KBVersion,
		StartedAt:      in.StartedAt,
		CompletedAt:    completedAt,
	}
}

// ContentHash returns the SHA3-256 hex digest of the input text, used
// for duplicate detection and tamper evidence on stored records.
func ContentHash(text string) string {
	sum := sha3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func buildSummary(in recorderInput) domain.RiskSummary {
	bySeverity := make(map[domain.Severity]int, 4)
	ambiguity := 0
	for _, f := range in.Findings {
		bySeverity[f.Severity]++
		if f.Category == "ambiguity" {
			ambiguity++
		}
	}

	top := make([]domain.RiskScore, len(in.ClauseScores))
	copy(top, in.ClauseScores)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Value > top[j].Value
	})
	if len(top) > 3 {
		top = top[:3]
	}
	topIDs := make([]string, 0, len(top))
	for _, cs := range top {
		topIDs = append(topIDs, cs.ClauseID)
	}

	return domain.RiskSummary{
		TotalClauses:   len(in.Clauses),
		TotalFindings:  len(in.Findings),
		TotalEntities:  len(in.Entities),
		BySeverity:     bySeverity,
		AmbiguityCount: ambiguity,
		TopClauseIDs:   topIDs,
		Recommendation: recommendation(in.ContractScore.Band),
		Compliance:     in.Compliance,
	}
}

func recommendation(band domain.Severity) string {
	switch band {
	case domain.SeverityCritical:
		return "This contract contains critical risks. Do not sign without legal review; several clauses could severely impact your business."
	case domain.SeverityHigh:
		return "This contract contains significant risks. We strongly recommend legal review before signing and negotiating the high-risk terms."
	case domain.SeverityMedium:
		return "This contract has some concerning clauses. Review the highlighted sections carefully and consider negotiating modifications."
	default:
		return "This contract appears to have low risk. Standard review is recommended before signing."
	}
}
