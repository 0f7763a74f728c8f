package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
	"github.com/nyaya-labs/nyaya-core/internal/runtime"
)

const (
	// DefaultExplainConcurrency caps concurrent explainer requests.
	DefaultExplainConcurrency = 4

	// DefaultExplainTimeout bounds each explainer request.
	DefaultExplainTimeout = 10 * time.Second

	// excerptLimit bounds the clause excerpt sent with each request;
	// the full contract is never sent.
	excerptLimit = 400
)

// categoryKeywords lists the terms a valid explanation must touch on,
// per pattern category. An explanation that mentions none of them is
// flagged unverified.
var categoryKeywords = map[string][]string{
	"penalty":         {"penalty", "penalties", "damages", "fine", "forfeit"},
	"indemnity":       {"indemni", "harmless", "compensate"},
	"termination":     {"terminat", "notice", "cancel"},
	"arbitration":     {"arbitrat", "dispute", "tribunal"},
	"auto_renewal":    {"renew", "lock-in", "lock in", "extend"},
	"non_compete":     {"compete", "competition", "restrict", "covenant"},
	"ip_transfer":     {"intellectual property", "copyright", "patent", "assign", "ownership"},
	"confidentiality": {"confidential", "disclosure", "secret"},
	"liability":       {"liability", "liable", "cap", "exposure"},
	"ambiguity":       {"ambigu", "vague", "unclear", "discretion", "interpret"},
}

// Reconciler attaches plain-language explanations to findings. It is
// best-effort by contract: the deterministic findings and scores are
// always produced whether or not any explanation arrives.
type Reconciler struct {
	explainer   driven.Explainer
	services    *runtime.Services
	runtime     *domain.RuntimeConfig
	concurrency int
	timeout     time.Duration
	logger      *slog.Logger
}

// ReconcilerConfig holds dependencies for the Reconciler. When
// Services is set the explainer is resolved through it on every run,
// so provider swaps take effect without restarting; Explainer pins a
// fixed implementation instead.
type ReconcilerConfig struct {
	Explainer   driven.Explainer
	Services    *runtime.Services
	Runtime     *domain.RuntimeConfig
	Concurrency int
	Timeout     time.Duration
	Logger      *slog.Logger
}

// NewReconciler creates a reconciler with defaults applied.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultExplainConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultExplainTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		explainer:   cfg.Explainer,
		services:    cfg.Services,
		runtime:     cfg.Runtime,
		concurrency: cfg.Concurrency,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

// findingGroup is one explainer request: all findings sharing a clause
// and pattern, explained once.
type findingGroup struct {
	clause   domain.Clause
	findings []domain.Finding
}

// Reconcile requests one explanation per (clause, pattern) group and
// attaches the outcome to every finding in the group. Requests run
// concurrently up to the configured cap, each with its own timeout.
// Cancelling ctx releases in-flight requests; the affected findings
// are flagged absent, never dropped.
func (r *Reconciler) Reconcile(ctx context.Context, lang domain.Language, clauses []domain.Clause, findings []domain.Finding) []domain.Explanation {
	if len(findings) == 0 {
		return nil
	}

	groups := groupFindings(clauses, findings)

	explainer := r.currentExplainer()
	if explainer == nil || (r.runtime != nil && !r.runtime.ExplainerAvailable()) {
		return absentAll(findings, "no explainer configured")
	}

	explanations := make([]domain.Explanation, 0, len(findings))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, r.concurrency)

	for _, group := range groups {
		wg.Add(1)
		go func(g findingGroup) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				explanations = append(explanations, absentAll(g.findings, "analysis cancelled")...)
				mu.Unlock()
				return
			}

			result := r.explainGroup(ctx, explainer, lang, g)
			mu.Lock()
			explanations = append(explanations, result...)
			mu.Unlock()
		}(group)
	}
	wg.Wait()

	sort.Slice(explanations, func(i, j int) bool {
		return explanations[i].FindingID < explanations[j].FindingID
	})
	return explanations
}

// currentExplainer resolves the explainer for this run, preferring the
// runtime registry when one is wired.
func (r *Reconciler) currentExplainer() driven.Explainer {
	if r.services != nil {
		if svc := r.services.Explainer(); svc != nil {
			return svc
		}
	}
	return r.explainer
}

func (r *Reconciler) explainGroup(ctx context.Context, explainer driven.Explainer, lang domain.Language, g findingGroup) []domain.Explanation {
	lead := g.findings[0]

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	text, err := explainer.Explain(reqCtx, driven.ExplainRequest{
		Category:      lead.Category,
		Severity:      lead.Severity,
		MatchedText:   lead.MatchedText,
		ClauseExcerpt: excerpt(g.clause.Text),
		Language:      lang,
	})
	if err != nil {
		reason := "explainer error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "explainer timeout"
		} else if errors.Is(err, context.Canceled) {
			reason = "analysis cancelled"
		}
		r.logger.Warn("explanation request failed",
			"clause_id", g.clause.ID,
			"category", lead.Category,
			"error", err)
		return absentAll(g.findings, reason)
	}

	status := domain.ExplanationVerified
	reason := ""
	if why, ok := validateExplanation(text, lead.Category); !ok {
		status = domain.ExplanationUnverified
		reason = why
	}

	out := make([]domain.Explanation, 0, len(g.findings))
	for _, f := range g.findings {
		out = append(out, domain.Explanation{
			FindingID: f.ID,
			Text:      text,
			Source:    explanationSource(explainer),
			Status:    status,
			Reason:    reason,
		})
	}
	return out
}

// explanationSource records which kind of collaborator produced the text.
// Explainers that declare their own source (the template fallback) are
// honoured; everything else is a generative model.
func explanationSource(explainer driven.Explainer) domain.ExplanationSource {
	if src, ok := explainer.(interface{ Source() domain.ExplanationSource }); ok {
		return src.Source()
	}
	return domain.ExplanationSourceModel
}

// validateExplanation rejects empty or degenerate text and text that
// never touches the finding's category.
func validateExplanation(text, category string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "empty explanation", false
	}
	if len(trimmed) < 20 {
		return "explanation too short", false
	}

	lower := strings.ToLower(trimmed)
	keywords := append([]string{strings.ReplaceAll(category, "_", " ")}, categoryKeywords[category]...)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return "", true
		}
	}
	return "explanation does not reference the finding category", false
}

// groupFindings groups findings by (clause, pattern), preserving first
// appearance order.
func groupFindings(clauses []domain.Clause, findings []domain.Finding) []findingGroup {
	byID := make(map[string]domain.Clause, len(clauses))
	for _, c := range clauses {
		byID[c.ID] = c
	}

	index := make(map[string]int)
	var groups []findingGroup
	for _, f := range findings {
		key := f.ClauseID + "|" + f.PatternID
		if i, ok := index[key]; ok {
			groups[i].findings = append(groups[i].findings, f)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, findingGroup{
			clause:   byID[f.ClauseID],
			findings: []domain.Finding{f},
		})
	}
	return groups
}

func absentAll(findings []domain.Finding, reason string) []domain.Explanation {
	out := make([]domain.Explanation, 0, len(findings))
	for _, f := range findings {
		out = append(out, domain.Explanation{
			FindingID: f.ID,
			Status:    domain.ExplanationAbsent,
			Reason:    reason,
		})
	}
	return out
}

func excerpt(text string) string {
	if len(text) <= excerptLimit {
		return text
	}
	cut := text[:excerptLimit]
	if idx := strings.LastIndexByte(cut, ' '); idx > excerptLimit/2 {
		cut = cut[:idx]
	}
	return cut
}
