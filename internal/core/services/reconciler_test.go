package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven/mocks"
)

func reconcilerFixture(explainer driven.Explainer) *Reconciler {
	rc := domain.NewRuntimeConfig("redis")
	rc.SetExplainerAvailable(explainer != nil)
	return NewReconciler(ReconcilerConfig{
		Explainer: explainer,
		Runtime:   rc,
		Timeout:   time.Second,
		Logger:    quietLogger(),
	})
}

func reconcilerClauses() []domain.Clause {
	return []domain.Clause{
		{ID: "c1", Ordinal: 0, Text: "The Supplier shall pay a penalty of Rs. 10,000 per day of delay."},
		{ID: "c2", Ordinal: 1, Text: "The Supplier shall indemnify the Client against all claims."},
	}
}

func TestReconcileGroupsByClauseAndPattern(t *testing.T) {
	explainer := mocks.NewMockExplainer()
	r := reconcilerFixture(explainer)

	// Two findings from the same pattern on c1 form one group; the c2
	// finding is its own group.
	findings := []domain.Finding{
		{ID: "f1", ClauseID: "c1", PatternID: "pen-001", Category: "penalty", Severity: domain.SeverityHigh},
		{ID: "f2", ClauseID: "c1", PatternID: "pen-001", Category: "penalty", Severity: domain.SeverityHigh},
		{ID: "f3", ClauseID: "c2", PatternID: "ind-001", Category: "indemnity", Severity: domain.SeverityCritical},
	}

	explanations := r.Reconcile(context.Background(), domain.LanguageEnglish, reconcilerClauses(), findings)

	if len(explanations) != 3 {
		t.Fatalf("expected 3 explanations, got %d", len(explanations))
	}
	if got := len(explainer.Requests()); got != 2 {
		t.Errorf("expected 2 explainer requests (one per group), got %d", got)
	}

	for _, e := range explanations {
		if e.Status != domain.ExplanationVerified {
			t.Errorf("explanation %s status = %v, want verified", e.FindingID, e.Status)
		}
		if e.Source != domain.ExplanationSourceModel {
			t.Errorf("explanation %s source = %v", e.FindingID, e.Source)
		}
	}
}

func TestReconcileNeverSendsFullContract(t *testing.T) {
	explainer := mocks.NewMockExplainer()
	r := reconcilerFixture(explainer)

	long := make([]byte, 0, 5000)
	for len(long) < 5000 {
		long = append(long, "indemnify and hold harmless the client from all claims. "...)
	}
	clauses := []domain.Clause{{ID: "c1", Text: string(long)}}
	findings := []domain.Finding{
		{ID: "f1", ClauseID: "c1", PatternID: "ind-001", Category: "indemnity", Severity: domain.SeverityHigh},
	}

	r.Reconcile(context.Background(), domain.LanguageEnglish, clauses, findings)

	reqs := explainer.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if len(reqs[0].ClauseExcerpt) > excerptLimit {
		t.Errorf("excerpt length %d exceeds limit %d", len(reqs[0].ClauseExcerpt), excerptLimit)
	}
}

func TestReconcileFlagsUnverified(t *testing.T) {
	explainer := mocks.NewMockExplainer()
	explainer.ExplainFn = func(ctx context.Context, req driven.ExplainRequest) (string, error) {
		return "This text talks about something else entirely, nothing relevant here.", nil
	}
	r := reconcilerFixture(explainer)

	findings := []domain.Finding{
		{ID: "f1", ClauseID: "c1", PatternID: "pen-001", Category: "penalty", Severity: domain.SeverityHigh},
	}

	explanations := r.Reconcile(context.Background(), domain.LanguageEnglish, reconcilerClauses(), findings)

	if len(explanations) != 1 {
		t.Fatalf("expected 1 explanation, got %d", len(explanations))
	}
	if explanations[0].Status != domain.ExplanationUnverified {
		t.Errorf("status = %v, want unverified", explanations[0].Status)
	}
	if explanations[0].Text == "" {
		t.Error("unverified explanations keep their text for display")
	}
	if explanations[0].Reason == "" {
		t.Error("unverified explanations carry a reason")
	}
}

func TestReconcileFlagsDegenerate(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "   \n "},
		{"too short", "penalty bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			explainer := mocks.NewMockExplainer()
			explainer.ExplainFn = func(ctx context.Context, req driven.ExplainRequest) (string, error) {
				return tt.text, nil
			}
			r := reconcilerFixture(explainer)

			findings := []domain.Finding{
				{ID: "f1", ClauseID: "c1", PatternID: "pen-001", Category: "penalty", Severity: domain.SeverityHigh},
			}
			explanations := r.Reconcile(context.Background(), domain.LanguageEnglish, reconcilerClauses(), findings)
			if explanations[0].Status != domain.ExplanationUnverified {
				t.Errorf("status = %v, want unverified", explanations[0].Status)
			}
		})
	}
}

func TestReconcileExplainerError(t *testing.T) {
	explainer := mocks.NewMockExplainer()
	explainer.ExplainFn = func(ctx context.Context, req driven.ExplainRequest) (string, error) {
		return "", errors.New("upstream 500")
	}
	r := reconcilerFixture(explainer)

	findings := []domain.Finding{
		{ID: "f1", ClauseID: "c1", PatternID: "pen-001", Category: "penalty", Severity: domain.SeverityHigh},
	}

	explanations := r.Reconcile(context.Background(), domain.LanguageEnglish, reconcilerClauses(), findings)

	if len(explanations) != 1 {
		t.Fatalf("expected 1 explanation, got %d", len(explanations))
	}
	if explanations[0].Status != domain.ExplanationAbsent {
		t.Errorf("status = %v, want absent", explanations[0].Status)
	}
}

func TestReconcileTimeout(t *testing.T) {
	explainer := mocks.NewMockExplainer()
	explainer.ExplainFn = func(ctx context.Context, req driven.ExplainRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	rc := domain.NewRuntimeConfig("redis")
	rc.SetExplainerAvailable(true)
	r := NewReconciler(ReconcilerConfig{
		Explainer: explainer,
		Runtime:   rc,
		Timeout:   10 * time.Millisecond,
		Logger:    quietLogger(),
	})

	findings := []domain.Finding{
		{ID: "f1", ClauseID: "c1", PatternID: "pen-001", Category: "penalty", Severity: domain.SeverityHigh},
	}

	explanations := r.Reconcile(context.Background(), domain.LanguageEnglish, reconcilerClauses(), findings)

	if explanations[0].Status != domain.ExplanationAbsent {
		t.Errorf("status = %v, want absent", explanations[0].Status)
	}
	if explanations[0].Reason != "explainer timeout" {
		t.Errorf("reason = %q", explanations[0].Reason)
	}
}

func TestReconcileCancellation(t *testing.T) {
	explainer := mocks.NewMockExplainer()
	explainer.ExplainFn = func(ctx context.Context, req driven.ExplainRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	r := reconcilerFixture(explainer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	findings := []domain.Finding{
		{ID: "f1", ClauseID: "c1", PatternID: "pen-001", Category: "penalty", Severity: domain.SeverityHigh},
	}

	explanations := r.Reconcile(ctx, domain.LanguageEnglish, reconcilerClauses(), findings)

	if len(explanations) != 1 {
		t.Fatalf("cancelled runs still flag every finding, got %d explanations", len(explanations))
	}
	if explanations[0].Status != domain.ExplanationAbsent {
		t.Errorf("status = %v, want absent", explanations[0].Status)
	}
}

func TestReconcileNoExplainer(t *testing.T) {
	r := reconcilerFixture(nil)

	findings := []domain.Finding{
		{ID: "f1", ClauseID: "c1", PatternID: "pen-001", Category: "penalty", Severity: domain.SeverityHigh},
	}

	explanations := r.Reconcile(context.Background(), domain.LanguageEnglish, reconcilerClauses(), findings)

	if len(explanations) != 1 || explanations[0].Status != domain.ExplanationAbsent {
		t.Errorf("explanations = %+v", explanations)
	}
}

func TestReconcileNoFindings(t *testing.T) {
	r := reconcilerFixture(mocks.NewMockExplainer())
	if got := r.Reconcile(context.Background(), domain.LanguageEnglish, reconcilerClauses(), nil); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestValidateExplanation(t *testing.T) {
	tests := []struct {
		text     string
		category string
		ok       bool
	}{
		{"This penalty clause makes you liable for fixed damages on delay.", "penalty", true},
		{"The contract renews automatically unless you give notice.", "auto_renewal", true},
		{"A perfectly fluent paragraph about gardening and the weather today.", "penalty", false},
		{"", "penalty", false},
		{"short", "penalty", false},
	}

	for _, tt := range tests {
		_, ok := validateExplanation(tt.text, tt.category)
		if ok != tt.ok {
			t.Errorf("validateExplanation(%q, %q) = %v, want %v", tt.text, tt.category, ok, tt.ok)
		}
	}
}
