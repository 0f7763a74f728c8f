package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven/mocks"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driving"
	"github.com/nyaya-labs/nyaya-core/internal/profiles"
)

const riskyContract = `SERVICE AGREEMENT

1. Services. The Service Provider shall deliver the services described in
the statement of work, and the Client shall review all deliverables within
a reasonable time.

2. Penalty. The Service Provider shall pay a penalty of Rs. 50,000 for
each week of delayed delivery, and the Client may terminate immediately
on any delay.

3. Indemnity. The Service Provider agrees to indemnify and hold harmless
the Client against all claims, with unlimited liability for any losses
arising out of this Agreement.`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type analysisFixture struct {
	service   driving.AnalysisService
	audit     *mocks.MockAuditStore
	queue     *mocks.MockTaskQueue
	explainer *mocks.MockExplainer
}

func newAnalysisFixture(t *testing.T) *analysisFixture {
	t.Helper()

	audit := mocks.NewMockAuditStore()
	queue := mocks.NewMockTaskQueue()
	explainer := mocks.NewMockExplainer()

	rc := domain.NewRuntimeConfig("redis")
	rc.SetExplainerAvailable(true)

	service := NewAnalysisService(AnalysisServiceConfig{
		Profiles:  profiles.DefaultRegistry(),
		Knowledge: NewKnowledgeService(nil, quietLogger()),
		Reconciler: NewReconciler(ReconcilerConfig{
			Explainer: explainer,
			Runtime:   rc,
			Logger:    quietLogger(),
		}),
		AuditStore: audit,
		Queue:      queue,
		Logger:     quietLogger(),
	})

	return &analysisFixture{
		service:   service,
		audit:     audit,
		queue:     queue,
		explainer: explainer,
	}
}

func TestAnalyzeEnglishContract(t *testing.T) {
	fx := newAnalysisFixture(t)

	result, err := fx.service.Analyze(context.Background(), driving.AnalyzeRequest{
		Text:  riskyContract,
		Title: "Service Agreement",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Document.Language != domain.LanguageEnglish {
		t.Errorf("language = %v", result.Document.Language)
	}
	if len(result.Clauses) < 3 {
		t.Errorf("expected at least 3 clauses, got %d", len(result.Clauses))
	}
	if len(result.Findings) == 0 {
		t.Fatal("expected findings for risky contract")
	}

	categories := make(map[string]bool)
	for _, f := range result.Findings {
		categories[f.Category] = true
	}
	for _, want := range []string{"penalty", "indemnity", "liability"} {
		if !categories[want] {
			t.Errorf("expected a %s finding", want)
		}
	}

	if result.ContractScore.Band != domain.SeverityCritical {
		t.Errorf("unlimited liability should band critical, got %v", result.ContractScore.Band)
	}
	for _, cs := range result.ClauseScores {
		if len(cs.ContributingFindings) == 0 {
			t.Errorf("clause score %s has no contributing findings", cs.ClauseID)
		}
	}

	if result.ContractType != domain.ContractService {
		t.Errorf("contract type = %v", result.ContractType)
	}
	if len(result.Explanations) != len(result.Findings) {
		t.Errorf("explanations = %d, findings = %d", len(result.Explanations), len(result.Findings))
	}

	// The record must be persisted
	stored, err := fx.audit.Get(context.Background(), result.ID)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if stored.ContentHash != result.ContentHash {
		t.Error("stored record differs from returned record")
	}
}

func TestAnalyzeComplianceSummary(t *testing.T) {
	fx := newAnalysisFixture(t)

	result, err := fx.service.Analyze(context.Background(), driving.AnalyzeRequest{
		Text: riskyContract,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	comp := result.Summary.Compliance
	if len(comp.Checks) == 0 {
		t.Fatal("expected compliance checks on the summary")
	}
	status := make(map[string]domain.ComplianceStatus, len(comp.Checks))
	for _, c := range comp.Checks {
		status[c.ID] = c.Status
	}
	if status["parties"] != domain.ComplianceSatisfied {
		t.Errorf("parties status = %v", status["parties"])
	}
	if status["consideration"] != domain.ComplianceSatisfied {
		t.Errorf("consideration status = %v", status["consideration"])
	}
	if comp.Score <= 0 {
		t.Errorf("compliance score = %v", comp.Score)
	}
}

func TestAnalyzeCleanClauseHasNoScoreEntry(t *testing.T) {
	fx := newAnalysisFixture(t)

	text := `SUPPLY AGREEMENT

1. Background. The Supplier and the Customer wish to record the terms
governing the supply of stationery items.

2. Penalty. The Supplier shall pay a penalty of Rs. 5,000 for each day
of late delivery.`

	result, err := fx.service.Analyze(context.Background(), driving.AnalyzeRequest{Text: text})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Findings) == 0 {
		t.Fatal("expected a penalty finding")
	}

	flagged := make(map[string]bool)
	for _, f := range result.Findings {
		flagged[f.ClauseID] = true
	}
	scored := make(map[string]bool)
	for _, cs := range result.ClauseScores {
		scored[cs.ClauseID] = true
		if !flagged[cs.ClauseID] {
			t.Errorf("clause %s scored without findings", cs.ClauseID)
		}
	}
	// Clean clauses carry no score entry; absence means zero risk
	for _, clause := range result.Clauses {
		if !flagged[clause.ID] && scored[clause.ID] {
			t.Errorf("clause %s without findings has a score entry", clause.ID)
		}
	}
	if len(result.ClauseScores) >= len(result.Clauses) {
		t.Errorf("clause scores = %d, clauses = %d; expected at least one clean clause",
			len(result.ClauseScores), len(result.Clauses))
	}
}

func TestAnalyzeHindiContract(t *testing.T) {
	fx := newAnalysisFixture(t)

	text := "धारा 1. विक्रेता विलंब के लिए दंड का भुगतान करेगा।\n" +
		"धारा 2. सभी विवाद मध्यस्थता द्वारा सुलझाए जाएंगे।"

	result, err := fx.service.Analyze(context.Background(), driving.AnalyzeRequest{Text: text})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Document.Language != domain.LanguageHindi {
		t.Errorf("language = %v", result.Document.Language)
	}

	categories := make(map[string]bool)
	for _, f := range result.Findings {
		categories[f.Category] = true
	}
	if !categories["penalty"] || !categories["arbitration"] {
		t.Errorf("expected penalty and arbitration findings, got %v", categories)
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	fx := newAnalysisFixture(t)

	for _, text := range []string{"", "  \n\t "} {
		_, err := fx.service.Analyze(context.Background(), driving.AnalyzeRequest{Text: text})
		if !errors.Is(err, domain.ErrSegmentationFailure) {
			t.Errorf("Analyze(%q): expected ErrSegmentationFailure, got %v", text, err)
		}
	}
}

func TestAnalyzeUnsupportedLanguage(t *testing.T) {
	fx := newAnalysisFixture(t)

	_, err := fx.service.Analyze(context.Background(), driving.AnalyzeRequest{
		Text: "12345 67890 ++-- 4567 0001 9999 31337 2468",
	})
	if !errors.Is(err, domain.ErrUnsupportedLanguage) {
		t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestAnalyzeWithoutExplainer(t *testing.T) {
	audit := mocks.NewMockAuditStore()
	service := NewAnalysisService(AnalysisServiceConfig{
		Profiles:  profiles.DefaultRegistry(),
		Knowledge: NewKnowledgeService(nil, quietLogger()),
		Reconciler: NewReconciler(ReconcilerConfig{
			Logger: quietLogger(),
		}),
		AuditStore: audit,
		Logger:     quietLogger(),
	})

	result, err := service.Analyze(context.Background(), driving.AnalyzeRequest{Text: riskyContract})
	if err != nil {
		t.Fatalf("analysis must complete without an explainer: %v", err)
	}

	if len(result.Findings) == 0 {
		t.Fatal("expected findings")
	}
	for _, e := range result.Explanations {
		if e.Status != domain.ExplanationAbsent {
			t.Errorf("explanation %s status = %v, want absent", e.FindingID, e.Status)
		}
	}
	if result.ContractScore.Value == 0 {
		t.Error("deterministic scores must survive explainer absence")
	}
}

func TestAnalyzeDuplicateContentHash(t *testing.T) {
	fx := newAnalysisFixture(t)

	first, err := fx.service.Analyze(context.Background(), driving.AnalyzeRequest{Text: riskyContract})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := fx.service.Analyze(context.Background(), driving.AnalyzeRequest{Text: riskyContract})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID == second.ID {
		t.Error("re-analysis must produce a new record, not mutate the old one")
	}
	if first.ContentHash != second.ContentHash {
		t.Error("same text must hash identically")
	}
	if first.ContractScore.Value != second.ContractScore.Value {
		t.Error("same findings must score identically")
	}

	dups, err := fx.audit.GetByContentHash(context.Background(), first.ContentHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dups) != 2 {
		t.Errorf("expected 2 records for the hash, got %d", len(dups))
	}
}

func TestEnqueueAnalysis(t *testing.T) {
	fx := newAnalysisFixture(t)

	task, err := fx.service.EnqueueAnalysis(context.Background(), driving.AnalyzeRequest{
		Text:  riskyContract,
		Title: "Service Agreement",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Status != domain.TaskStatusPending {
		t.Errorf("status = %v, want pending", task.Status)
	}
	if task.Type != domain.TaskTypeAnalyze {
		t.Errorf("type = %v", task.Type)
	}

	got, err := fx.service.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != task.ID {
		t.Errorf("task ID mismatch")
	}
}

func TestEnqueueAnalysisEmptyText(t *testing.T) {
	fx := newAnalysisFixture(t)

	_, err := fx.service.EnqueueAnalysis(context.Background(), driving.AnalyzeRequest{Text: "   "})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
