package acceptance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/cucumber/godog"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven/mocks"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driving"
	"github.com/nyaya-labs/nyaya-core/internal/core/services"
	"github.com/nyaya-labs/nyaya-core/internal/kb"
	"github.com/nyaya-labs/nyaya-core/internal/profiles"
)

// engineSuite drives one scenario against a fully wired in-memory engine:
// real profiles, segmenter, matcher, and scorer, with the embedded
// pattern set and an in-memory audit store. No explainer is configured.
type engineSuite struct {
	analysis driving.AnalysisService
	audit    *mocks.MockAuditStore

	lastText string
	results  []*domain.AnalysisResult
	err      error
}

func newEngineSuite() (*engineSuite, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	defaultKB, err := kb.Default()
	if err != nil {
		return nil, err
	}

	patternStore := mocks.NewMockPatternStore()
	var patterns []domain.RiskPattern
	seen := map[string]bool{}
	for _, lang := range domain.SupportedLanguages() {
		for _, p := range defaultKB.ForLanguage(lang) {
			if !seen[p.ID] {
				seen[p.ID] = true
				patterns = append(patterns, p)
			}
		}
	}
	patternStore.SetPatterns(defaultKB.Version, patterns)

	auditStore := mocks.NewMockAuditStore()
	knowledge := services.NewKnowledgeService(patternStore, logger)
	reconciler := services.NewReconciler(services.ReconcilerConfig{
		Runtime: domain.NewRuntimeConfig("postgres"),
		Logger:  logger,
	})
	analysis := services.NewAnalysisService(services.AnalysisServiceConfig{
		Profiles:   profiles.DefaultRegistry(),
		Knowledge:  knowledge,
		Reconciler: reconciler,
		AuditStore: auditStore,
		Logger:     logger,
	})

	return &engineSuite{
		analysis: analysis,
		audit:    auditStore,
	}, nil
}

func (s *engineSuite) result() *domain.AnalysisResult {
	if len(s.results) == 0 {
		return nil
	}
	return s.results[len(s.results)-1]
}

func (s *engineSuite) iAnalyzeTheContract(doc *godog.DocString) error {
	s.lastText = doc.Content
	result, err := s.analysis.Analyze(context.Background(), driving.AnalyzeRequest{
		Text:         doc.Content,
		SourceFormat: "txt",
	})
	s.err = err
	if err == nil {
		s.results = append(s.results, result)
	}
	return nil
}

func (s *engineSuite) iAnalyzeTheSameContractAgain() error {
	result, err := s.analysis.Analyze(context.Background(), driving.AnalyzeRequest{
		Text:         s.lastText,
		SourceFormat: "txt",
	})
	s.err = err
	if err == nil {
		s.results = append(s.results, result)
	}
	return nil
}

func (s *engineSuite) iAnalyzeEmptyText() error {
	_, err := s.analysis.Analyze(context.Background(), driving.AnalyzeRequest{Text: "   "})
	s.err = err
	return nil
}

func (s *engineSuite) theDetectedLanguageIs(lang string) error {
	if err := s.requireResult(); err != nil {
		return err
	}
	got := string(s.result().Document.Language)
	if got != lang {
		return fmt.Errorf("expected language %q, got %q", lang, got)
	}
	return nil
}

func (s *engineSuite) aFindingInCategoryIsReported(category string) error {
	if err := s.requireResult(); err != nil {
		return err
	}
	for _, f := range s.result().Findings {
		if f.Category == category {
			return nil
		}
	}
	return fmt.Errorf("no finding in category %q (got %d findings)", category, len(s.result().Findings))
}

func (s *engineSuite) theContractSeverityBandIs(band string) error {
	if err := s.requireResult(); err != nil {
		return err
	}
	got := string(s.result().ContractScore.Band)
	if got != band {
		return fmt.Errorf("expected contract band %q, got %q", band, got)
	}
	return nil
}

func (s *engineSuite) theAnalysisIsRecordedInTheAuditStore() error {
	if err := s.requireResult(); err != nil {
		return err
	}
	stored, err := s.audit.Get(context.Background(), s.result().ID)
	if err != nil {
		return fmt.Errorf("audit record missing: %w", err)
	}
	if stored.ContentHash != s.result().ContentHash {
		return fmt.Errorf("stored hash %q does not match result hash %q",
			stored.ContentHash, s.result().ContentHash)
	}
	return nil
}

func (s *engineSuite) everyFindingHasAnExplanationEntry() error {
	if err := s.requireResult(); err != nil {
		return err
	}
	result := s.result()
	if len(result.Findings) == 0 {
		return fmt.Errorf("expected at least one finding")
	}
	explained := map[string]bool{}
	for _, e := range result.Explanations {
		explained[e.FindingID] = true
	}
	for _, f := range result.Findings {
		if !explained[f.ID] {
			return fmt.Errorf("finding %s has no explanation entry", f.ID)
		}
	}
	return nil
}

func (s *engineSuite) allExplanationsHaveStatus(status string) error {
	if err := s.requireResult(); err != nil {
		return err
	}
	for _, e := range s.result().Explanations {
		if string(e.Status) != status {
			return fmt.Errorf("explanation for %s has status %q, expected %q",
				e.FindingID, e.Status, status)
		}
	}
	return nil
}

func (s *engineSuite) theAnalysisFails() error {
	if s.err == nil {
		return fmt.Errorf("expected analysis to fail")
	}
	return nil
}

func (s *engineSuite) bothRunsShareAContentHash() error {
	if len(s.results) < 2 {
		return fmt.Errorf("expected two completed runs, got %d", len(s.results))
	}
	first, second := s.results[0], s.results[1]
	if first.ContentHash != second.ContentHash {
		return fmt.Errorf("hashes differ: %q vs %q", first.ContentHash, second.ContentHash)
	}
	if first.ID == second.ID {
		return fmt.Errorf("runs must have distinct record IDs")
	}
	matches, err := s.audit.GetByContentHash(context.Background(), first.ContentHash)
	if err != nil {
		return err
	}
	if len(matches) != 2 {
		return fmt.Errorf("expected 2 audit records for hash, got %d", len(matches))
	}
	return nil
}

func (s *engineSuite) requireResult() error {
	if s.err != nil {
		return fmt.Errorf("analysis failed: %w", s.err)
	}
	if s.result() == nil {
		return fmt.Errorf("no analysis has run")
	}
	return nil
}

func InitializeScenario(sc *godog.ScenarioContext) {
	suite, err := newEngineSuite()

	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		if err != nil {
			return ctx, err
		}
		fresh, buildErr := newEngineSuite()
		if buildErr != nil {
			return ctx, buildErr
		}
		*suite = *fresh
		return ctx, nil
	})

	sc.Step(`^I analyze the contract:$`, suite.iAnalyzeTheContract)
	sc.Step(`^I analyze the same contract again$`, suite.iAnalyzeTheSameContractAgain)
	sc.Step(`^I analyze empty text$`, suite.iAnalyzeEmptyText)
	sc.Step(`^the detected language is "([^"]*)"$`, suite.theDetectedLanguageIs)
	sc.Step(`^a finding in category "([^"]*)" is reported$`, suite.aFindingInCategoryIsReported)
	sc.Step(`^the contract severity band is "([^"]*)"$`, suite.theContractSeverityBandIs)
	sc.Step(`^the analysis is recorded in the audit store$`, suite.theAnalysisIsRecordedInTheAuditStore)
	sc.Step(`^every finding has an explanation entry$`, suite.everyFindingHasAnExplanationEntry)
	sc.Step(`^all explanations have status "([^"]*)"$`, suite.allExplanationsHaveStatus)
	sc.Step(`^the analysis fails$`, suite.theAnalysisFails)
	sc.Step(`^both runs share a content hash$`, suite.bothRunsShareAContentHash)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
