package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nyaya-labs/nyaya-core/internal/classifier"
	"github.com/nyaya-labs/nyaya-core/internal/compliance"
	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driving"
	"github.com/nyaya-labs/nyaya-core/internal/matcher"
	"github.com/nyaya-labs/nyaya-core/internal/scorer"
	"github.com/nyaya-labs/nyaya-core/internal/segmenter"
)

// Ensure analysisService implements AnalysisService
var _ driving.AnalysisService = (*analysisService)(nil)

// analysisService runs the risk assessment pipeline:
//  1. Detect the working language and select its profile
//  2. Segment the text into clauses
//  3. Per clause (fanned out): extract entities, match risk patterns
//  4. Score clauses and the contract
//  5. Classify the contract type and run its compliance checks
//  6. Reconcile explanations (best-effort)
//  7. Assemble and persist the audit record
type analysisService struct {
	profiles   driven.ProfileRegistry
	segmenter  *segmenter.Segmenter
	matcher    *matcher.Matcher
	knowledge  driving.KnowledgeService
	reconciler *Reconciler
	auditStore driven.AuditStore
	queue      driven.TaskQueue
	logger     *slog.Logger
}

// AnalysisServiceConfig holds dependencies for the analysis service.
type AnalysisServiceConfig struct {
	Profiles   driven.ProfileRegistry
	Segmenter  *segmenter.Segmenter
	Matcher    *matcher.Matcher
	Knowledge  driving.KnowledgeService
	Reconciler *Reconciler
	AuditStore driven.AuditStore
	Queue      driven.TaskQueue
	Logger     *slog.Logger
}

// NewAnalysisService creates the analysis service.
func NewAnalysisService(cfg AnalysisServiceConfig) driving.AnalysisService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	seg := cfg.Segmenter
	if seg == nil {
		seg = segmenter.New(segmenter.DefaultConfig())
	}
	m := cfg.Matcher
	if m == nil {
		m = matcher.New()
	}
	return &analysisService{
		profiles:   cfg.Profiles,
		segmenter:  seg,
		matcher:    m,
		knowledge:  cfg.Knowledge,
		reconciler: cfg.Reconciler,
		auditStore: cfg.AuditStore,
		queue:      cfg.Queue,
		logger:     logger,
	}
}

// clauseOutcome carries one clause's fan-out results back for fan-in.
type clauseOutcome struct {
	entities []domain.Entity
	findings []domain.Finding
	err      error
}

// Analyze runs the full synchronous pipeline. Fatal stage errors abort
// the run with no partial result; explanation failures never do.
func (s *analysisService) Analyze(ctx context.Context, req driving.AnalyzeRequest) (*domain.AnalysisResult, error) {
	startedAt := time.Now().UTC()

	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: empty document text", domain.ErrSegmentationFailure)
	}

	profile, confidence, err := s.profiles.Detect(req.Text)
	if err != nil {
		return nil, err
	}
	lang := profile.Language()

	base, err := s.knowledge.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	patterns := base.ForLanguage(lang)
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: no patterns for language %s", domain.ErrKnowledgeBase, lang)
	}

	clauses, err := s.segmenter.Segment(req.Text, profile)
	if err != nil {
		return nil, err
	}

	doc := domain.Document{
		ID:           domain.GenerateID(),
		Title:        req.Title,
		Text:         req.Text,
		Language:     lang,
		LanguageConf: confidence,
		SourceFormat: req.SourceFormat,
		Encoding:     req.Encoding,
		ReceivedAt:   startedAt,
	}

	s.logger.Info("analysis started",
		"document_id", doc.ID,
		"language", lang,
		"clauses", len(clauses),
		"patterns", len(patterns))

	// Extraction and matching are independent per clause: fan out, then
	// fan in preserving clause order. Each goroutine reads only its own
	// clause and the shared read-only pattern set.
	outcomes := make([]clauseOutcome, len(clauses))
	var wg sync.WaitGroup
	for i, clause := range clauses {
		wg.Add(1)
		go func(i int, clause domain.Clause) {
			defer wg.Done()
			outcomes[i] = s.processClause(clause, profile, patterns)
		}(i, clause)
	}
	wg.Wait()

	var entities []domain.Entity
	var findings []domain.Finding
	var clauseScores []domain.RiskScore
	for i, outcome := range outcomes {
		if outcome.err != nil {
			return nil, fmt.Errorf("clause %s: %w", clauses[i].ID, outcome.err)
		}
		entities = append(entities, outcome.entities...)
		findings = append(findings, outcome.findings...)
		// Clauses with no findings carry no score entry: a missing
		// clause ID in ClauseScores means zero risk, and every emitted
		// score keeps a non-empty contributing finding list.
		if len(outcome.findings) > 0 {
			clauseScores = append(clauseScores, scorer.ScoreClause(clauses[i].ID, outcome.findings))
		}
	}

	contractScore := scorer.ScoreContract(findings, clauseScores)
	classified := classifier.Classify(req.Text)
	complianceSummary := compliance.Check(req.Text, classified.Type)

	var explanations []domain.Explanation
	if s.reconciler != nil {
		explanations = s.reconciler.Reconcile(ctx, lang, clauses, findings)
	}

	result := buildResult(recorderInput{
		Document:      doc,
		ContractType:  classified.Type,
		Compliance:    complianceSummary,
		Clauses:       clauses,
		Entities:      entities,
		Findings:      findings,
		ClauseScores:  clauseScores,
		ContractScore: contractScore,
		Explanations:  explanations,
		KBVersion:     base.Version,
		StartedAt:     startedAt,
	})

	if err := s.auditStore.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("saving analysis record: %w", err)
	}

	s.logger.Info("analysis completed",
		"result_id", result.ID,
		"contract_type", result.ContractType,
		"score", result.ContractScore.Value,
		"band", result.ContractScore.Band,
		"findings", len(findings),
		"duration_ms", time.Since(startedAt).Milliseconds())

	return result, nil
}

func (s *analysisService) processClause(clause domain.Clause, profile driven.LanguageProfile, patterns []domain.RiskPattern) clauseOutcome {
	entities, err := profile.ExtractEntities(clause)
	if err != nil {
		return clauseOutcome{err: err}
	}

	findings, err := s.matcher.Match(clause, patterns)
	if err != nil {
		return clauseOutcome{err: err}
	}

	return clauseOutcome{entities: entities, findings: findings}
}

// EnqueueAnalysis queues an analysis for background processing.
func (s *analysisService) EnqueueAnalysis(ctx context.Context, req driving.AnalyzeRequest) (*domain.Task, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: empty document text", domain.ErrInvalidInput)
	}
	if s.queue == nil {
		return nil, fmt.Errorf("%w: no task queue configured", domain.ErrServiceUnavailable)
	}

	task := domain.NewAnalyzeTask(req.Text, req.Title, req.SourceFormat)
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueueing analysis: %w", err)
	}

	s.logger.Info("analysis enqueued", "task_id", task.ID)
	return task, nil
}

// GetTask returns the status of a queued analysis task.
func (s *analysisService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	if s.queue == nil {
		return nil, fmt.Errorf("%w: no task queue configured", domain.ErrServiceUnavailable)
	}
	return s.queue.GetTask(ctx, taskID)
}
