package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driving"
	"github.com/nyaya-labs/nyaya-core/internal/runtime"
)

// Mock services

type mockAnalysisService struct {
	analyzeFn func(ctx context.Context, req driving.AnalyzeRequest) (*domain.AnalysisResult, error)
	enqueueFn func(ctx context.Context, req driving.AnalyzeRequest) (*domain.Task, error)
	getTaskFn func(ctx context.Context, taskID string) (*domain.Task, error)
}

func (m *mockAnalysisService) Analyze(ctx context.Context, req driving.AnalyzeRequest) (*domain.AnalysisResult, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, req)
	}
	return nil, errors.New("not configured")
}

func (m *mockAnalysisService) EnqueueAnalysis(ctx context.Context, req driving.AnalyzeRequest) (*domain.Task, error) {
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, req)
	}
	return nil, errors.New("not configured")
}

func (m *mockAnalysisService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	if m.getTaskFn != nil {
		return m.getTaskFn(ctx, taskID)
	}
	return nil, errors.New("not configured")
}

type mockKnowledgeService struct {
	snapshotFn func(ctx context.Context) (*domain.KnowledgeBase, error)
	reloadFn   func(ctx context.Context) error
	patternsFn func(ctx context.Context, lang domain.Language) ([]domain.RiskPattern, error)
}

func (m *mockKnowledgeService) Snapshot(ctx context.Context) (*domain.KnowledgeBase, error) {
	if m.snapshotFn != nil {
		return m.snapshotFn(ctx)
	}
	return nil, errors.New("not configured")
}

func (m *mockKnowledgeService) Reload(ctx context.Context) error {
	if m.reloadFn != nil {
		return m.reloadFn(ctx)
	}
	return errors.New("not configured")
}

func (m *mockKnowledgeService) Patterns(ctx context.Context, lang domain.Language) ([]domain.RiskPattern, error) {
	if m.patternsFn != nil {
		return m.patternsFn(ctx, lang)
	}
	return nil, errors.New("not configured")
}

type mockAuditService struct {
	getFn        func(ctx context.Context, id string) (*domain.AnalysisResult, error)
	listRecentFn func(ctx context.Context, limit int) ([]*domain.AnalysisResult, error)
	duplicatesFn func(ctx context.Context, contentHash string) ([]*domain.AnalysisResult, error)
	countFn      func(ctx context.Context) (int, error)
}

func (m *mockAuditService) Get(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, errors.New("not configured")
}

func (m *mockAuditService) ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisResult, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return nil, errors.New("not configured")
}

func (m *mockAuditService) FindDuplicates(ctx context.Context, contentHash string) ([]*domain.AnalysisResult, error) {
	if m.duplicatesFn != nil {
		return m.duplicatesFn(ctx, contentHash)
	}
	return nil, errors.New("not configured")
}

func (m *mockAuditService) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, errors.New("not configured")
}

type mockTokenAdapter struct {
	parseFn func(token string) (*driven.TokenClaims, error)
}

func (m *mockTokenAdapter) GenerateToken(claims *driven.TokenClaims) (string, error) {
	return "signed", nil
}

func (m *mockTokenAdapter) ParseToken(token string) (*driven.TokenClaims, error) {
	if m.parseFn != nil {
		return m.parseFn(token)
	}
	if token == "valid-token" {
		return &driven.TokenClaims{Subject: "ops"}, nil
	}
	return nil, domain.ErrTokenInvalid
}

type mockTaskQueue struct {
	enqueueFn func(ctx context.Context, task *domain.Task) error
	cancelFn  func(ctx context.Context, taskID string) error
	statsFn   func(ctx context.Context) (*driven.QueueStats, error)
}

func (m *mockTaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, task)
	}
	return nil
}

func (m *mockTaskQueue) Dequeue(ctx context.Context) (*domain.Task, error) { return nil, nil }

func (m *mockTaskQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	return nil, nil
}

func (m *mockTaskQueue) Ack(ctx context.Context, taskID string) error { return nil }

func (m *mockTaskQueue) AckWithResult(ctx context.Context, taskID, resultID string) error {
	return nil
}

func (m *mockTaskQueue) Nack(ctx context.Context, taskID, reason string) error { return nil }

func (m *mockTaskQueue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return nil, domain.ErrTaskNotFound
}

func (m *mockTaskQueue) CancelTask(ctx context.Context, taskID string) error {
	if m.cancelFn != nil {
		return m.cancelFn(ctx, taskID)
	}
	return nil
}

func (m *mockTaskQueue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return &driven.QueueStats{}, nil
}

func (m *mockTaskQueue) Ping(ctx context.Context) error { return nil }
func (m *mockTaskQueue) Close() error                   { return nil }

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

type mockExplainer struct {
	model   string
	pingErr error
}

func (m *mockExplainer) Explain(ctx context.Context, req driven.ExplainRequest) (string, error) {
	return "explanation", nil
}

func (m *mockExplainer) Model() string                  { return m.model }
func (m *mockExplainer) Ping(ctx context.Context) error { return m.pingErr }
func (m *mockExplainer) Close() error                   { return nil }

// Test fixtures

type serverDeps struct {
	analysis  *mockAnalysisService
	knowledge *mockKnowledgeService
	audit     *mockAuditService
	queue     driven.TaskQueue
	factory   ExplainerFactory
	services  *runtime.Services
	db        Pinger
	redis     Pinger
}

func newTestServer(deps serverDeps) *Server {
	if deps.analysis == nil {
		deps.analysis = &mockAnalysisService{}
	}
	if deps.knowledge == nil {
		deps.knowledge = &mockKnowledgeService{}
	}
	if deps.audit == nil {
		deps.audit = &mockAuditService{}
	}
	if deps.services == nil {
		deps.services = runtime.NewServices(domain.NewRuntimeConfig("redis"))
	}
	return NewServer(
		Config{Host: "127.0.0.1", Port: 0, Version: "test"},
		deps.analysis,
		deps.knowledge,
		deps.audit,
		deps.services,
		deps.factory,
		&mockTokenAdapter{},
		deps.queue,
		deps.db,
		deps.redis,
	)
}

func doRequest(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func sampleResult(id string) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ID:          id,
		ContentHash: "abc123",
		ContractScore: domain.RiskScore{
			Value: 42.5,
			Band:  domain.SeverityMedium,
		},
		EngineVersion: "test",
		StartedAt:     time.Now().UTC(),
		CompletedAt:   time.Now().UTC(),
	}
}

// Health endpoints

func TestHandleHealth(t *testing.T) {
	s := newTestServer(serverDeps{})
	rec := doRequest(s, http.MethodGet, "/health", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	s := newTestServer(serverDeps{})
	rec := doRequest(s, http.MethodGet, "/version", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "test" {
		t.Errorf("expected version test, got %q", resp["version"])
	}
}

func TestHandleReady(t *testing.T) {
	s := newTestServer(serverDeps{db: &mockPinger{}, redis: &mockPinger{}})
	rec := doRequest(s, http.MethodGet, "/ready", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandleReady_DatabaseDown(t *testing.T) {
	s := newTestServer(serverDeps{db: &mockPinger{err: errors.New("connection refused")}})
	rec := doRequest(s, http.MethodGet, "/ready", nil)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

// Analysis endpoints

func TestHandleAnalyze(t *testing.T) {
	analysis := &mockAnalysisService{
		analyzeFn: func(ctx context.Context, req driving.AnalyzeRequest) (*domain.AnalysisResult, error) {
			if req.Text != "The vendor shall pay a penalty of 10% per day." {
				t.Errorf("unexpected text: %q", req.Text)
			}
			return sampleResult("ANL-1"), nil
		},
	}
	s := newTestServer(serverDeps{analysis: analysis})

	rec := doRequest(s, http.MethodPost, "/api/v1/analyses", driving.AnalyzeRequest{
		Text: "The vendor shall pay a penalty of 10% per day.",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var result domain.AnalysisResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.ID != "ANL-1" {
		t.Errorf("expected ID ANL-1, got %q", result.ID)
	}
}

func TestHandleAnalyze_InvalidBody(t *testing.T) {
	s := newTestServer(serverDeps{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"empty input", fmt.Errorf("%w: empty document text", domain.ErrInvalidInput), http.StatusBadRequest},
		{"segmentation failure", domain.ErrSegmentationFailure, http.StatusBadRequest},
		{"unsupported language", domain.ErrUnsupportedLanguage, http.StatusUnprocessableEntity},
		{"knowledge base down", domain.ErrKnowledgeBase, http.StatusServiceUnavailable},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := &mockAnalysisService{
				analyzeFn: func(ctx context.Context, req driving.AnalyzeRequest) (*domain.AnalysisResult, error) {
					return nil, tt.err
				},
			}
			s := newTestServer(serverDeps{analysis: analysis})

			rec := doRequest(s, http.MethodPost, "/api/v1/analyses", driving.AnalyzeRequest{Text: "x"})
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestHandleEnqueueAnalysis(t *testing.T) {
	task := domain.NewAnalyzeTask("some contract text", "MSA", "txt")
	analysis := &mockAnalysisService{
		enqueueFn: func(ctx context.Context, req driving.AnalyzeRequest) (*domain.Task, error) {
			return task, nil
		},
	}
	s := newTestServer(serverDeps{analysis: analysis})

	rec := doRequest(s, http.MethodPost, "/api/v1/analyses/async", driving.AnalyzeRequest{
		Text: "some contract text",
	})

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var got domain.Task
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != task.ID {
		t.Errorf("expected task ID %q, got %q", task.ID, got.ID)
	}
	if got.Status != domain.TaskStatusPending {
		t.Errorf("expected pending status, got %q", got.Status)
	}
}

func TestHandleEnqueueAnalysis_NoQueue(t *testing.T) {
	analysis := &mockAnalysisService{
		enqueueFn: func(ctx context.Context, req driving.AnalyzeRequest) (*domain.Task, error) {
			return nil, fmt.Errorf("%w: no task queue configured", domain.ErrServiceUnavailable)
		},
	}
	s := newTestServer(serverDeps{analysis: analysis})

	rec := doRequest(s, http.MethodPost, "/api/v1/analyses/async", driving.AnalyzeRequest{Text: "x"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestHandleGetAnalysis(t *testing.T) {
	audit := &mockAuditService{
		getFn: func(ctx context.Context, id string) (*domain.AnalysisResult, error) {
			if id != "ANL-1" {
				t.Errorf("unexpected id: %q", id)
			}
			return sampleResult("ANL-1"), nil
		},
	}
	s := newTestServer(serverDeps{audit: audit})

	rec := doRequest(s, http.MethodGet, "/api/v1/analyses/ANL-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleGetAnalysis_NotFound(t *testing.T) {
	audit := &mockAuditService{
		getFn: func(ctx context.Context, id string) (*domain.AnalysisResult, error) {
			return nil, domain.ErrNotFound
		},
	}
	s := newTestServer(serverDeps{audit: audit})

	rec := doRequest(s, http.MethodGet, "/api/v1/analyses/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleListAnalyses(t *testing.T) {
	audit := &mockAuditService{
		listRecentFn: func(ctx context.Context, limit int) ([]*domain.AnalysisResult, error) {
			if limit != 5 {
				t.Errorf("expected limit 5, got %d", limit)
			}
			return []*domain.AnalysisResult{sampleResult("ANL-1"), sampleResult("ANL-2")}, nil
		},
	}
	s := newTestServer(serverDeps{audit: audit})

	rec := doRequest(s, http.MethodGet, "/api/v1/analyses?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("expected count 2, got %d", resp.Count)
	}
}

func TestHandleListAnalyses_InvalidLimit(t *testing.T) {
	s := newTestServer(serverDeps{})

	rec := doRequest(s, http.MethodGet, "/api/v1/analyses?limit=zero", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleGetDuplicates(t *testing.T) {
	audit := &mockAuditService{
		getFn: func(ctx context.Context, id string) (*domain.AnalysisResult, error) {
			return sampleResult("ANL-1"), nil
		},
		duplicatesFn: func(ctx context.Context, contentHash string) ([]*domain.AnalysisResult, error) {
			if contentHash != "abc123" {
				t.Errorf("unexpected hash: %q", contentHash)
			}
			// Store returns every record with the hash, including the
			// one being looked up
			return []*domain.AnalysisResult{sampleResult("ANL-1"), sampleResult("ANL-2")}, nil
		},
	}
	s := newTestServer(serverDeps{audit: audit})

	rec := doRequest(s, http.MethodGet, "/api/v1/analyses/ANL-1/duplicates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Count      int                      `json:"count"`
		Duplicates []*domain.AnalysisResult `json:"duplicates"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("expected 1 duplicate after excluding self, got %d", resp.Count)
	}
	if resp.Duplicates[0].ID != "ANL-2" {
		t.Errorf("expected duplicate ANL-2, got %q", resp.Duplicates[0].ID)
	}
}

// Task endpoints

func TestHandleGetTask(t *testing.T) {
	task := domain.NewAnalyzeTask("text", "", "txt")
	analysis := &mockAnalysisService{
		getTaskFn: func(ctx context.Context, taskID string) (*domain.Task, error) {
			if taskID != task.ID {
				return nil, domain.ErrTaskNotFound
			}
			return task, nil
		},
	}
	s := newTestServer(serverDeps{analysis: analysis})

	rec := doRequest(s, http.MethodGet, "/api/v1/tasks/"+task.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/api/v1/tasks/other", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown task, got %d", rec.Code)
	}
}

func TestHandleCancelTask(t *testing.T) {
	cancelled := ""
	queue := &mockTaskQueue{
		cancelFn: func(ctx context.Context, taskID string) error {
			cancelled = taskID
			return nil
		},
	}
	s := newTestServer(serverDeps{queue: queue})

	rec := doRequest(s, http.MethodDelete, "/api/v1/tasks/task-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cancelled != "task-1" {
		t.Errorf("expected cancel of task-1, got %q", cancelled)
	}
}

func TestHandleCancelTask_AlreadyProcessing(t *testing.T) {
	queue := &mockTaskQueue{
		cancelFn: func(ctx context.Context, taskID string) error {
			return errors.New("cannot cancel task in status processing")
		},
	}
	s := newTestServer(serverDeps{queue: queue})

	rec := doRequest(s, http.MethodDelete, "/api/v1/tasks/task-1", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestHandleCancelTask_NoQueue(t *testing.T) {
	s := newTestServer(serverDeps{})

	rec := doRequest(s, http.MethodDelete, "/api/v1/tasks/task-1", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

// Knowledge base endpoints

func testKB() *domain.KnowledgeBase {
	return domain.NewKnowledgeBase("2026.08", []domain.RiskPattern{
		{
			ID:         "pen-001",
			Category:   "penalty",
			Severity:   domain.SeverityHigh,
			Kind:       domain.PatternLexical,
			Expression: `penalty`,
			Languages:  []domain.Language{domain.LanguageEnglish, domain.LanguageHindi},
		},
		{
			ID:         "ind-001",
			Category:   "indemnity",
			Severity:   domain.SeverityCritical,
			Kind:       domain.PatternLexical,
			Expression: `indemnif`,
			Languages:  []domain.Language{domain.LanguageEnglish},
		},
	})
}

func TestHandleGetKB(t *testing.T) {
	knowledge := &mockKnowledgeService{
		snapshotFn: func(ctx context.Context) (*domain.KnowledgeBase, error) {
			return testKB(), nil
		},
	}
	s := newTestServer(serverDeps{knowledge: knowledge})

	rec := doRequest(s, http.MethodGet, "/api/v1/kb", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Version      string         `json:"version"`
		PatternCount int            `json:"pattern_count"`
		ByLang       map[string]int `json:"patterns_by_lang"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Version != "2026.08" {
		t.Errorf("expected version 2026.08, got %q", resp.Version)
	}
	if resp.PatternCount != 2 {
		t.Errorf("expected 2 patterns, got %d", resp.PatternCount)
	}
	if resp.ByLang["en"] != 2 || resp.ByLang["hi"] != 1 {
		t.Errorf("unexpected per-language counts: %v", resp.ByLang)
	}
}

func TestHandleReloadKB(t *testing.T) {
	reloads := 0
	knowledge := &mockKnowledgeService{
		reloadFn: func(ctx context.Context) error {
			reloads++
			return nil
		},
		snapshotFn: func(ctx context.Context) (*domain.KnowledgeBase, error) {
			return testKB(), nil
		},
	}

	var enqueued *domain.Task
	queue := &mockTaskQueue{
		enqueueFn: func(ctx context.Context, task *domain.Task) error {
			enqueued = task
			return nil
		},
	}
	s := newTestServer(serverDeps{knowledge: knowledge, queue: queue})

	rec := doRequest(s, http.MethodPost, "/api/v1/kb/reload", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if reloads != 1 {
		t.Errorf("expected 1 reload, got %d", reloads)
	}
	if enqueued == nil || enqueued.Type != domain.TaskTypeReloadKB {
		t.Errorf("expected reload task fan-out, got %+v", enqueued)
	}
}

func TestHandleReloadKB_StoreUnavailable(t *testing.T) {
	knowledge := &mockKnowledgeService{
		reloadFn: func(ctx context.Context) error {
			return fmt.Errorf("%w: no active version", domain.ErrKnowledgeBase)
		},
	}
	s := newTestServer(serverDeps{knowledge: knowledge})

	rec := doRequest(s, http.MethodPost, "/api/v1/kb/reload", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestHandleListPatterns(t *testing.T) {
	knowledge := &mockKnowledgeService{
		patternsFn: func(ctx context.Context, lang domain.Language) ([]domain.RiskPattern, error) {
			return testKB().ForLanguage(lang), nil
		},
	}
	s := newTestServer(serverDeps{knowledge: knowledge})

	rec := doRequest(s, http.MethodGet, "/api/v1/patterns?language=hi", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Language string `json:"language"`
		Count    int    `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Language != "hi" {
		t.Errorf("expected language hi, got %q", resp.Language)
	}
	if resp.Count != 1 {
		t.Errorf("expected 1 pattern, got %d", resp.Count)
	}
}

func TestHandleListPatterns_UnsupportedLanguage(t *testing.T) {
	s := newTestServer(serverDeps{})

	rec := doRequest(s, http.MethodGet, "/api/v1/patterns?language=fr", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// Explainer settings endpoints

func TestHandleGetExplainerStatus_NotConfigured(t *testing.T) {
	s := newTestServer(serverDeps{})

	rec := doRequest(s, http.MethodGet, "/api/v1/settings/explainer", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp ExplainerStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Available {
		t.Error("expected explainer unavailable")
	}
}

func TestHandleUpdateExplainer(t *testing.T) {
	services := runtime.NewServices(domain.NewRuntimeConfig("redis"))
	factory := func(settings *domain.ExplainerSettings) (driven.Explainer, error) {
		if settings.Provider != domain.AIProviderTemplate {
			t.Errorf("unexpected provider: %q", settings.Provider)
		}
		return &mockExplainer{model: "template"}, nil
	}
	s := newTestServer(serverDeps{services: services, factory: factory})

	rec := doRequest(s, http.MethodPut, "/api/v1/settings/explainer", UpdateExplainerRequest{
		Provider: "template",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if services.Explainer() == nil {
		t.Error("expected explainer to be registered")
	}
	if !services.Config().ExplainerAvailable() {
		t.Error("expected explainer capability flag set")
	}
}

func TestHandleUpdateExplainer_UnknownProvider(t *testing.T) {
	factory := func(settings *domain.ExplainerSettings) (driven.Explainer, error) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
	s := newTestServer(serverDeps{factory: factory})

	rec := doRequest(s, http.MethodPut, "/api/v1/settings/explainer", UpdateExplainerRequest{
		Provider: "oracle",
		APIKey:   "k",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleUpdateExplainer_PingFails(t *testing.T) {
	services := runtime.NewServices(domain.NewRuntimeConfig("redis"))
	factory := func(settings *domain.ExplainerSettings) (driven.Explainer, error) {
		return &mockExplainer{model: "gpt-4o-mini", pingErr: errors.New("unauthorized")}, nil
	}
	s := newTestServer(serverDeps{services: services, factory: factory})

	rec := doRequest(s, http.MethodPut, "/api/v1/settings/explainer", UpdateExplainerRequest{
		Provider: "openai",
		APIKey:   "bad-key",
	})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
	if services.Explainer() != nil {
		t.Error("failed explainer must not be registered")
	}
}

func TestHandleRemoveExplainer(t *testing.T) {
	services := runtime.NewServices(domain.NewRuntimeConfig("redis"))
	services.SetExplainer(&mockExplainer{model: "template"})
	s := newTestServer(serverDeps{services: services})

	rec := doRequest(s, http.MethodDelete, "/api/v1/settings/explainer", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if services.Explainer() != nil {
		t.Error("expected explainer removed")
	}
	if services.Config().ExplainerAvailable() {
		t.Error("expected capability flag cleared")
	}
}

// Stats endpoint

func TestHandleGetStats(t *testing.T) {
	audit := &mockAuditService{
		countFn: func(ctx context.Context) (int, error) { return 7, nil },
	}
	queue := &mockTaskQueue{
		statsFn: func(ctx context.Context) (*driven.QueueStats, error) {
			return &driven.QueueStats{PendingCount: 3}, nil
		},
	}
	s := newTestServer(serverDeps{audit: audit, queue: queue})

	rec := doRequest(s, http.MethodGet, "/api/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp StatsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AnalysisCount != 7 {
		t.Errorf("expected 7 analyses, got %d", resp.AnalysisCount)
	}
	if resp.Queue == nil || resp.Queue.PendingCount != 3 {
		t.Errorf("unexpected queue stats: %+v", resp.Queue)
	}
}
