package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status"`
}

// VersionResponse represents the API version response
type VersionResponse struct {
	Version string `json:"version"`
}

// Health endpoints

// handleHealth returns liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports readiness of the backing infrastructure
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	ready := true

	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			checks["database"] = err.Error()
			ready = false
		} else {
			checks["database"] = "ok"
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			checks["redis"] = err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not ready"
	}
	writeJSON(w, status, map[string]any{"status": state, "checks": checks})
}

// handleVersion returns the engine version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Analysis endpoints

// handleAnalyze runs a synchronous contract analysis and returns the
// completed record
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req driving.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.analysisService.Analyze(r.Context(), req)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleEnqueueAnalysis queues an analysis for background processing
func (s *Server) handleEnqueueAnalysis(w http.ResponseWriter, r *http.Request) {
	var req driving.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := s.analysisService.EnqueueAnalysis(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrServiceUnavailable):
			writeError(w, http.StatusServiceUnavailable, "task queue unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "failed to enqueue analysis")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, task)
}

// handleListAnalyses returns the most recent analysis records.
// Supports ?limit=N (default 20, max 100).
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	if limit > 100 {
		limit = 100
	}

	records, err := s.auditService.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}
	if records == nil {
		records = []*domain.AnalysisResult{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"analyses": records,
		"count":    len(records),
	})
}

// handleGetAnalysis returns one stored analysis record
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record, err := s.auditService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get analysis")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleGetDuplicates returns prior records that analyzed byte-identical
// text, keyed by the record's content hash
func (s *Server) handleGetDuplicates(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record, err := s.auditService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get analysis")
		return
	}

	matches, err := s.auditService.FindDuplicates(r.Context(), record.ContentHash)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to find duplicates")
		return
	}

	duplicates := make([]*domain.AnalysisResult, 0, len(matches))
	for _, m := range matches {
		if m.ID != record.ID {
			duplicates = append(duplicates, m)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"content_hash": record.ContentHash,
		"duplicates":   duplicates,
		"count":        len(duplicates),
	})
}

// Task endpoints

// handleGetTask returns the status of a queued task
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	task, err := s.analysisService.GetTask(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			writeError(w, http.StatusNotFound, "task not found")
		case errors.Is(err, domain.ErrServiceUnavailable):
			writeError(w, http.StatusServiceUnavailable, "task queue unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "failed to get task")
		}
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// handleCancelTask cancels a pending task
func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	if s.taskQueue == nil {
		writeError(w, http.StatusServiceUnavailable, "task queue unavailable")
		return
	}

	id := r.PathValue("id")
	if err := s.taskQueue.CancelTask(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			writeError(w, http.StatusNotFound, "task not found")
		default:
			writeError(w, http.StatusConflict, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// Knowledge base endpoints

// handleGetKB returns the active knowledge base version and pattern counts
func (s *Server) handleGetKB(w http.ResponseWriter, r *http.Request) {
	kb, err := s.knowledgeService.Snapshot(r.Context())
	if err != nil {
		writeKnowledgeError(w, err)
		return
	}

	counts := map[string]int{}
	for _, lang := range domain.SupportedLanguages() {
		counts[string(lang)] = len(kb.ForLanguage(lang))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"version":          kb.Version,
		"pattern_count":    kb.Size(),
		"patterns_by_lang": counts,
	})
}

// handleReloadKB replaces this instance's knowledge base snapshot and,
// when a task queue is configured, fans the reload out to workers
func (s *Server) handleReloadKB(w http.ResponseWriter, r *http.Request) {
	if err := s.knowledgeService.Reload(r.Context()); err != nil {
		writeKnowledgeError(w, err)
		return
	}

	kb, err := s.knowledgeService.Snapshot(r.Context())
	if err != nil {
		writeKnowledgeError(w, err)
		return
	}

	resp := map[string]any{
		"status":  "reloaded",
		"version": kb.Version,
	}

	if s.taskQueue != nil {
		task := domain.NewReloadKBTask()
		if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
			// Local reload succeeded; worker fan-out is best effort
			log.Printf("failed to enqueue reload task: %v", err)
		} else {
			resp["task_id"] = task.ID
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleListPatterns lists active risk patterns.
// Supports ?language=en|hi (default en).
func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	lang := domain.LanguageEnglish
	if raw := r.URL.Query().Get("language"); raw != "" {
		lang = domain.Language(raw)
		if !lang.Supported() {
			writeError(w, http.StatusBadRequest, "unsupported language")
			return
		}
	}

	patterns, err := s.knowledgeService.Patterns(r.Context(), lang)
	if err != nil {
		writeKnowledgeError(w, err)
		return
	}
	if patterns == nil {
		patterns = []domain.RiskPattern{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"language": lang,
		"patterns": patterns,
		"count":    len(patterns),
	})
}

// Explainer settings endpoints

// ExplainerStatusResponse describes the currently configured explainer
type ExplainerStatusResponse struct {
	Available bool   `json:"available"`
	Model     string `json:"model,omitempty"`
}

// handleGetExplainerStatus returns whether a generative explainer is
// configured and which model backs it
func (s *Server) handleGetExplainerStatus(w http.ResponseWriter, r *http.Request) {
	resp := ExplainerStatusResponse{}
	if explainer := s.services.Explainer(); explainer != nil {
		resp.Available = true
		resp.Model = explainer.Model()
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateExplainerRequest configures the generative explainer. The API
// key is accepted on input but never echoed back in responses.
type UpdateExplainerRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// handleUpdateExplainer configures or reconfigures the generative
// explainer. Connectivity is validated before the swap.
func (s *Server) handleUpdateExplainer(w http.ResponseWriter, r *http.Request) {
	if s.explainerFactory == nil {
		writeError(w, http.StatusServiceUnavailable, "explainer configuration unavailable")
		return
	}

	var req UpdateExplainerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings := domain.ExplainerSettings{
		Provider: domain.AIProvider(req.Provider),
		Model:    req.Model,
		APIKey:   req.APIKey,
		BaseURL:  req.BaseURL,
	}
	if !settings.IsConfigured() {
		writeError(w, http.StatusBadRequest, "incomplete explainer settings")
		return
	}

	explainer, err := s.explainerFactory(&settings)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidProvider) {
			writeError(w, http.StatusBadRequest, "unsupported provider")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to build explainer")
		return
	}

	if err := s.services.ValidateAndSetExplainer(r.Context(), explainer); err != nil {
		writeError(w, http.StatusBadGateway, "explainer connectivity check failed")
		return
	}

	writeJSON(w, http.StatusOK, ExplainerStatusResponse{
		Available: explainer != nil,
		Model:     explainerModel(explainer),
	})
}

// handleRemoveExplainer removes the configured explainer. Subsequent
// analyses fall back to pattern description explanations.
func (s *Server) handleRemoveExplainer(w http.ResponseWriter, r *http.Request) {
	s.services.SetExplainer(nil)
	writeJSON(w, http.StatusOK, ExplainerStatusResponse{Available: false})
}

// Stats endpoint

// StatsResponse aggregates engine statistics
type StatsResponse struct {
	AnalysisCount int                `json:"analysis_count"`
	Queue         *driven.QueueStats `json:"queue,omitempty"`
}

// handleGetStats reports stored record counts and queue depth
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	count, err := s.auditService.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count analyses")
		return
	}

	resp := StatsResponse{AnalysisCount: count}
	if s.taskQueue != nil {
		stats, err := s.taskQueue.Stats(r.Context())
		if err != nil {
			log.Printf("failed to read queue stats: %v", err)
		} else {
			resp.Queue = stats
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Helpers

func writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrSegmentationFailure):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnsupportedLanguage):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrKnowledgeBase):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "analysis failed")
	}
}

func writeKnowledgeError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrKnowledgeBase) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "knowledge base operation failed")
}

func explainerModel(explainer interface{ Model() string }) string {
	if explainer == nil {
		return ""
	}
	return explainer.Model()
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
