package driving

import (
	"context"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// AnalyzeRequest is the input to a contract analysis run. The text is
// assumed to be already extracted and normalized by the external document
// processor (line endings normalized, non-text artifacts stripped).
type AnalyzeRequest struct {
	Text         string `json:"text"`
	Title        string `json:"title,omitempty"`
	SourceFormat string `json:"source_format,omitempty"`
	Encoding     string `json:"encoding,omitempty"`
}

// AnalysisService runs the risk assessment pipeline
type AnalysisService interface {
	// Analyze runs a full synchronous analysis: language detection, clause
	// segmentation, entity extraction, pattern matching, scoring,
	// explanation reconciliation, and audit record assembly. Fatal stage
	// errors abort the run with no partial result.
	Analyze(ctx context.Context, req AnalyzeRequest) (*domain.AnalysisResult, error)

	// EnqueueAnalysis queues an analysis for background processing and
	// returns the pending task.
	EnqueueAnalysis(ctx context.Context, req AnalyzeRequest) (*domain.Task, error)

	// GetTask returns the status of a queued analysis task.
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
}
