package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// TaskType identifies the type of background task
type TaskType string

const (
	// TaskTypeAnalyze runs a full contract analysis for queued text
	TaskTypeAnalyze TaskType = "analyze_contract"
	// TaskTypeReloadKB reloads the knowledge base from its store
	TaskTypeReloadKB TaskType = "reload_kb"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Task represents a background job to be processed by workers
type Task struct {
	// ID is the unique identifier for this task
	ID string `json:"id"`

	// Type identifies what kind of task this is
	Type TaskType `json:"type"`

	// Payload contains task-specific data.
	// For analyze_contract: {"text": "...", "title": "...", "source_format": "txt"}
	// For reload_kb: {} (empty)
	Payload map[string]string `json:"payload"`

	// Status is the current state of the task
	Status TaskStatus `json:"status"`

	// Priority determines processing order (higher = more urgent)
	Priority int `json:"priority"`

	// Attempts is how many times this task has been attempted
	Attempts int `json:"attempts"`

	// MaxAttempts is the maximum retry count before giving up
	MaxAttempts int `json:"max_attempts"`

	// ResultID is set once the analysis record has been persisted
	ResultID string `json:"result_id,omitempty"`

	// Error contains the last error message if failed
	Error string `json:"error,omitempty"`

	// CreatedAt is when the task was enqueued
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last modified
	UpdatedAt time.Time `json:"updated_at"`

	// StartedAt is when processing began (nil if not started)
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when processing finished (nil if not complete)
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ScheduledFor is when the task should be processed (for delayed tasks)
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewAnalyzeTask builds a pending analysis task for the given text
func NewAnalyzeTask(text, title, sourceFormat string) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:   GenerateID(),
		Type: TaskTypeAnalyze,
		Payload: map[string]string{
			"text":          text,
			"title":         title,
			"source_format": sourceFormat,
		},
		Status:       TaskStatusPending,
		MaxAttempts:  3,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// NewReloadKBTask builds a pending knowledge base reload task
func NewReloadKBTask() *Task {
	now := time.Now().UTC()
	return &Task{
		ID:           GenerateID(),
		Type:         TaskTypeReloadKB,
		Payload:      map[string]string{},
		Status:       TaskStatusPending,
		MaxAttempts:  3,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// CanRetry reports whether the task has retry attempts left
func (t *Task) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

// MarkProcessing updates the task to processing state
func (t *Task) MarkProcessing() {
	now := time.Now()
	t.Status = TaskStatusProcessing
	t.StartedAt = &now
	t.UpdatedAt = now
	t.Attempts++
}

// MarkCompleted updates the task to completed state, recording the
// persisted analysis record ID when one was produced
func (t *Task) MarkCompleted(resultID string) {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.ResultID = resultID
	t.Error = ""
}

// MarkFailed updates the task to failed state
func (t *Task) MarkFailed(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.UpdatedAt = now
	t.Error = err
}

// Retry resets the task for retry with exponential backoff
func (t *Task) Retry(err string) {
	now := time.Now()
	t.Status = TaskStatusPending
	t.UpdatedAt = now
	t.Error = err

	// Exponential backoff: 1s, 2s, 4s, 8s, etc.
	backoff := time.Duration(1<<t.Attempts) * time.Second
	if backoff > 5*time.Minute {
		backoff = 5 * time.Minute // Cap at 5 minutes
	}
	t.ScheduledFor = now.Add(backoff)
}

// Text returns the contract text carried by an analyze task
func (t *Task) Text() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["text"]
}

// Title returns the document title carried by an analyze task
func (t *Task) Title() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["title"]
}

// SourceFormat returns the source format carried by an analyze task
func (t *Task) SourceFormat() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["source_format"]
}
