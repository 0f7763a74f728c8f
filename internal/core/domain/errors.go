package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnsupportedLanguage indicates the document language could not be
	// classified into the supported set with sufficient confidence
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrSegmentationFailure indicates the document text could not be split
	// into clauses (empty or unreadable input)
	ErrSegmentationFailure = errors.New("clause segmentation failure")

	// ErrInvalidClause indicates a structurally invalid clause was passed
	// to a downstream stage (empty text, bad offsets)
	ErrInvalidClause = errors.New("invalid clause")

	// ErrKnowledgeBase indicates the risk pattern set for the detected
	// language is empty or unloadable - a configuration problem, never
	// reported as "no risk found"
	ErrKnowledgeBase = errors.New("knowledge base unavailable")

	// ErrExplanationUnverified indicates a generative explanation failed
	// validation against the finding it explains (non-fatal)
	ErrExplanationUnverified = errors.New("explanation unverified")

	// ErrTaskNotFound indicates the analysis task does not exist
	ErrTaskNotFound = errors.New("task not found")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrServiceUnavailable indicates an external collaborator could not
	// be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInvalidProvider indicates an unknown explainer provider name
	ErrInvalidProvider = errors.New("invalid provider")
)
