package domain

import "sync"

// AIProvider identifies a generative explanation backend
type AIProvider string

const (
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
	AIProviderTemplate  AIProvider = "template"
)

// ExplainerSettings configures the generative explanation collaborator
type ExplainerSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model,omitempty"`
	APIKey   string     `json:"-"`
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured reports whether the settings name a usable provider
func (s *ExplainerSettings) IsConfigured() bool {
	if s == nil || s.Provider == "" {
		return false
	}
	// The template explainer needs no credentials
	if s.Provider == AIProviderTemplate {
		return true
	}
	return s.APIKey != ""
}

// RuntimeConfig tracks which optional services are available at runtime.
// This is determined at startup and can be updated dynamically for the
// generative explainer. Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	QueueBackend string // "redis" or "postgres"

	// Dynamic capability flags
	explainerAvailable bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(queueBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		QueueBackend: queueBackend,
	}
}

// ExplainerAvailable returns whether a generative explainer is configured
func (c *RuntimeConfig) ExplainerAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.explainerAvailable
}

// SetExplainerAvailable updates the explainer availability flag
func (c *RuntimeConfig) SetExplainerAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.explainerAvailable = available
}
