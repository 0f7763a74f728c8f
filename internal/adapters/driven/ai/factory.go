package ai

import (
	"fmt"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
)

// NewExplainer creates an explainer from settings. Returns nil, nil when
// no provider is configured: explanations then degrade to absent rather
// than failing the analysis.
func NewExplainer(settings *domain.ExplainerSettings) (driven.Explainer, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return NewOpenAIExplainer(settings.APIKey, settings.Model, settings.BaseURL)
	case domain.AIProviderAnthropic:
		return NewAnthropicExplainer(settings.APIKey, settings.Model)
	case domain.AIProviderTemplate:
		return NewTemplateExplainer(), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}
