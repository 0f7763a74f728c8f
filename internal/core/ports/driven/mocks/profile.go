package mocks

import (
	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
)

// MockProfile is a mock implementation of LanguageProfile for testing
type MockProfile struct {
	Lang domain.Language

	DetectionScoreFn  func(text string) float64
	MatchHeadingFn    func(line string) (string, bool)
	IsAbbreviationFn  func(token string) bool
	ExtractEntitiesFn func(clause domain.Clause) ([]domain.Entity, error)
}

func NewMockProfile(lang domain.Language) *MockProfile {
	return &MockProfile{Lang: lang}
}

func (m *MockProfile) Language() domain.Language {
	return m.Lang
}

func (m *MockProfile) DetectionScore(text string) float64 {
	if m.DetectionScoreFn != nil {
		return m.DetectionScoreFn(text)
	}
	return 1.0
}

func (m *MockProfile) MatchHeading(line string) (string, bool) {
	if m.MatchHeadingFn != nil {
		return m.MatchHeadingFn(line)
	}
	return "", false
}

func (m *MockProfile) IsAbbreviation(token string) bool {
	if m.IsAbbreviationFn != nil {
		return m.IsAbbreviationFn(token)
	}
	return false
}

func (m *MockProfile) ExtractEntities(clause domain.Clause) ([]domain.Entity, error) {
	if m.ExtractEntitiesFn != nil {
		return m.ExtractEntitiesFn(clause)
	}
	if clause.Text == "" {
		return nil, domain.ErrInvalidClause
	}
	return nil, nil
}

// MockProfileRegistry is a mock implementation of ProfileRegistry
type MockProfileRegistry struct {
	profiles map[domain.Language]driven.LanguageProfile

	DetectFn func(text string) (driven.LanguageProfile, float64, error)
}

func NewMockProfileRegistry(profiles ...driven.LanguageProfile) *MockProfileRegistry {
	m := &MockProfileRegistry{
		profiles: make(map[domain.Language]driven.LanguageProfile),
	}
	for _, p := range profiles {
		m.profiles[p.Language()] = p
	}
	return m
}

func (m *MockProfileRegistry) Register(profile driven.LanguageProfile) {
	m.profiles[profile.Language()] = profile
}

func (m *MockProfileRegistry) Get(lang domain.Language) driven.LanguageProfile {
	return m.profiles[lang]
}

func (m *MockProfileRegistry) Detect(text string) (driven.LanguageProfile, float64, error) {
	if m.DetectFn != nil {
		return m.DetectFn(text)
	}
	for _, p := range m.profiles {
		return p, 1.0, nil
	}
	return nil, 0, domain.ErrUnsupportedLanguage
}

func (m *MockProfileRegistry) List() []domain.Language {
	out := make([]domain.Language, 0, len(m.profiles))
	for lang := range m.profiles {
		out = append(out, lang)
	}
	return out
}
