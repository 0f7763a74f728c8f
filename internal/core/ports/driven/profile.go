package driven

import (
	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// LanguageProfile bundles the language-specific behaviour of the engine:
// detection evidence, clause boundary cues, and entity extraction.
// A profile is selected once per run, right after language detection;
// nothing downstream branches on language literals.
type LanguageProfile interface {
	// Language returns the code this profile implements.
	Language() domain.Language

	// DetectionScore scores how strongly the text reads as this profile's
	// language, in [0,1]. Pure function of the text.
	DetectionScore(text string) float64

	// MatchHeading reports whether a line opens a new clause and returns
	// the section label when it does ("3.1", "ARTICLE IV", "धारा ४").
	MatchHeading(line string) (label string, ok bool)

	// IsAbbreviation reports whether a period-terminated token is a known
	// abbreviation rather than a sentence end. Used by the segmenter's
	// prefer-not-splitting tie-break.
	IsAbbreviation(token string) bool

	// ExtractEntities extracts entities from one clause. Pure function of
	// the clause text. Entities below the profile's confidence floor are
	// discarded, not returned. Fails only with domain.ErrInvalidClause on
	// structurally invalid clauses.
	ExtractEntities(clause domain.Clause) ([]domain.Entity, error)
}

// ProfileRegistry manages language profiles and performs detection over
// the registered closed set.
type ProfileRegistry interface {
	// Register registers a profile. Later registrations for the same
	// language replace earlier ones.
	Register(profile LanguageProfile)

	// Get retrieves the profile for a language, or nil if unregistered.
	Get(lang domain.Language) LanguageProfile

	// Detect classifies the text's working language across all registered
	// profiles. Returns domain.ErrUnsupportedLanguage when the best score
	// is below the registry's confidence threshold.
	Detect(text string) (LanguageProfile, float64, error)

	// List returns the registered language codes.
	List() []domain.Language
}
