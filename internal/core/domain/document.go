package domain

import "time"

// Language is a supported working language for contract analysis
type Language string

const (
	// LanguageEnglish is English contract text
	LanguageEnglish Language = "en"
	// LanguageHindi is Hindi (Devanagari) contract text
	LanguageHindi Language = "hi"
)

// SupportedLanguages lists the closed set of languages the engine handles
func SupportedLanguages() []Language {
	return []Language{LanguageEnglish, LanguageHindi}
}

// Supported reports whether the language is one the engine handles
func (l Language) Supported() bool {
	for _, lang := range SupportedLanguages() {
		if l == lang {
			return true
		}
	}
	return false
}

// Document represents the normalized contract text handed to an analysis run.
// It is owned exclusively by the run and never mutated after creation.
type Document struct {
	ID           string    `json:"id"`
	Title        string    `json:"title,omitempty"`
	Text         string    `json:"text"`
	Language     Language  `json:"language"`
	LanguageConf float64   `json:"language_confidence"`
	SourceFormat string    `json:"source_format,omitempty"` // pdf, docx, txt
	Encoding     string    `json:"encoding,omitempty"`
	ReceivedAt   time.Time `json:"received_at"`
}

// Clause is a contiguous, non-overlapping unit of contract text produced by
// segmentation. Ordinals are strictly increasing and contiguous; offsets of
// consecutive clauses partition the document text with no gaps or overlaps.
type Clause struct {
	ID           string `json:"id"`
	Ordinal      int    `json:"ordinal"`
	Text         string `json:"text"`
	StartOffset  int    `json:"start_offset"`
	EndOffset    int    `json:"end_offset"`
	SectionLabel string `json:"section_label,omitempty"` // "3.1", "ARTICLE IV", etc.
}

// Span identifies a character range inside a clause
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}
