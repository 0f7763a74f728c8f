package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PatternStore = (*PatternStore)(nil)

// PatternStore implements driven.PatternStore using PostgreSQL. It serves
// the pattern set of whichever KB version is marked active; superseded
// versions stay in the table so old analyses remain reproducible.
type PatternStore struct {
	db *DB
}

// NewPatternStore creates a new PatternStore
func NewPatternStore(db *DB) *PatternStore {
	return &PatternStore{db: db}
}

// Version returns the active KB version identifier
func (s *PatternStore) Version(ctx context.Context) (string, error) {
	var version string
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM kb_versions WHERE active`,
	).Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: no active knowledge base version", domain.ErrKnowledgeBase)
	}
	if err != nil {
		return "", fmt.Errorf("query active kb version: %w", err)
	}
	return version, nil
}

// GetByLanguage retrieves the ordered pattern set active for a language
func (s *PatternStore) GetByLanguage(ctx context.Context, lang domain.Language) ([]domain.RiskPattern, error) {
	query := `
		SELECT p.definition
		FROM risk_patterns p
		JOIN kb_versions v ON v.version = p.kb_version
		WHERE v.active AND p.definition->'languages' ? $1
		ORDER BY p.pattern_id
	`

	rows, err := s.db.QueryContext(ctx, query, string(lang))
	if err != nil {
		return nil, fmt.Errorf("query patterns by language: %w", err)
	}
	defer rows.Close()

	return scanPatterns(rows)
}

// GetAll retrieves every pattern of the active version, ordered by pattern ID
func (s *PatternStore) GetAll(ctx context.Context) ([]domain.RiskPattern, error) {
	query := `
		SELECT p.definition
		FROM risk_patterns p
		JOIN kb_versions v ON v.version = p.kb_version
		WHERE v.active
		ORDER BY p.pattern_id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query patterns: %w", err)
	}
	defer rows.Close()

	return scanPatterns(rows)
}

// Ping checks the store is reachable
func (s *PatternStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Publish installs a pattern set as a new KB version and marks it active.
// The previous active version is deactivated in the same transaction, so
// readers never observe a half-published set.
func (s *PatternStore) Publish(ctx context.Context, version string, patterns []domain.RiskPattern) error {
	if version == "" {
		return fmt.Errorf("%w: empty version", domain.ErrKnowledgeBase)
	}
	if len(patterns) == 0 {
		return fmt.Errorf("%w: empty pattern set", domain.ErrKnowledgeBase)
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE kb_versions SET active = FALSE WHERE active`,
		); err != nil {
			return fmt.Errorf("deactivate previous kb version: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO kb_versions (version, active) VALUES ($1, TRUE)
			 ON CONFLICT (version) DO UPDATE SET active = TRUE`,
			version,
		); err != nil {
			return fmt.Errorf("insert kb version: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO risk_patterns (pattern_id, kb_version, category, severity, kind, definition)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (pattern_id, kb_version) DO UPDATE SET
				category = EXCLUDED.category,
				severity = EXCLUDED.severity,
				kind = EXCLUDED.kind,
				definition = EXCLUDED.definition
		`)
		if err != nil {
			return fmt.Errorf("prepare pattern insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range patterns {
			definition, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("marshal pattern %s: %w", p.ID, err)
			}
			if _, err := stmt.ExecContext(ctx,
				p.ID, version, p.Category, p.Severity, p.Kind, definition,
			); err != nil {
				return fmt.Errorf("insert pattern %s: %w", p.ID, err)
			}
		}

		return nil
	})
}

func scanPatterns(rows *sql.Rows) ([]domain.RiskPattern, error) {
	var patterns []domain.RiskPattern
	for rows.Next() {
		var definition []byte
		if err := rows.Scan(&definition); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		var p domain.RiskPattern
		if err := json.Unmarshal(definition, &p); err != nil {
			return nil, fmt.Errorf("unmarshal pattern: %w", err)
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patterns: %w", err)
	}
	return patterns, nil
}
