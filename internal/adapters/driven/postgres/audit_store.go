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
var _ driven.AuditStore = (*AuditStore)(nil)

// AuditStore implements driven.AuditStore using PostgreSQL. Records are
// insert-only: there is no update path, matching the audit contract.
type AuditStore struct {
	db *DB
}

// NewAuditStore creates a new AuditStore
func NewAuditStore(db *DB) *AuditStore {
	return &AuditStore{db: db}
}

// Save persists a complete analysis record
func (s *AuditStore) Save(ctx context.Context, result *domain.AnalysisResult) error {
	record, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal analysis record: %w", err)
	}

	query := `
		INSERT INTO analyses (
			id, content_hash, contract_type, risk_band, risk_score,
			engine_version, scoring_version, kb_version, record,
			started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = s.db.ExecContext(ctx, query,
		result.ID,
		result.ContentHash,
		result.ContractType,
		result.ContractScore.Band,
		result.ContractScore.Value,
		result.EngineVersion,
		result.ScoringVersion,
		result.KBVersion,
		record,
		result.StartedAt,
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis record: %w", err)
	}

	return nil
}

// Get retrieves a record by ID
func (s *AuditStore) Get(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	query := `SELECT record FROM analyses WHERE id = $1`

	var record []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis record: %w", err)
	}

	return unmarshalRecord(record)
}

// GetByContentHash retrieves prior records for the same input text, newest first
func (s *AuditStore) GetByContentHash(ctx context.Context, hash string) ([]*domain.AnalysisResult, error) {
	query := `
		SELECT record FROM analyses
		WHERE content_hash = $1
		ORDER BY completed_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, hash)
	if err != nil {
		return nil, fmt.Errorf("query analyses by content hash: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListRecent retrieves the most recent records, newest first
func (s *AuditStore) ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisResult, error) {
	query := `
		SELECT record FROM analyses
		ORDER BY completed_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent analyses: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the total number of stored records
func (s *AuditStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return count, nil
}

// Ping checks the store is reachable
func (s *AuditStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func scanRecords(rows *sql.Rows) ([]*domain.AnalysisResult, error) {
	var results []*domain.AnalysisResult
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("scan analysis record: %w", err)
		}
		result, err := unmarshalRecord(record)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis records: %w", err)
	}
	return results, nil
}

func unmarshalRecord(record []byte) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	if err := json.Unmarshal(record, &result); err != nil {
		return nil, fmt.Errorf("unmarshal analysis record: %w", err)
	}
	return &result, nil
}
