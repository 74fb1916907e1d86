// Package reports persists computed score and validation reports: a summary
// row in Postgres and the full JSON blob in the archive.
package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/enviroscope/enviroscope/internal/archive"
	"github.com/enviroscope/enviroscope/pkg/scoring"
	"github.com/enviroscope/enviroscope/pkg/validation"
)

// Service writes and reads persisted reports.
type Service struct {
	db      *sql.DB
	storage archive.Client
}

// NewService creates a reports Service.
func NewService(db *sql.DB, storage archive.Client) *Service {
	return &Service{db: db, storage: storage}
}

// ScoreRow is a persisted score summary.
type ScoreRow struct {
	ID         string          `json:"id"`
	Company    string          `json:"company"`
	Country    string          `json:"country,omitempty"`
	Score      float64         `json:"score"`
	Components json.RawMessage `json:"components"`
	Sources    json.RawMessage `json:"sources"`
	StorageRef string          `json:"storage_ref"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ValidationRow is a persisted validation report summary.
type ValidationRow struct {
	ID            string    `json:"id"`
	Company       string    `json:"company"`
	WorstSeverity string    `json:"worst_severity,omitempty"`
	FlagCount     int       `json:"flag_count"`
	StorageRef    string    `json:"storage_ref"`
	CreatedAt     time.Time `json:"created_at"`
}

// SaveScore archives the full score result and records a summary row.
// The blob is written first so a row never references a missing blob.
func (s *Service) SaveScore(ctx context.Context, result *scoring.Result) (*ScoreRow, error) {
	id := uuid.New().String()

	blob, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal score result: %w", err)
	}
	if err := s.storage.PutScore(ctx, result.Company, id, blob); err != nil {
		return nil, fmt.Errorf("archive score: %w", err)
	}

	components, err := json.Marshal(result.Components)
	if err != nil {
		return nil, fmt.Errorf("marshal components: %w", err)
	}
	sources, err := json.Marshal(result.Sources)
	if err != nil {
		return nil, fmt.Errorf("marshal sources: %w", err)
	}

	row := &ScoreRow{}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO score_reports (id, company, country, score, components, sources, storage_ref)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, company, country, score, components, sources, storage_ref, created_at`,
		id, result.Company, result.Country, result.Score, components, sources, storageRef("scores", result.Company, id),
	).Scan(&row.ID, &row.Company, &row.Country, &row.Score, &row.Components, &row.Sources, &row.StorageRef, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert score report: %w", err)
	}
	return row, nil
}

// SaveValidation archives the full validation report and records a summary
// row.
func (s *Service) SaveValidation(ctx context.Context, report *validation.Report) (*ValidationRow, error) {
	id := uuid.New().String()

	blob, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal validation report: %w", err)
	}
	if err := s.storage.PutReport(ctx, report.Company, id, blob); err != nil {
		return nil, fmt.Errorf("archive validation report: %w", err)
	}

	row := &ValidationRow{}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO validation_reports (id, company, worst_severity, flag_count, storage_ref)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, company, worst_severity, flag_count, storage_ref, created_at`,
		id, report.Company, report.WorstSeverity(), len(report.Flags), storageRef("reports", report.Company, id),
	).Scan(&row.ID, &row.Company, &row.WorstSeverity, &row.FlagCount, &row.StorageRef, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert validation report: %w", err)
	}
	return row, nil
}

// ListScores returns recent score summaries for a company, newest first.
func (s *Service) ListScores(ctx context.Context, company string, limit int) ([]ScoreRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company, country, score, components, sources, storage_ref, created_at
		 FROM score_reports WHERE lower(company) = lower($1)
		 ORDER BY created_at DESC LIMIT $2`,
		company, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var r ScoreRow
		if err := rows.Scan(&r.ID, &r.Company, &r.Country, &r.Score, &r.Components, &r.Sources, &r.StorageRef, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListValidations returns recent validation summaries for a company, newest
// first.
func (s *Service) ListValidations(ctx context.Context, company string, limit int) ([]ValidationRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company, worst_severity, flag_count, storage_ref, created_at
		 FROM validation_reports WHERE lower(company) = lower($1)
		 ORDER BY created_at DESC LIMIT $2`,
		company, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list validation reports: %w", err)
	}
	defer rows.Close()

	var out []ValidationRow
	for rows.Next() {
		var r ValidationRow
		if err := rows.Scan(&r.ID, &r.Company, &r.WorstSeverity, &r.FlagCount, &r.StorageRef, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan validation report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// storageRef is the archive key recorded on the summary row. It must match
// the key the archive backends write, company slug included, so the row
// resolves to the blob.
func storageRef(kind, company, id string) string {
	return kind + "/" + archive.Slug(company) + "/" + id + ".json"
}
