// Package mapping manages company-to-facility mappings: the admin-curated
// link between a disclosed company name and its regulator facility ID.
package mapping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/enviroscope/enviroscope/pkg/validation"
)

// ErrNotFound is returned when a company has no mapping.
var ErrNotFound = errors.New("mapping not found")

// Mapping is a company_facility_map row. Company names are stored trimmed
// but case-preserving; lookups are case-insensitive.
type Mapping struct {
	Company      string    `db:"company" json:"company"`
	FacilityID   string    `db:"facility_id" json:"facility_id"`
	FacilityName string    `db:"facility_name" json:"facility_name,omitempty"`
	State        string    `db:"state" json:"state,omitempty"`
	Notes        string    `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Service provides mapping management backed by Postgres.
type Service struct {
	db *sqlx.DB
}

// NewService creates a mapping Service.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Upsert creates or replaces the mapping for a company. The admin path is
// the only writer; last write wins.
func (s *Service) Upsert(ctx context.Context, m Mapping) (*Mapping, error) {
	m.Company = strings.TrimSpace(m.Company)
	if m.Company == "" {
		return nil, fmt.Errorf("company is required")
	}
	if strings.TrimSpace(m.FacilityID) == "" {
		return nil, fmt.Errorf("facility_id is required")
	}

	var row Mapping
	err := s.db.GetContext(ctx, &row,
		`INSERT INTO company_facility_map (company, facility_id, facility_name, state, notes)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (lower(company)) DO UPDATE
		   SET facility_id   = EXCLUDED.facility_id,
		       facility_name = EXCLUDED.facility_name,
		       state         = EXCLUDED.state,
		       notes         = EXCLUDED.notes,
		       updated_at    = now()
		 RETURNING company, facility_id, facility_name, state, notes, created_at, updated_at`,
		m.Company, m.FacilityID, m.FacilityName, m.State, m.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert mapping %s: %w", m.Company, err)
	}
	return &row, nil
}

// Get retrieves the mapping for a company, case-insensitively.
func (s *Service) Get(ctx context.Context, company string) (*Mapping, error) {
	var row Mapping
	err := s.db.GetContext(ctx, &row,
		`SELECT company, facility_id, facility_name, state, notes, created_at, updated_at
		 FROM company_facility_map WHERE lower(company) = lower($1)`,
		strings.TrimSpace(company),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get mapping %s: %w", company, err)
	}
	return &row, nil
}

// List returns mappings ordered by company name.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Mapping, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var rows []Mapping
	err := s.db.SelectContext(ctx, &rows,
		`SELECT company, facility_id, facility_name, state, notes, created_at, updated_at
		 FROM company_facility_map ORDER BY company LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	return rows, nil
}

// Delete removes a mapping. Missing rows are not an error.
func (s *Service) Delete(ctx context.Context, company string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM company_facility_map WHERE lower(company) = lower($1)`,
		strings.TrimSpace(company),
	)
	if err != nil {
		return fmt.Errorf("delete mapping %s: %w", company, err)
	}
	return nil
}

// Resolver adapts the Service to the validation engine's MappingStore.
type Resolver struct {
	Service *Service
}

// GetMapping implements validation.MappingStore.
func (r *Resolver) GetMapping(ctx context.Context, company string) (*validation.Mapping, error) {
	m, err := r.Service.Get(ctx, company)
	if errors.Is(err, ErrNotFound) {
		return nil, validation.ErrMappingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &validation.Mapping{
		Company:      m.Company,
		FacilityID:   m.FacilityID,
		FacilityName: m.FacilityName,
		State:        m.State,
	}, nil
}
