// Package api implements the hosted Enviroscope REST API: emission
// calculation, composite scores, cross-validation, and mapping
// administration, backed by Postgres and the report archive.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/enviroscope/enviroscope/internal/mapping"
	"github.com/enviroscope/enviroscope/internal/notify"
	"github.com/enviroscope/enviroscope/internal/reports"
	"github.com/enviroscope/enviroscope/internal/sources"
	"github.com/enviroscope/enviroscope/pkg/emissions"
	"github.com/enviroscope/enviroscope/pkg/metrics"
	"github.com/enviroscope/enviroscope/pkg/scoring"
	"github.com/enviroscope/enviroscope/pkg/units"
	"github.com/enviroscope/enviroscope/pkg/validation"
)

// Scorer computes composite scores.
type Scorer interface {
	Score(ctx context.Context, req scoring.Request) (*scoring.Result, error)
}

// Validator runs the cross-validation pipeline.
type Validator interface {
	CrossValidate(ctx context.Context, req validation.Request) (*validation.Report, error)
}

// RecordLister lists regulator emission records.
type RecordLister interface {
	Records(ctx context.Context, f sources.RecordFilter) ([]emissions.Record, error)
}

// FacilityReader reads regulator figures for a single facility.
type FacilityReader interface {
	FacilityFigures(ctx context.Context, facilityID string) (*emissions.FacilityFigures, error)
}

// MappingAdmin manages company-to-facility mappings.
type MappingAdmin interface {
	Upsert(ctx context.Context, m mapping.Mapping) (*mapping.Mapping, error)
	List(ctx context.Context, limit, offset int) ([]mapping.Mapping, error)
	Delete(ctx context.Context, company string) error
}

// ReportSink persists computed reports. May be nil; computation still
// answers when persistence is not wired.
type ReportSink interface {
	SaveScore(ctx context.Context, result *scoring.Result) (*reports.ScoreRow, error)
	SaveValidation(ctx context.Context, report *validation.Report) (*reports.ValidationRow, error)
	ListScores(ctx context.Context, company string, limit int) ([]reports.ScoreRow, error)
	ListValidations(ctx context.Context, company string, limit int) ([]reports.ValidationRow, error)
}

// Handler is the top-level API handler for the hosted Enviroscope service.
type Handler struct {
	scorer    Scorer
	validator Validator
	records   RecordLister
	facility  FacilityReader
	mappings  MappingAdmin
	reports   ReportSink
	notifier  *notify.Notifier
	cache     *PayloadCache
	metrics   *metrics.Collector
}

// NewHandler creates a new API handler.
func NewHandler(scorer Scorer, validator Validator, records RecordLister, facility FacilityReader, mappings MappingAdmin, sink ReportSink, notifier *notify.Notifier, cache *PayloadCache, collector *metrics.Collector) *Handler {
	if cache == nil {
		cache = NewPayloadCacheFromEnv()
	}
	return &Handler{
		scorer:    scorer,
		validator: validator,
		records:   records,
		facility:  facility,
		mappings:  mappings,
		reports:   sink,
		notifier:  notifier,
		cache:     cache,
		metrics:   collector,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Computation endpoints
	mux.HandleFunc("POST /api/v1/emissions/calculate", h.handleCalculate)
	mux.HandleFunc("GET /api/v1/scores/{company}", h.handleGetScore)
	mux.HandleFunc("GET /api/v1/scores/{company}/history", h.handleScoreHistory)
	mux.HandleFunc("POST /api/v1/validate", h.handleValidate)
	mux.HandleFunc("GET /api/v1/reports/{company}", h.handleReportHistory)

	// Regulator data passthrough
	mux.HandleFunc("GET /api/v1/emissions", h.handleListEmissions)
	mux.HandleFunc("GET /api/v1/emissions/stats", h.handleEmissionsStats)
	mux.HandleFunc("GET /api/v1/emissions/factors", h.handleFactors)
	mux.HandleFunc("GET /api/v1/facilities/{facilityID}/emissions", h.handleFacilityEmissions)

	// Mapping administration (API-key protected at middleware level)
	mux.HandleFunc("PUT /api/v1/mappings", h.handlePutMapping)
	mux.HandleFunc("GET /api/v1/mappings", h.handleListMappings)
	mux.HandleFunc("DELETE /api/v1/mappings/{company}", h.handleDeleteMapping)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps engine errors onto HTTP statuses: malformed input
// is the caller's fault, everything else is ours.
func writeEngineError(w http.ResponseWriter, err error) {
	var unsupported *units.UnsupportedUnitError
	var input *units.InputError
	switch {
	case errors.As(err, &unsupported), errors.As(err, &input):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
