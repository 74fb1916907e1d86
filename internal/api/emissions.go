package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/enviroscope/enviroscope/internal/sources"
	"github.com/enviroscope/enviroscope/pkg/emissions"
	"github.com/enviroscope/enviroscope/pkg/units"
)

type calculateResponse struct {
	TotalCO2eKg     float64      `json:"total_co2e_kg"`
	TotalCO2eTonnes float64      `json:"total_co2e_tonnes"`
	Lines           []units.Line `json:"lines"`
	FactorsVersion  string       `json:"factors_version"`
}

// handleCalculate normalizes a self-reported activity payload to CO2e.
func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var input units.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := units.Normalize(input)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, calculateResponse{
		TotalCO2eKg:     result.TotalKg,
		TotalCO2eTonnes: result.Tonnes(),
		Lines:           result.Lines,
		FactorsVersion:  units.FactorsVersion,
	})
}

// handleFactors exposes the pinned emission factor tables.
func (h *Handler) handleFactors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":      units.FactorsVersion,
		"fuel_factors": units.FuelFactors(),
		"grid_factors": units.GridFactors(),
	})
}

func recordFilterFromQuery(r *http.Request) (sources.RecordFilter, error) {
	f := sources.RecordFilter{
		State:     r.URL.Query().Get("state"),
		Pollutant: r.URL.Query().Get("pollutant"),
	}
	if v := r.URL.Query().Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("invalid year %q", v)
		}
		f.Year = year
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("invalid limit %q", v)
		}
		f.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("invalid offset %q", v)
		}
		f.Offset = offset
	}
	return f, nil
}

func cacheKey(f sources.RecordFilter) string {
	return fmt.Sprintf("%s|%d|%s|%d|%d", f.State, f.Year, f.Pollutant, f.Limit, f.Offset)
}

func (h *Handler) fetchRecords(r *http.Request, f sources.RecordFilter) ([]emissions.Record, error) {
	key := cacheKey(f)
	if records, ok := h.cache.Get(key); ok {
		if h.metrics != nil {
			h.metrics.CacheHitsTotal.Inc()
		}
		return records, nil
	}
	if h.metrics != nil {
		h.metrics.CacheMissesTotal.Inc()
	}

	records, err := h.records.Records(r.Context(), f)
	if err != nil {
		return nil, err
	}
	h.cache.Put(key, records)
	return records, nil
}

// handleListEmissions serves regulator emission records with filters and
// pagination.
func (h *Handler) handleListEmissions(w http.ResponseWriter, r *http.Request) {
	f, err := recordFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.fetchRecords(r, f)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

// handleEmissionsStats aggregates record counts by state, pollutant and year.
func (h *Handler) handleEmissionsStats(w http.ResponseWriter, r *http.Request) {
	f, err := recordFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.fetchRecords(r, f)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, emissions.Aggregate(records))
}

// handleFacilityEmissions serves raw regulator figures for one facility,
// the quantitative reference the validation engine compares against.
func (h *Handler) handleFacilityEmissions(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("facilityID")
	if facilityID == "" {
		writeError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	figures, err := h.facility.FacilityFigures(r.Context(), facilityID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, figures)
}
