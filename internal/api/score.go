package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/enviroscope/enviroscope/pkg/scoring"
)

// handleGetScore computes the composite score for a company and persists
// the result when a report sink is wired.
func (h *Handler) handleGetScore(w http.ResponseWriter, r *http.Request) {
	company := r.PathValue("company")
	if company == "" {
		writeError(w, http.StatusBadRequest, "company is required")
		return
	}

	result, err := h.scorer.Score(r.Context(), scoring.Request{
		Company: company,
		Country: r.URL.Query().Get("country"),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ScoresComputedTotal.Inc()
	}

	if h.reports != nil {
		if _, err := h.reports.SaveScore(r.Context(), result); err != nil {
			// Persistence is best-effort: the caller still gets the score.
			log.Printf("persist score for %s: %v", result.Company, err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// handleScoreHistory lists persisted score summaries for a company.
func (h *Handler) handleScoreHistory(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		writeError(w, http.StatusNotFound, "report persistence not configured")
		return
	}

	company := r.PathValue("company")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := h.reports.ListScores(r.Context(), company, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scores": rows})
}

// handleReportHistory lists persisted validation report summaries.
func (h *Handler) handleReportHistory(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		writeError(w, http.StatusNotFound, "report persistence not configured")
		return
	}

	company := r.PathValue("company")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := h.reports.ListValidations(r.Context(), company, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": rows})
}
