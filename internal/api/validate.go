package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/enviroscope/enviroscope/internal/notify"
	"github.com/enviroscope/enviroscope/pkg/validation"
)

// handleValidate runs the cross-validation pipeline: normalization, mapping
// lookup, regulator comparison, flags. 400 only for malformed input;
// upstream failures degrade inside the engine.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.validator.CrossValidate(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if h.metrics != nil {
		severity := report.WorstSeverity()
		if severity == "" {
			severity = "none"
		}
		h.metrics.ReportsComputedTotal.WithLabelValues(severity).Inc()
	}

	reportID := ""
	if h.reports != nil {
		row, err := h.reports.SaveValidation(r.Context(), report)
		if err != nil {
			log.Printf("persist validation report for %s: %v", report.Company, err)
		} else {
			reportID = row.ID
		}
	}

	if h.notifier != nil && notify.ShouldNotify(report) {
		// Fire-and-forget: notification latency must not delay the response.
		go func(report *validation.Report, reportID string) {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := h.notifier.NotifyValidation(ctx, report, reportID); err != nil {
				log.Printf("notify validation report for %s: %v", report.Company, err)
			}
		}(report, reportID)
	}

	writeJSON(w, http.StatusOK, report)
}
