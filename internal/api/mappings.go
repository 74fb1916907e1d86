package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/enviroscope/enviroscope/internal/mapping"
)

// handlePutMapping creates or replaces a company-to-facility mapping.
// Sits behind the API-key middleware: mappings drive which regulator
// figures a company is compared against.
func (h *Handler) handlePutMapping(w http.ResponseWriter, r *http.Request) {
	if h.mappings == nil {
		writeError(w, http.StatusNotFound, "mapping store not configured")
		return
	}

	var m mapping.Mapping
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	row, err := h.mappings.Upsert(r.Context(), m)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// handleListMappings lists mappings with pagination.
func (h *Handler) handleListMappings(w http.ResponseWriter, r *http.Request) {
	if h.mappings == nil {
		writeError(w, http.StatusNotFound, "mapping store not configured")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	rows, err := h.mappings.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mappings": rows})
}

// handleDeleteMapping removes a company's mapping. Missing rows are not an
// error, so the operation is idempotent.
func (h *Handler) handleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	if h.mappings == nil {
		writeError(w, http.StatusNotFound, "mapping store not configured")
		return
	}

	company := r.PathValue("company")
	if company == "" {
		writeError(w, http.StatusBadRequest, "company is required")
		return
	}

	if err := h.mappings.Delete(r.Context(), company); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
