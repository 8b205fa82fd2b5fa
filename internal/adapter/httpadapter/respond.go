package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyRange):
		writeJSON(w, http.StatusNotFound, errorResponse{Status: "empty_range", Message: domain.ErrEmptyRange.Error()})
	case errors.Is(err, domain.ErrNoData):
		writeJSON(w, http.StatusNotFound, errorResponse{Status: "no_data", Message: domain.ErrNoData.Error()})
	case errors.Is(err, domain.ErrCityNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Status: "not_found", Message: err.Error()})
	case errors.Is(err, domain.ErrUnknownMetric):
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "invalid_metric", Message: err.Error()})
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
