package httpadapter

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/couchcryptid/air-quality-dashboard/internal/chart"
	"github.com/couchcryptid/air-quality-dashboard/internal/dashboard"
	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
)

type catalogResponse struct {
	Pollutants []domain.MetricOption `json:"pollutants"`
	Variables  []domain.MetricOption `json:"variables"`
	Defaults   struct {
		Pollutant domain.Metric `json:"pollutant"`
		Variable  domain.Metric `json:"variable"`
	} `json:"defaults"`
}

func (s *Server) handleRange(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.DefaultRange())
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	resp := catalogResponse{Pollutants: domain.Pollutants, Variables: domain.Variables}
	resp.Defaults.Pollutant = dashboard.DefaultPollutant
	resp.Defaults.Variable = dashboard.DefaultVariable
	writeJSON(w, http.StatusOK, resp)
}

// handleUpdate recomputes the map view for the requested range and replaces
// the current view. Bounds come from the query string or a form body.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	view, err := s.dashboard.Update(r.Context(), dashboard.UpdateRequest{
		Start: r.FormValue("start"),
		End:   r.FormValue("end"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	view := s.dashboard.CurrentView()
	if view == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Status: "no_view", Message: "no view has been rendered yet"})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCity(w http.ResponseWriter, r *http.Request) {
	panel, err := s.dashboard.SelectCity(r.Context(), cityRequest(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, panel)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	data, err := s.dashboard.Chart(r.Context(), cityRequest(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	data, err := s.dashboard.Chart(r.Context(), cityRequest(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	fullscreen, _ := strconv.ParseBool(r.URL.Query().Get("fullscreen"))
	var buf bytes.Buffer
	if err := chart.Render(&buf, data, chart.Options{Fullscreen: fullscreen}); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// cityRequest reads the city path segments and the range and metric query
// parameters shared by the city endpoints.
func cityRequest(r *http.Request) dashboard.SelectRequest {
	q := r.URL.Query()
	return dashboard.SelectRequest{
		Key:       domain.CityKey{City: r.PathValue("city"), State: r.PathValue("state")},
		Start:     q.Get("start"),
		End:       q.Get("end"),
		Pollutant: domain.Metric(q.Get("pollutant")),
		Variable:  domain.Metric(q.Get("variable")),
	}
}
