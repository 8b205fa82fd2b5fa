package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/couchcryptid/air-quality-dashboard/internal/adapter/httpadapter"
	"github.com/couchcryptid/air-quality-dashboard/internal/dashboard"
	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"github.com/couchcryptid/air-quality-dashboard/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lat = domain.Coordinate{Value: 41.59, Valid: true}
	lon = domain.Coordinate{Value: -93.62, Valid: true}
)

func testRecords() []domain.Record {
	return []domain.Record{
		domain.NewRecord("DES MOINES", "IA", "2020-01-01", lat, lon,
			map[domain.Metric]float64{domain.MetricPM25: 9, domain.MetricO3: 0.03, domain.MetricMilMiles: 100}),
		domain.NewRecord("DES MOINES", "IA", "2020-01-02", lat, lon,
			map[domain.Metric]float64{domain.MetricPM25: 11, domain.MetricO3: 0.05, domain.MetricMilMiles: 110}),
		domain.NewRecord("Cary", "NC", "2020-01-02", domain.Coordinate{}, domain.Coordinate{},
			map[domain.Metric]float64{domain.MetricPM25: 4}),
	}
}

func newTestServer(t *testing.T) (*httpadapter.Server, *dashboard.Dashboard) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := dashboard.New(testRecords(), nil, nil, logger, observability.NewMetricsForTesting())
	require.NoError(t, err)
	return httpadapter.NewServer(":0", d, logger), d
}

func get(srv http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func post(srv http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(t)
	assert.Equal(t, http.StatusOK, get(srv, "/healthz").Code)
}

func TestReadyzFollowsFirstView(t *testing.T) {
	srv, d := newTestServer(t)
	assert.Equal(t, http.StatusServiceUnavailable, get(srv, "/readyz").Code)

	_, err := d.Update(context.Background(), dashboard.UpdateRequest{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(srv, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(srv, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRangeAndCatalog(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(srv, "/api/range")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"start":"2020-01-01","end":"2020-01-02"}`, rec.Body.String())

	rec = get(srv, "/api/catalog")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["pollutants"], len(domain.Pollutants))
	assert.Len(t, body["variables"], len(domain.Variables))
	assert.Equal(t, map[string]any{"pollutant": "o3_median", "variable": "mil_miles"}, body["defaults"])
}

func TestUpdateAndView(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(srv, "/api/view")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no_view", decode(t, rec)["status"])

	rec = post(srv, "/api/update?start=2020-01-01&end=2020-01-02")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	markers, ok := body["markers"].([]any)
	require.True(t, ok)
	require.Len(t, markers, 1)
	assert.Equal(t, "Des Moines, IA", markers[0].(map[string]any)["display_name"])
	assert.Equal(t, []any{"Cary, NC"}, body["unplaced"])

	assert.Equal(t, http.StatusOK, get(srv, "/api/view").Code)
}

func TestUpdateFormBody(t *testing.T) {
	srv, d := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/update", strings.NewReader("start=2020-01-02&end=2020-01-02"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, d.CurrentView())
	assert.Equal(t, "2020-01-02 to 2020-01-02", d.CurrentView().Range.String())
}

func TestReadOnlyRoutesKeepView(t *testing.T) {
	srv, d := newTestServer(t)

	assert.Equal(t, http.StatusMethodNotAllowed, get(srv, "/api/update").Code)
	get(srv, "/api/view")
	get(srv, "/api/cities/IA/DES%20MOINES")
	assert.Nil(t, d.CurrentView(), "GET requests must not render a view")
}

func TestUpdateEmptyRange(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := post(srv, "/api/update?start=2021-01-01&end=2021-02-01")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "empty_range", body["status"])
	assert.Equal(t, domain.ErrEmptyRange.Error(), body["message"])
}

func TestCityEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		target string
		code   int
		status string
	}{
		{"panel", "/api/cities/IA/DES%20MOINES", http.StatusOK, ""},
		{"series", "/api/cities/IA/DES%20MOINES/series?pollutant=pm25_median&variable=dew_max", http.StatusOK, ""},
		{"unknown city", "/api/cities/IA/Ames", http.StatusNotFound, "not_found"},
		{"unknown metric", "/api/cities/IA/DES%20MOINES/series?pollutant=ozone", http.StatusBadRequest, "invalid_metric"},
		{"no data", "/api/cities/NC/Cary/series?pollutant=co_median&variable=dew_max", http.StatusNotFound, "no_data"},
		{"empty range", "/api/cities/IA/DES%20MOINES?start=1999-01-01&end=1999-01-02", http.StatusNotFound, "empty_range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(srv, tt.target)
			assert.Equal(t, tt.code, rec.Code)
			if tt.status != "" {
				assert.Equal(t, tt.status, decode(t, rec)["status"])
			}
		})
	}
}

func TestCityPanelBody(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(srv, "/api/cities/IA/DES%20MOINES")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Des Moines, IA", body["display_name"])
	assert.Equal(t, "10.00", body["average_label"])
	chart, ok := body["chart"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "O3 and MIL Miles", chart["title"])
}

func TestChartSVG(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, target := range []string{
		"/api/cities/IA/DES%20MOINES/chart.svg",
		"/api/cities/IA/DES%20MOINES/chart.svg?fullscreen=true&pollutant=pm25_median",
	} {
		rec := get(srv, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "<svg")
	}

	rec := get(srv, "/api/cities/NC/Cary/chart.svg")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no_data", decode(t, rec)["status"])
}

type failingDashboard struct {
	*dashboard.Dashboard
}

func (failingDashboard) Chart(context.Context, dashboard.ChartRequest) (*dashboard.ChartData, error) {
	return nil, errors.New("boom")
}

func TestUnexpectedErrorReturns500(t *testing.T) {
	_, d := newTestServer(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httpadapter.NewServer(":0", failingDashboard{d}, logger)

	rec := get(srv, "/api/cities/IA/DES%20MOINES/series")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", decode(t, rec)["status"])
}
