package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"github.com/couchcryptid/air-quality-dashboard/internal/observability"
)

const (
	defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	// candidates is how many features are requested so one in the right state can be picked.
	candidates = 3
)

// Client implements domain.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox geocoding client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// ForwardGeocode converts a city name and state to coordinates. Features whose
// region does not match state are skipped. A query with no match returns the
// zero result and no error.
func (c *Client) ForwardGeocode(ctx context.Context, name, state string) (domain.GeocodingResult, error) {
	query := name
	if state != "" {
		query = fmt.Sprintf("%s, %s", name, state)
	}

	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(query))
	params := url.Values{
		"access_token": {c.token},
		"limit":        {strconv.Itoa(candidates)},
		"types":        {"place,locality"},
		"country":      {"us"},
	}

	start := time.Now()
	result, err := c.doRequest(ctx, u+"?"+params.Encode(), state)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	case !result.Found():
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		c.logger.Debug("mapbox returned no match", "query", query)
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return result, err
}

func (c *Client) doRequest(ctx context.Context, fullURL, state string) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("forward geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.GeocodingResult{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}

	f, ok := matchFeature(mapboxResp.Features, state)
	if !ok {
		return domain.GeocodingResult{}, nil
	}

	result := domain.GeocodingResult{
		FormattedAddress: f.PlaceName,
		PlaceName:        f.Text,
		Confidence:       f.Relevance,
	}
	if len(f.Center) == 2 {
		result.Lon = f.Center[0]
		result.Lat = f.Center[1]
	}
	return result, nil
}

// matchFeature returns the first feature located in state. Features without
// region context are accepted as is.
func matchFeature(features []feature, state string) (feature, bool) {
	want := "US-" + strings.ToUpper(strings.TrimSpace(state))
	for _, f := range features {
		region, ok := f.region()
		if state == "" || !ok || strings.EqualFold(region, want) {
			return f, true
		}
	}
	return feature{}, false
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64        `json:"center"` // [lon, lat]
	PlaceName string           `json:"place_name"`
	Text      string           `json:"text"`
	Relevance float64          `json:"relevance"`
	Context   []featureContext `json:"context"`
}

type featureContext struct {
	ID        string `json:"id"`         // e.g. "region.9810"
	ShortCode string `json:"short_code"` // e.g. "US-IA"
}

func (f feature) region() (string, bool) {
	for _, c := range f.Context {
		if strings.HasPrefix(c.ID, "region.") && c.ShortCode != "" {
			return c.ShortCode, true
		}
	}
	return "", false
}
