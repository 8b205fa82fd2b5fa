package dashboard

import (
	"math"
	"time"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
)

// Marker placement sources.
const (
	GeoSourceDataset  = "dataset"
	GeoSourceGeocoded = "geocoded"
)

// View is the complete map rendering for one date range. A new View replaces
// the previous one wholesale on every successful update.
type View struct {
	Range       domain.DateRange   `json:"range"`
	ColorDomain domain.ColorDomain `json:"color_domain"`
	Legend      domain.Legend      `json:"legend"`
	Markers     []Marker           `json:"markers"`
	Unplaced    []string           `json:"unplaced"`
	Bounds      *Bounds            `json:"bounds,omitempty"`
	CityCount   int                `json:"city_count"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Marker is one city circle on the map.
type Marker struct {
	Key         string  `json:"key"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	AveragePM25 float64 `json:"average_pm25"`
	Count       int     `json:"count"`
	Color       string  `json:"color"`
	GeoSource   string  `json:"geo_source"`
	GeocodedAs  string  `json:"geocoded_as,omitempty"` // provider's address for geocoded markers
}

// Bounds is the smallest box containing every marker, for fit-to-bounds.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

func markerBounds(markers []Marker) *Bounds {
	if len(markers) == 0 {
		return nil
	}
	b := &Bounds{
		MinLat: markers[0].Lat, MaxLat: markers[0].Lat,
		MinLon: markers[0].Lon, MaxLon: markers[0].Lon,
	}
	for _, m := range markers[1:] {
		b.MinLat = math.Min(b.MinLat, m.Lat)
		b.MaxLat = math.Max(b.MaxLat, m.Lat)
		b.MinLon = math.Min(b.MinLon, m.Lon)
		b.MaxLon = math.Max(b.MaxLon, m.Lon)
	}
	return b
}

// displayName renders a city the way the info panel titles it.
func displayName(city, state string) string {
	return domain.DisplayCity(city) + ", " + domain.DisplayState(state)
}

// CitySummary is the exported aggregate of one city for a range.
type CitySummary struct {
	Key         string   `json:"key"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	AveragePM25 float64  `json:"average_pm25"`
	Count       int      `json:"count"`
	Color       string   `json:"color"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
}

// ExportBatch is everything published after one successful update.
type ExportBatch struct {
	Range       domain.DateRange
	GeneratedAt time.Time
	Cities      []CitySummary
}
