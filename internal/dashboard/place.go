package dashboard

import (
	"context"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
)

// placement is where a city is drawn and how the position was obtained.
type placement struct {
	lat, lon float64
	source   string
	address  string
}

// place resolves map coordinates for an aggregate. Dataset coordinates win;
// otherwise the geocoder is consulted when configured. A geocoding failure
// leaves the city unplaced.
func (d *Dashboard) place(ctx context.Context, agg *domain.CityAggregate) (placement, bool) {
	if agg.HasCoordinates() {
		return placement{lat: agg.Latitude.Value, lon: agg.Longitude.Value, source: GeoSourceDataset}, true
	}
	if d.geocoder == nil || agg.City == "" || agg.State == "" {
		return placement{}, false
	}

	result, err := d.geocoder.ForwardGeocode(ctx, agg.City, agg.State)
	if err != nil {
		d.logger.Warn("forward geocoding failed",
			"city", agg.City,
			"state", agg.State,
			"error", err,
		)
		return placement{}, false
	}
	if !result.Found() {
		d.logger.Debug("city not found by geocoder", "city", agg.City, "state", agg.State)
		return placement{}, false
	}

	d.logger.Debug("city geocoded",
		"city", agg.City,
		"state", agg.State,
		"place_name", result.PlaceName,
		"confidence", result.Confidence,
	)
	return placement{
		lat:     result.Lat,
		lon:     result.Lon,
		source:  GeoSourceGeocoded,
		address: result.FormattedAddress,
	}, true
}
