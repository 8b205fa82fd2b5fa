// Package dashboard turns the loaded pollution dataset into map views and city
// charts, one command per user action.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"github.com/couchcryptid/air-quality-dashboard/internal/observability"
)

// Exporter publishes the per-city aggregates of a fresh view.
type Exporter interface {
	Export(ctx context.Context, batch ExportBatch) error
}

// UpdateRequest carries the raw start and end inputs of the date controls.
// Empty or unparseable values fall back to the dataset's default range.
type UpdateRequest struct {
	Start string
	End   string
}

// Dashboard owns the immutable dataset and the current view.
type Dashboard struct {
	records      []domain.Record
	defaultRange domain.DateRange
	geocoder     domain.Geocoder
	exporter     Exporter
	logger       *slog.Logger
	metrics      *observability.Metrics
	view         atomic.Pointer[View]
}

// New creates a Dashboard over records. The geocoder and exporter are
// optional; pass nil to disable them. domain.ErrEmptyDataset is returned when
// no record carries a valid date.
func New(records []domain.Record, geocoder domain.Geocoder, exporter Exporter, logger *slog.Logger, metrics *observability.Metrics) (*Dashboard, error) {
	def, err := domain.ResolveDefaultRange(records)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		records:      records,
		defaultRange: def,
		geocoder:     geocoder,
		exporter:     exporter,
		logger:       logger,
		metrics:      metrics,
	}, nil
}

// DefaultRange returns the earliest and latest valid dates of the dataset.
func (d *Dashboard) DefaultRange() domain.DateRange {
	return d.defaultRange
}

// CurrentView returns the last successfully rendered view, or nil before the
// first update.
func (d *Dashboard) CurrentView() *View {
	return d.view.Load()
}

// CheckReadiness returns nil once an initial view has been rendered.
func (d *Dashboard) CheckReadiness(_ context.Context) error {
	if d.view.Load() == nil {
		return errors.New("dashboard has not rendered a view yet")
	}
	return nil
}

// Update recomputes the map view for the requested range and replaces the
// current view. On domain.ErrEmptyRange the previous view is left untouched.
func (d *Dashboard) Update(ctx context.Context, req UpdateRequest) (*View, error) {
	r := domain.ResolveEffectiveRange(req.Start, req.End, d.defaultRange)

	aggs, err := domain.Aggregate(d.records, r)
	if err != nil {
		d.metrics.ViewUpdates.WithLabelValues("empty_range").Inc()
		d.logger.Info("no data in range", "range", r.String())
		return nil, err
	}

	cd := domain.ComputeDomain(aggs)
	view := &View{
		Range:       r,
		ColorDomain: cd,
		Legend:      domain.BuildLegend(cd, domain.DefaultLegendStops),
		Markers:     make([]Marker, 0, len(aggs)),
		Unplaced:    []string{},
		CityCount:   len(aggs),
		GeneratedAt: domain.Now(),
	}

	sorted := domain.SortedAggregates(aggs)
	summaries := make([]CitySummary, 0, len(sorted))
	for _, agg := range sorted {
		avg := agg.Average()
		color := domain.Hex(domain.ColorFor(cd, avg))
		summary := CitySummary{
			Key:         agg.Key().String(),
			City:        agg.City,
			State:       agg.State,
			AveragePM25: avg,
			Count:       agg.Count,
			Color:       color,
		}

		pl, ok := d.place(ctx, agg)
		if !ok {
			view.Unplaced = append(view.Unplaced, summary.Key)
			summaries = append(summaries, summary)
			continue
		}
		lat, lon := pl.lat, pl.lon
		summary.Lat, summary.Lon = &lat, &lon
		summaries = append(summaries, summary)

		view.Markers = append(view.Markers, Marker{
			Key:         summary.Key,
			City:        agg.City,
			State:       agg.State,
			DisplayName: displayName(agg.City, agg.State),
			Lat:         lat,
			Lon:         lon,
			AveragePM25: avg,
			Count:       agg.Count,
			Color:       color,
			GeoSource:   pl.source,
			GeocodedAs:  pl.address,
		})
	}
	view.Bounds = markerBounds(view.Markers)

	d.view.Store(view)
	d.metrics.ViewUpdates.WithLabelValues("success").Inc()
	d.metrics.AggregatedCities.Set(float64(view.CityCount))
	d.metrics.UnplacedCities.Set(float64(len(view.Unplaced)))
	d.logger.Info("view updated",
		"range", r.String(),
		"cities", view.CityCount,
		"markers", len(view.Markers),
		"unplaced", len(view.Unplaced),
	)

	d.export(ctx, ExportBatch{Range: r, GeneratedAt: view.GeneratedAt, Cities: summaries})
	return view, nil
}

func (d *Dashboard) export(ctx context.Context, batch ExportBatch) {
	if d.exporter == nil {
		return
	}
	if err := d.exporter.Export(ctx, batch); err != nil {
		d.metrics.ExportErrors.Inc()
		d.logger.Error("aggregate export failed", "error", err, "cities", len(batch.Cities))
		return
	}
	d.metrics.ExportMessages.Add(float64(len(batch.Cities)))
}
