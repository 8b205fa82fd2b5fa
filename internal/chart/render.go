// Package chart draws city time-series charts as SVG.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/air-quality-dashboard/internal/dashboard"
	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
)

// Chart dimensions in pixels.
const (
	Width            = 300
	Height           = 250
	FullscreenWidth  = 700
	FullscreenHeight = 450
)

var (
	pollutantColor = drawing.ColorFromHex("1f77b4")
	variableColor  = drawing.ColorRed
)

// Options controls the presentation of a rendered chart.
type Options struct {
	Fullscreen bool
}

func (o Options) size() (int, int) {
	if o.Fullscreen {
		return FullscreenWidth, FullscreenHeight
	}
	return Width, Height
}

// Render writes data as an SVG line chart with one line per series on shared
// axes.
func Render(w io.Writer, data *dashboard.ChartData, opts Options) error {
	if data == nil {
		return errors.New("render chart: no data")
	}

	var series []gochart.Series
	if s, ok := timeSeries(data.PollutantLabel, data.PollutantSeries, pollutantColor); ok {
		series = append(series, s)
	}
	if s, ok := timeSeries(data.VariableLabel, data.VariableSeries, variableColor); ok {
		series = append(series, s)
	}
	if len(series) == 0 {
		return fmt.Errorf("render chart: %w", domain.ErrNoData)
	}

	xMin, xMax := xRange(data.DateDomain, series)

	width, height := opts.size()
	ch := gochart.Chart{
		Title:      data.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 24, Left: 12, Right: 12, Bottom: 12}},
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeValueFormatterWithFormat(domain.DateLayout),
			Range:          &gochart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: data.ValueDomain.Min, Max: data.ValueDomain.Max},
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(gochart.SVG, &buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := w.Write(sizeSVG(buf.Bytes(), width, height)); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// xRange returns the x axis bounds: the combined date domain, stretched to
// cover every plotted point and widened by one day when degenerate.
func xRange(d domain.DateDomain, series []gochart.Series) (float64, float64) {
	xMin := gochart.TimeToFloat64(d.Min)
	xMax := gochart.TimeToFloat64(d.Max)
	for _, s := range series {
		ts, ok := s.(gochart.TimeSeries)
		if !ok || len(ts.XValues) == 0 {
			continue
		}
		xMax = max(xMax, gochart.TimeToFloat64(ts.XValues[len(ts.XValues)-1]))
	}
	if xMax <= xMin {
		xMax = gochart.TimeToFloat64(d.Min.Add(24 * time.Hour))
	}
	return xMin, xMax
}

// sizeSVG sets width and height on the root element. go-chart only writes a
// viewBox, which lets browsers scale every chart to its container.
func sizeSVG(svg []byte, width, height int) []byte {
	i := bytes.Index(svg, []byte("<svg"))
	if i < 0 {
		return svg
	}
	i += len("<svg")
	attrs := fmt.Sprintf(` width="%d" height="%d"`, width, height)

	out := make([]byte, 0, len(svg)+len(attrs))
	out = append(out, svg[:i]...)
	out = append(out, attrs...)
	return append(out, svg[i:]...)
}

// timeSeries converts points to a go-chart series. A single point is drawn as
// a flat one-day segment so the line stays visible.
func timeSeries(name string, points []domain.SeriesPoint, color drawing.Color) (gochart.TimeSeries, bool) {
	if len(points) == 0 {
		return gochart.TimeSeries{}, false
	}
	xs := make([]time.Time, 0, len(points)+1)
	ys := make([]float64, 0, len(points)+1)
	for _, p := range points {
		xs = append(xs, p.Date)
		ys = append(ys, p.Value)
	}
	if len(points) == 1 {
		xs = append(xs, points[0].Date.Add(24*time.Hour))
		ys = append(ys, points[0].Value)
	}
	return gochart.TimeSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: gochart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
		},
	}, true
}
