package domain

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// redsRamp is the 9-class ColorBrewer "Reds" sequential scheme, pale to dark.
var redsRamp = []drawing.Color{
	drawing.ColorFromHex("fff5f0"),
	drawing.ColorFromHex("fee0d2"),
	drawing.ColorFromHex("fcbba1"),
	drawing.ColorFromHex("fc9272"),
	drawing.ColorFromHex("fb6a4a"),
	drawing.ColorFromHex("ef3b2c"),
	drawing.ColorFromHex("cb181d"),
	drawing.ColorFromHex("a50f15"),
	drawing.ColorFromHex("67000d"),
}

// DefaultLegendStops is the number of gradient stops in the map legend.
const DefaultLegendStops = 10

// ColorDomain is the numeric extent mapped onto the color ramp.
type ColorDomain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Degenerate reports whether the domain has zero width.
func (d ColorDomain) Degenerate() bool {
	return d.Min == d.Max
}

// ComputeDomain returns the extent of the per-city PM2.5 averages. An empty
// input yields the zero domain.
func ComputeDomain(aggs map[CityKey]*CityAggregate) ColorDomain {
	var d ColorDomain
	first := true
	for _, a := range aggs {
		avg := a.Average()
		if first {
			d = ColorDomain{Min: avg, Max: avg}
			first = false
			continue
		}
		d.Min = math.Min(d.Min, avg)
		d.Max = math.Max(d.Max, avg)
	}
	return d
}

// ColorFor maps v onto the ramp by linear position within d. Values outside d
// clamp to the end colors, NaN maps to the low end, and a degenerate domain
// maps everything to the middle of the ramp.
func ColorFor(d ColorDomain, v float64) drawing.Color {
	var t float64
	switch {
	case d.Degenerate():
		t = 0.5
	case math.IsNaN(v):
		t = 0
	default:
		t = (v - d.Min) / (d.Max - d.Min)
	}
	return interpolateRamp(redsRamp, t)
}

func interpolateRamp(ramp []drawing.Color, t float64) drawing.Color {
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(ramp)-1)
	i := int(math.Floor(pos))
	if i >= len(ramp)-1 {
		return ramp[len(ramp)-1]
	}
	frac := pos - float64(i)
	a, b := ramp[i], ramp[i+1]
	return drawing.Color{
		R: lerpChannel(a.R, b.R, frac),
		G: lerpChannel(a.G, b.G, frac),
		B: lerpChannel(a.B, b.B, frac),
		A: 255,
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// Hex renders c as a "#rrggbb" string.
func Hex(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// LegendStop is one gradient stop of the legend.
type LegendStop struct {
	Offset float64 `json:"offset"` // 0..1 along the gradient
	Value  float64 `json:"value"`
	Color  string  `json:"color"`
}

// Legend describes the color scale drawn next to the map.
type Legend struct {
	Title    string       `json:"title"`
	Stops    []LegendStop `json:"stops"`
	MinLabel string       `json:"min_label"`
	MaxLabel string       `json:"max_label"`
}

// BuildLegend spreads n stops evenly across d.
func BuildLegend(d ColorDomain, n int) Legend {
	if n < 2 {
		n = 2
	}
	step := (d.Max - d.Min) / float64(n-1)
	stops := make([]LegendStop, n)
	for i := range stops {
		v := d.Min + step*float64(i)
		stops[i] = LegendStop{
			Offset: float64(i) / float64(n-1),
			Value:  v,
			Color:  Hex(ColorFor(d, v)),
		}
	}
	return Legend{
		Title:    "Avg PM2.5",
		Stops:    stops,
		MinLabel: fmt.Sprintf("%.1f", d.Min),
		MaxLabel: fmt.Sprintf("%.1f", d.Max),
	}
}
