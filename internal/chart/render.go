// Package chart draws the voltage/current scatter with its fitted line.
package chart

import (
	"bytes"
	"fmt"
	"sort"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"

	"ivfit-app/internal/domain"
	"ivfit-app/internal/regression"
)

const (
	DefaultWidth  = 600
	DefaultHeight = 400

	ContentType = "image/png"
)

type Options struct {
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
}

func gridStyle() gochart.Style {
	return gochart.Style{
		StrokeColor: drawing.ColorFromHex("dddddd"),
		StrokeWidth: 1,
	}
}

// RenderFit draws readings and fit into a PNG held in memory.
func RenderFit(readings []domain.Reading, fit domain.Fit, opts Options) ([]byte, error) {
	if len(readings) < regression.MinReadings {
		return nil, domain.ErrInsufficientData
	}
	opts = opts.withDefaults()

	currents, voltages := regression.Split(readings)

	// the line is drawn left to right through the observed currents
	lineX := append([]float64(nil), currents...)
	sort.Float64s(lineX)
	lineY := regression.Fitted(fit, lineX)

	points := gochart.ContinuousSeries{
		Name:    "Data Points",
		Style:   pointStyle(gochart.ColorBlue),
		XValues: currents,
		YValues: voltages,
	}
	line := gochart.ContinuousSeries{
		Name:    LegendLabel(fit),
		Style:   lineStyle(gochart.ColorRed),
		XValues: lineX,
		YValues: lineY,
	}

	xMin, xMax := paddedRange(currents)
	yMin, yMax := paddedRange(append(append([]float64(nil), voltages...), lineY...))

	ch := gochart.Chart{
		Title:      "Voltage vs Current",
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:           "Current (A)",
			Range:          &gochart.ContinuousRange{Min: xMin, Max: xMax},
			GridMajorStyle: gridStyle(),
			GridMinorStyle: gridStyle(),
		},
		YAxis: gochart.YAxis{
			Name:           "Voltage (V)",
			Range:          &gochart.ContinuousRange{Min: yMin, Max: yMax},
			GridMajorStyle: gridStyle(),
			GridMinorStyle: gridStyle(),
		},
		Series: []gochart.Series{points, line},
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// LegendLabel reports the slope, which is the resistance in ohms.
func LegendLabel(fit domain.Fit) string {
	return fmt.Sprintf("Fit Line (R = %.2f Ω)", fit.Slope)
}

// paddedRange widens [min, max] by 5% on each side, or by 1 when every
// value is equal, so the axis never collapses to zero width.
func paddedRange(values []float64) (float64, float64) {
	lo, hi := floats.Min(values), floats.Max(values)

	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}
