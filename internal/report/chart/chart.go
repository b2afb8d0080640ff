// Package chart renders report charts as SVG with go-chart.
package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/pkg/errors"
)

const (
	defaultWidth  = 640
	defaultHeight = 320
	areaFillAlpha = 64
)

// Options controls the rendered size and tick formatting
type Options struct {
	Width  int
	Height int
	// Format renders axis tick values; nil uses %g
	Format func(float64) string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Height <= 0 {
		o.Height = defaultHeight
	}
	if o.Format == nil {
		o.Format = func(v float64) string { return fmt.Sprintf("%g", v) }
	}
	return o
}

// Render writes c to w as SVG
func Render(w io.Writer, c report.Chart, opts Options) error {
	opts = opts.withDefaults()

	var err error
	switch c.Kind {
	case report.ChartArea, report.ChartLine:
		err = renderSeries(w, c, opts)
	case report.ChartBar:
		err = renderBars(w, c, opts)
	case report.ChartPie:
		err = renderPie(w, c, opts)
	default:
		return errors.New(errors.ErrCodeRenderFailed, fmt.Sprintf("unsupported chart kind %q", c.Kind))
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, fmt.Sprintf("failed to render chart %s", c.ID), err)
	}
	return nil
}

// SVG renders c and returns the markup
func SVG(c report.Chart, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, c, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderSeries(w io.Writer, c report.Chart, opts Options) error {
	xs := categoryXValues(len(c.Categories))

	var series []gochart.Series
	var leftMax, rightMax float64
	hasRight := false
	for _, s := range c.Series {
		ys := padValues(s.Values)
		color := parseColor(s.Color)
		style := gochart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
			DotColor:    color,
			DotWidth:    3,
		}
		if c.Kind == report.ChartArea {
			style.FillColor = color.WithAlpha(areaFillAlpha)
		}

		cs := gochart.ContinuousSeries{Name: s.Name, XValues: xs, YValues: ys, Style: style}
		if s.Axis == report.AxisRight {
			cs.YAxis = gochart.YAxisSecondary
			rightMax = math.Max(rightMax, maxOf(s.Values))
			hasRight = true
		} else {
			leftMax = math.Max(leftMax, maxOf(s.Values))
		}
		series = append(series, cs)
	}

	graph := gochart.Chart{
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 20, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: xs[0], Max: xs[len(xs)-1]},
			Ticks: categoryTicks(c.Categories),
		},
		YAxis: gochart.YAxis{
			Range:          valueRange(leftMax),
			ValueFormatter: tickFormatter(opts.Format),
		},
		Series: series,
	}
	if hasRight {
		graph.YAxisSecondary = gochart.YAxis{
			Range:          valueRange(rightMax),
			ValueFormatter: tickFormatter(opts.Format),
		}
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	return graph.Render(gochart.SVG, w)
}

// renderBars draws one bar per category and series, grouped by category
func renderBars(w io.Writer, c report.Chart, opts Options) error {
	var bars []gochart.Value
	var top float64
	for i, category := range c.Categories {
		for _, s := range c.Series {
			color := parseColor(s.Color)
			bars = append(bars, gochart.Value{
				Label: category + " " + s.Name,
				Value: s.Values[i],
				Style: gochart.Style{FillColor: color, StrokeColor: color},
			})
			top = math.Max(top, s.Values[i])
		}
	}

	barWidth := opts.Width / (2*len(bars) + 1)
	graph := gochart.BarChart{
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   barWidth,
		Background: gochart.Style{Padding: gochart.Box{Top: 20, Left: 16, Right: 16, Bottom: 16}},
		YAxis: gochart.YAxis{
			Range:          valueRange(top),
			ValueFormatter: tickFormatter(opts.Format),
		},
		Bars: bars,
	}
	return graph.Render(gochart.SVG, w)
}

func renderPie(w io.Writer, c report.Chart, opts Options) error {
	total := c.Total()
	values := make([]gochart.Value, 0, len(c.Slices))
	for _, s := range c.Slices {
		color := parseColor(s.Color)
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s %.0f%%", s.Label, s.Value/total*100),
			Value: s.Value,
			Style: gochart.Style{FillColor: color, StrokeColor: drawing.ColorWhite},
		})
	}

	graph := gochart.PieChart{
		Width:  opts.Width,
		Height: opts.Height,
		Values: values,
	}
	return graph.Render(gochart.SVG, w)
}

// categoryXValues maps categories onto 0..n-1. A lone category is padded to
// two points so the x range is never empty.
func categoryXValues(n int) []float64 {
	if n < 2 {
		return []float64{0, 1}
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

func padValues(values []float64) []float64 {
	if len(values) == 1 {
		return []float64{values[0], values[0]}
	}
	return values
}

// categoryTicks labels each category. A lone category gets a blank second
// tick to match the padded x values.
func categoryTicks(categories []string) []gochart.Tick {
	ticks := make([]gochart.Tick, 0, len(categories)+1)
	for i, c := range categories {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: c})
	}
	if len(categories) == 1 {
		ticks = append(ticks, gochart.Tick{Value: 1, Label: ""})
	}
	return ticks
}

// valueRange starts at zero and leaves headroom above the largest value
func valueRange(max float64) *gochart.ContinuousRange {
	if max <= 0 {
		max = 1
	}
	return &gochart.ContinuousRange{Min: 0, Max: max * 1.15}
}

func tickFormatter(format func(float64) string) gochart.ValueFormatter {
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return format(f)
		}
		return fmt.Sprint(v)
	}
}

func maxOf(values []float64) float64 {
	var m float64
	for _, v := range values {
		m = math.Max(m, v)
	}
	return m
}

func parseColor(hex string) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 && len(hex) != 3 {
		return gochart.ColorBlue
	}
	return drawing.ColorFromHex(hex)
}
