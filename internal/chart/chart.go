// Package chart draws dashboard chart models as PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"rms-dashboard-go/internal/types"
)

var ErrNoData = errors.New("chart has no data")

// Renderer draws one chart model.
type Renderer interface {
	Render(w io.Writer, m types.ChartModel) error
}

// palette follows the dashboard's slice and bar colors in order.
var palette = []string{
	"ff6384", "36a2eb", "ffce56", "4bc0c0", "9966ff",
	"ff9f40", "c7c7c7", "5366ff", "ff63ff", "63ff84",
}

func colorAt(i int) drawing.Color {
	return drawing.ColorFromHex(palette[i%len(palette)])
}

// PNGRenderer renders with go-chart. Zero sizes fall back to 1024x640.
type PNGRenderer struct {
	Width  int
	Height int
}

func (p PNGRenderer) size() (int, int) {
	w, h := p.Width, p.Height
	if w <= 0 {
		w = 1024
	}
	if h <= 0 {
		h = 640
	}
	return w, h
}

func (p PNGRenderer) Render(w io.Writer, m types.ChartModel) error {
	values := valuesOf(m)
	if len(values) == 0 {
		return fmt.Errorf("%s: %w", m.ID, ErrNoData)
	}
	switch m.Kind {
	case types.ChartPie:
		return p.pie(w, m.Title, values)
	case types.ChartBar:
		return p.bar(w, m.Title, values)
	}
	return fmt.Errorf("unknown chart kind %q", m.Kind)
}

// Bytes renders m into memory.
func Bytes(r Renderer, m types.ChartModel) ([]byte, error) {
	buffer := bytes.NewBuffer([]byte{})
	if err := r.Render(buffer, m); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// valuesOf keeps positive points; go-chart cannot scale an all-zero series.
func valuesOf(m types.ChartModel) []gochart.Value {
	var out []gochart.Value
	for i, pt := range m.Points {
		if pt.Value <= 0 {
			continue
		}
		label := fmt.Sprintf("%s: %d", pt.Label, pt.Value)
		if m.Kind == types.ChartPie {
			label = fmt.Sprintf("%s: %d (%.1f%%)", pt.Label, pt.Value, pt.Percent)
		}
		out = append(out, gochart.Value{
			Value: float64(pt.Value),
			Label: label,
			Style: gochart.Style{
				FillColor:   colorAt(i),
				StrokeColor: colorAt(i),
				StrokeWidth: 1,
			},
		})
	}
	return out
}

func (p PNGRenderer) pie(w io.Writer, title string, values []gochart.Value) error {
	width, height := p.size()
	graph := gochart.PieChart{
		Title:  title,
		Width:  width,
		Height: height,
		Values: values,
		Background: gochart.Style{
			FillColor: drawing.ColorWhite,
		},
	}
	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("error rendering pie chart: %v", err)
	}
	return nil
}

func (p PNGRenderer) bar(w io.Writer, title string, values []gochart.Value) error {
	width, height := p.size()
	graph := gochart.BarChart{
		Title: title,
		Background: gochart.Style{
			FillColor:   drawing.ColorWhite,
			StrokeColor: drawing.ColorFromHex("efefef"),
			StrokeWidth: 1,
			Padding: gochart.Box{
				Top:    50,
				Bottom: bottomPadding(values),
			},
		},
		Width:    width,
		Height:   height,
		BarWidth: 40,
		Bars:     values,
		YAxis: gochart.YAxis{
			Name: "Sites",
			// a fixed range keeps single-bar and equal-height charts renderable
			Range: &gochart.ContinuousRange{
				Min: 0,
				Max: maxValue(values),
			},
		},
		XAxis: gochart.Style{
			TextRotationDegrees: 45,
		},
	}
	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("error rendering bar chart: %v", err)
	}
	return nil
}

func maxValue(values []gochart.Value) float64 {
	max := 0.0
	for _, v := range values {
		if v.Value > max {
			max = v.Value
		}
	}
	return max
}

func bottomPadding(values []gochart.Value) int {
	longest := 0
	for _, v := range values {
		if len(v.Label) > longest {
			longest = len(v.Label)
		}
	}
	return longest * 6
}
