package visualization

import (
	"fmt"
	"io"
	"time"

	"trialdash/domain/chart"
	"trialdash/internal/errors"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default PNG export size
const (
	DefaultWidth  = 1024
	DefaultHeight = 600
)

// RenderPNG draws bar, scatter and time-series specs. Box plots and heatmaps
// have no PNG export.
func RenderPNG(spec *chart.Spec, width, height int, w io.Writer) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	var err error
	switch spec.Kind {
	case chart.KindTreatmentOutcome:
		err = renderBars(spec, width, height, w)
	case chart.KindScatter:
		err = renderScatter(spec, width, height, w)
	case chart.KindTimeSeries:
		err = renderTimeSeries(spec, width, height, w)
	default:
		return errors.UnsupportedExport(string(spec.Kind))
	}
	if err != nil {
		return errors.Wrapf(err, "failed to render %s chart", spec.Kind)
	}
	return nil
}

// pointStyle draws markers only, no connecting line
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: 0,
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    4,
		DotColor:    col,
	}
}

func padding() gochart.Style {
	return gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}}
}

// renderBars flattens grouped bars into one bar per group and series
func renderBars(spec *chart.Spec, width, height int, w io.Writer) error {
	var bars []gochart.Value
	for si, s := range spec.Series {
		for i, x := range s.X {
			bars = append(bars, gochart.Value{
				Label: fmt.Sprintf("%v / %s", x, s.Name),
				Value: s.Y[i],
				Style: gochart.Style{FillColor: gochart.GetDefaultColor(si), StrokeColor: gochart.GetDefaultColor(si)},
			})
		}
	}
	if len(bars) == 0 {
		return fmt.Errorf("no bars to draw")
	}

	// share the canvas between bars, two thirds bar and one third gap
	slot := (width - 120) / len(bars)
	if slot < 3 {
		slot = 3
	}
	bc := gochart.BarChart{
		Title:      spec.Title,
		Background: padding(),
		Width:      width,
		Height:     height,
		BarWidth:   slot * 2 / 3,
		BarSpacing: slot - slot*2/3,
		YAxis:      gochart.YAxis{Name: spec.AxisLabels.Y},
		Bars:       bars,
	}
	return bc.Render(gochart.PNG, w)
}

func renderScatter(spec *chart.Spec, width, height int, w io.Writer) error {
	var series []gochart.Series
	for i, s := range spec.Series {
		if len(s.X) == 0 {
			continue
		}
		xs := make([]float64, len(s.X))
		for j, v := range s.X {
			xs[j] = v.(float64)
		}
		xs, ys := padPoints(xs, s.Y)
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(gochart.GetDefaultColor(i)),
		})
	}
	for i, fit := range spec.Trendlines {
		lo, hi := seriesRange(spec, fit.Series)
		series = append(series, gochart.ContinuousSeries{
			Name:    fit.Series + " (OLS)",
			XValues: []float64{lo, hi},
			YValues: []float64{fit.Intercept + fit.Slope*lo, fit.Intercept + fit.Slope*hi},
			Style:   gochart.Style{StrokeWidth: 2, StrokeColor: gochart.GetAlternateColor(i)},
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("no points to draw")
	}

	ch := gochart.Chart{
		Title:      spec.Title,
		Background: padding(),
		Width:      width,
		Height:     height,
		XAxis:      gochart.XAxis{Name: spec.AxisLabels.X},
		YAxis:      gochart.YAxis{Name: spec.AxisLabels.Y},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(gochart.PNG, w)
}

func renderTimeSeries(spec *chart.Spec, width, height int, w io.Writer) error {
	var series []gochart.Series
	for i, s := range spec.Series {
		if len(s.X) == 0 {
			continue
		}
		times := make([]time.Time, len(s.X))
		for j, v := range s.X {
			times[j] = v.(time.Time)
		}
		ys := s.Y
		if len(times) == 1 {
			// go-chart needs a non-zero x range
			times = []time.Time{times[0], times[0].Add(time.Second)}
			ys = []float64{ys[0], ys[0]}
		}
		series = append(series, gochart.TimeSeries{
			Name:    s.Name,
			XValues: times,
			YValues: ys,
			Style:   gochart.Style{StrokeWidth: 2, StrokeColor: gochart.GetDefaultColor(i)},
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("no points to draw")
	}

	ch := gochart.Chart{
		Title:      spec.Title,
		Background: padding(),
		Width:      width,
		Height:     height,
		XAxis:      gochart.XAxis{Name: spec.AxisLabels.X, ValueFormatter: gochart.TimeDateValueFormatter},
		YAxis:      gochart.YAxis{Name: spec.AxisLabels.Y},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(gochart.PNG, w)
}

// padPoints widens a single point into two so the x range is non-zero
func padPoints(xs, ys []float64) ([]float64, []float64) {
	if len(xs) != 1 {
		return xs, ys
	}
	return []float64{xs[0] - 0.5, xs[0] + 0.5}, []float64{ys[0], ys[0]}
}

func seriesRange(spec *chart.Spec, name string) (float64, float64) {
	for _, s := range spec.Series {
		if s.Name != name || len(s.X) == 0 {
			continue
		}
		lo, hi := s.X[0].(float64), s.X[0].(float64)
		for _, v := range s.X[1:] {
			f := v.(float64)
			if f < lo {
				lo = f
			}
			if f > hi {
				hi = f
			}
		}
		return lo, hi
	}
	return 0, 0
}
