// Package charts renders dashboard sections as SVG.
package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"superstore-dashboard/internal/format"
	"superstore-dashboard/internal/models"
)

const (
	Width  = 960
	Height = 400

	maxLabelRunes = 22
)

var (
	ErrUnknownChart = errors.New("unknown chart")
	ErrNoData       = errors.New("no data to chart")
)

var barColor = drawing.ColorFromHex("1E90FF")

// Kind names one chart slot of the dashboard.
type Kind string

const (
	KindTimeSeries Kind = "timeseries"
	KindRegions    Kind = "regions"
	KindStates     Kind = "states"
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
	KindSunburst   Kind = "sunburst"
)

var Kinds = []Kind{KindTimeSeries, KindRegions, KindStates, KindProducts, KindCategories, KindSunburst}

// ParseKind accepts a chart name with or without its ".svg" suffix.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.TrimSuffix(strings.ToLower(name), ".svg"))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChart, name)
}

// Title is the heading shown above the chart for kpi.
func (k Kind) Title(kpi models.KPI) string {
	switch k {
	case KindTimeSeries:
		return kpi.String() + " Over Time"
	case KindRegions:
		return kpi.String() + " by Region"
	case KindStates:
		return "Top 10 States by " + kpi.String()
	case KindProducts:
		return "Top 10 Products by " + kpi.String()
	case KindSunburst:
		return "Sales by Category and Sub-Category"
	default:
		return kpi.String() + " by Category"
	}
}

// Render draws the kind section of snap.
func Render(w io.Writer, kind Kind, snap *models.Snapshot) error {
	switch kind {
	case KindTimeSeries:
		return TimeSeries(w, kind.Title(snap.KPI), snap.TimeSeries, snap.KPI)
	case KindRegions:
		return Bars(w, kind.Title(snap.KPI), snap.Regions, snap.KPI)
	case KindStates:
		return Bars(w, kind.Title(snap.KPI), snap.States, snap.KPI)
	case KindProducts:
		return Bars(w, kind.Title(snap.KPI), snap.Products, snap.KPI)
	case KindCategories:
		return Bars(w, kind.Title(snap.KPI), snap.Categories, snap.KPI)
	case KindSunburst:
		return Ring(w, kind.Title(snap.KPI), snap.Sunburst)
	}
	return fmt.Errorf("%w: %q", ErrUnknownChart, kind)
}

// TimeSeries draws kpi over the points as a line.
func TimeSeries(w io.Writer, title string, points []models.TimePoint, kpi models.KPI) error {
	if len(points) == 0 {
		return ErrNoData
	}

	xs := make([]time.Time, 0, len(points)+1)
	ys := make([]float64, 0, len(points)+1)
	for _, p := range points {
		xs = append(xs, p.Date)
		ys = append(ys, kpi.Value(p.Measures()))
	}
	// A line needs two x values.
	if len(xs) == 1 {
		xs = append(xs, xs[0].AddDate(0, 0, 1))
		ys = append(ys, ys[0])
	}

	ch := chart.Chart{
		Title:      title,
		Width:      Width,
		Height:     Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Range:          valueRange(ys),
			ValueFormatter: axisFormatter(kpi),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    kpi.String(),
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: barColor,
					StrokeWidth: 2,
				},
			},
		},
	}
	return ch.Render(chart.SVG, w)
}

// Bars draws one bar per row in the order given.
func Bars(w io.Writer, title string, rows []models.GroupRow, kpi models.KPI) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	bars := make([]chart.Value, 0, len(rows))
	ys := make([]float64, 0, len(rows))
	for _, row := range rows {
		v := kpi.Value(row.Measures())
		ys = append(ys, v)
		bars = append(bars, chart.Value{
			Label: truncate(row.Key),
			Value: v,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		})
	}

	bc := chart.BarChart{
		Title:        title,
		Width:        Width,
		Height:       Height,
		BarWidth:     48,
		BarSpacing:   24,
		UseBaseValue: true,
		BaseValue:    0,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Bottom: 90}},
		XAxis:        chart.Style{TextRotationDegrees: 30, FontSize: 8},
		YAxis: chart.YAxis{
			Range:          valueRange(ys),
			ValueFormatter: axisFormatter(kpi),
		},
		Bars: bars,
	}
	return bc.Render(chart.SVG, w)
}

// Ring draws the sub-category leaves as slices sized by sales. Leaves keep
// their input order, so slices of one category sit together.
func Ring(w io.Writer, title string, nodes []models.SunburstNode) error {
	values := make([]chart.Value, 0, len(nodes))
	for _, n := range nodes {
		if n.Sales <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: truncate(n.Category + " / " + n.SubCategory),
			Value: n.Sales,
		})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	pc := chart.PieChart{
		Title:      title,
		Width:      Width,
		Height:     Height * 3 / 2,
		Background: chart.Style{Padding: chart.Box{Top: 40, Bottom: 20}},
		Values:     values,
	}
	return pc.Render(chart.SVG, w)
}

// valueRange spans every value and zero, and is never empty.
func valueRange(values []float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func axisFormatter(kpi models.KPI) chart.ValueFormatter {
	return func(v any) string {
		f, ok := v.(float64)
		if !ok {
			return fmt.Sprint(v)
		}
		switch kpi {
		case models.KPIMarginRate:
			return format.Percent(f)
		case models.KPIQuantity:
			return format.Number(f, 0)
		default:
			return "$" + format.Number(f, 0)
		}
	}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxLabelRunes {
		return s
	}
	return string(r[:maxLabelRunes-1]) + "…"
}
