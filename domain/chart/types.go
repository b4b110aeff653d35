package chart

import (
	"trialdash/domain/stats"
)

// Kind names a supported chart builder
type Kind string

const (
	KindTreatmentOutcome Kind = "treatment_outcome"
	KindBox              Kind = "box"
	KindScatter          Kind = "scatter"
	KindTimeSeries       Kind = "time_series"
	KindHeatmap          Kind = "heatmap"
)

// Kinds lists the chart builders in menu order
var Kinds = []Kind{KindTreatmentOutcome, KindBox, KindScatter, KindTimeSeries, KindHeatmap}

// Request selects a chart kind and the columns it plots. Which fields are
// read depends on Kind:
//
//	treatment_outcome:  none (treatment_group x outcome)
//	box:                ValueField, GroupField
//	scatter:            XField, YField, optional ColorField and Trendline
//	time_series:        XField (temporal), YField, optional GroupField
//	heatmap:            Columns (all numeric columns when empty)
type Request struct {
	Kind       Kind     `json:"kind"`
	XField     string   `json:"x_field,omitempty"`
	YField     string   `json:"y_field,omitempty"`
	ColorField string   `json:"color_field,omitempty"`
	GroupField string   `json:"group_field,omitempty"`
	ValueField string   `json:"value_field,omitempty"`
	Columns    []string `json:"columns,omitempty"`
	Trendline  bool     `json:"trendline,omitempty"`
}

// AxisLabels are the display labels of a chart
type AxisLabels struct {
	X      string `json:"x"`
	Y      string `json:"y"`
	Legend string `json:"legend,omitempty"`
}

// Series is one named trace. X holds category labels, numbers or RFC3339
// timestamps depending on the chart kind.
type Series struct {
	Name string        `json:"name"`
	X    []interface{} `json:"x"`
	Y    []float64     `json:"y"`
}

// Trendline is an ordinary least squares fit y = Intercept + Slope*x
type Trendline struct {
	Series    string  `json:"series"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// Spec is a declarative, renderer-agnostic chart description
type Spec struct {
	Kind       Kind                     `json:"kind"`
	Title      string                   `json:"title"`
	XField     string                   `json:"x_field,omitempty"`
	YField     string                   `json:"y_field,omitempty"`
	ColorField string                   `json:"color_field,omitempty"`
	AxisLabels AxisLabels               `json:"axis_labels"`
	BarMode    string                   `json:"bar_mode,omitempty"`
	Points     string                   `json:"points,omitempty"`
	Series     []Series                 `json:"series,omitempty"`
	Trendlines []Trendline              `json:"trendlines,omitempty"`
	Matrix     *stats.CorrelationMatrix `json:"matrix,omitempty"`
}
