// Package visualization maps chart requests over a held dataset to
// declarative chart specs, and exports a subset of them as PNG.
package visualization

import (
	"fmt"
	"sort"
	"time"

	"trialdash/domain/chart"
	"trialdash/domain/dataset"
	"trialdash/internal/analysis"
	procdata "trialdash/internal/dataset"
	"trialdash/internal/errors"

	"gonum.org/v1/gonum/stat"
)

// Build dispatches a chart request to its builder
func Build(ds *dataset.Dataset, req chart.Request) (*chart.Spec, error) {
	if ds == nil {
		return nil, errors.NoDataset()
	}
	switch req.Kind {
	case chart.KindTreatmentOutcome:
		return TreatmentOutcome(ds)
	case chart.KindBox:
		return Box(ds, req.ValueField, req.GroupField)
	case chart.KindScatter:
		return Scatter(ds, req.XField, req.YField, req.ColorField, req.Trendline)
	case chart.KindTimeSeries:
		return TimeSeries(ds, req.XField, req.YField, req.GroupField)
	case chart.KindHeatmap:
		return Heatmap(ds, req.Columns)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown chart kind %q", req.Kind))
	}
}

// TreatmentOutcome counts patients per treatment group and outcome as grouped
// bars: one series per outcome level over the treatment group levels.
func TreatmentOutcome(ds *dataset.Dataset) (*chart.Spec, error) {
	groups, err := column(ds, "treatment_group", dataset.TreatmentGroupColumn)
	if err != nil {
		return nil, err
	}
	outcomes, err := column(ds, "outcome", dataset.OutcomeColumn)
	if err != nil {
		return nil, err
	}

	table := analysis.Crosstab(groups, outcomes)
	series := make([]chart.Series, len(table.ColLevels))
	for j, outcome := range table.ColLevels {
		s := chart.Series{Name: outcome}
		for i, group := range table.RowLevels {
			s.X = append(s.X, group)
			s.Y = append(s.Y, float64(table.Counts[i][j]))
		}
		series[j] = s
	}

	return &chart.Spec{
		Kind:       chart.KindTreatmentOutcome,
		Title:      "Treatment Outcomes by Group",
		XField:     dataset.TreatmentGroupColumn,
		YField:     "count",
		ColorField: dataset.OutcomeColumn,
		AxisLabels: chart.AxisLabels{X: "Treatment Group", Y: "Number of Patients", Legend: "Outcome"},
		BarMode:    "group",
		Series:     series,
	}, nil
}

// Box distributes a numeric column over the levels of a grouping column with
// every point overlaid.
func Box(ds *dataset.Dataset, valueField, groupField string) (*chart.Spec, error) {
	value, err := typed(ds, "value_field", valueField, dataset.TypeNumeric)
	if err != nil {
		return nil, err
	}
	group, err := column(ds, "group_field", groupField)
	if err != nil {
		return nil, err
	}
	if group.Type == dataset.TypeTemporal {
		return nil, errors.InvalidColumnSelection("group_field", fmt.Sprintf("column %q is temporal", groupField))
	}

	var series []chart.Series
	for _, level := range group.Levels() {
		s := chart.Series{Name: level}
		for i := 0; i < group.Len(); i++ {
			if group.IsMissing(i) || value.IsMissing(i) || group.Label(i) != level {
				continue
			}
			s.X = append(s.X, level)
			s.Y = append(s.Y, value.Numbers[i])
		}
		series = append(series, s)
	}

	return &chart.Spec{
		Kind:       chart.KindBox,
		Title:      fmt.Sprintf("Distribution of %s by %s", valueField, groupField),
		XField:     groupField,
		YField:     valueField,
		AxisLabels: chart.AxisLabels{X: groupField, Y: valueField},
		Points:     "all",
		Series:     series,
	}, nil
}

// Scatter plots two numeric columns, one series per color level when a color
// column is given. With trendline set, each series with a non-degenerate x
// range gets an OLS fit.
func Scatter(ds *dataset.Dataset, xField, yField, colorField string, trendline bool) (*chart.Spec, error) {
	x, err := typed(ds, "x_field", xField, dataset.TypeNumeric)
	if err != nil {
		return nil, err
	}
	y, err := typed(ds, "y_field", yField, dataset.TypeNumeric)
	if err != nil {
		return nil, err
	}
	if xField == yField {
		return nil, errors.InvalidColumnSelection("y_field", "must differ from x_field")
	}
	var color *dataset.Column
	if colorField != "" {
		if color, err = column(ds, "color_field", colorField); err != nil {
			return nil, err
		}
	}

	byName := make(map[string]*chart.Series)
	var names []string
	for i := 0; i < x.Len(); i++ {
		if x.IsMissing(i) || y.IsMissing(i) {
			continue
		}
		name := yField
		if color != nil {
			if color.IsMissing(i) {
				continue
			}
			name = color.Label(i)
		}
		s, ok := byName[name]
		if !ok {
			s = &chart.Series{Name: name}
			byName[name] = s
			names = append(names, name)
		}
		s.X = append(s.X, x.Numbers[i])
		s.Y = append(s.Y, y.Numbers[i])
	}
	if color != nil {
		names = orderLike(color.Levels(), names)
	}

	spec := &chart.Spec{
		Kind:       chart.KindScatter,
		Title:      fmt.Sprintf("%s vs %s", yField, xField),
		XField:     xField,
		YField:     yField,
		ColorField: colorField,
		AxisLabels: chart.AxisLabels{X: xField, Y: yField, Legend: colorField},
	}
	for _, name := range names {
		s := byName[name]
		spec.Series = append(spec.Series, *s)
		if !trendline {
			continue
		}
		if fit, ok := fitLine(s); ok {
			spec.Trendlines = append(spec.Trendlines, fit)
		}
	}
	return spec, nil
}

// fitLine regresses Y on X. A series with fewer than two points or a constant
// x has no fit.
func fitLine(s *chart.Series) (chart.Trendline, bool) {
	xs := make([]float64, len(s.X))
	for i, v := range s.X {
		xs[i] = v.(float64)
	}
	if len(xs) < 2 || !varies(xs) {
		return chart.Trendline{}, false
	}
	alpha, beta := stat.LinearRegression(xs, s.Y, nil, false)
	r2 := 1.0
	if varies(s.Y) {
		r2 = stat.RSquared(xs, s.Y, nil, alpha, beta)
	}
	return chart.Trendline{Series: s.Name, Slope: beta, Intercept: alpha, RSquared: r2}, true
}

type timedPoint struct {
	at    time.Time
	value float64
}

// TimeSeries plots a numeric column against a temporal one, one line per
// group level when a group column is given. Points are sorted by time.
func TimeSeries(ds *dataset.Dataset, timeField, valueField, groupField string) (*chart.Spec, error) {
	when, err := typed(ds, "x_field", timeField, dataset.TypeTemporal)
	if err != nil {
		return nil, err
	}
	value, err := typed(ds, "y_field", valueField, dataset.TypeNumeric)
	if err != nil {
		return nil, err
	}
	var group *dataset.Column
	if groupField != "" {
		if group, err = typed(ds, "group_field", groupField, dataset.TypeCategorical); err != nil {
			return nil, err
		}
	}

	points := make(map[string][]timedPoint)
	var names []string
	for i := 0; i < when.Len(); i++ {
		if when.IsMissing(i) || value.IsMissing(i) {
			continue
		}
		at, err := instant(when, i)
		if err != nil {
			return nil, err
		}
		name := valueField
		if group != nil {
			if group.IsMissing(i) {
				continue
			}
			name = group.Label(i)
		}
		if _, ok := points[name]; !ok {
			names = append(names, name)
		}
		points[name] = append(points[name], timedPoint{at: at, value: value.Numbers[i]})
	}
	if group != nil {
		names = orderLike(group.Levels(), names)
	}

	spec := &chart.Spec{
		Kind:       chart.KindTimeSeries,
		Title:      fmt.Sprintf("%s Over Time", valueField),
		XField:     timeField,
		YField:     valueField,
		ColorField: groupField,
		AxisLabels: chart.AxisLabels{X: "Time", Y: valueField, Legend: groupField},
	}
	for _, name := range names {
		ps := points[name]
		sort.SliceStable(ps, func(a, b int) bool { return ps[a].at.Before(ps[b].at) })
		s := chart.Series{Name: name}
		for _, p := range ps {
			s.X = append(s.X, p.at)
			s.Y = append(s.Y, p.value)
		}
		spec.Series = append(spec.Series, s)
	}
	return spec, nil
}

// instant reads row i of a temporal column, parsing the raw text when the
// column has not been normalized yet.
func instant(col *dataset.Column, i int) (time.Time, error) {
	if col.Times != nil {
		return col.Times[i], nil
	}
	t, ok := procdata.ParseDate(col.Text[i])
	if !ok {
		return time.Time{}, errors.DateParseError(col.Name, col.Text[i])
	}
	return t, nil
}

// Heatmap renders the Pearson correlation matrix of the selected numeric
// columns, or of every numeric column when none are selected.
func Heatmap(ds *dataset.Dataset, columns []string) (*chart.Spec, error) {
	if len(columns) == 0 {
		columns = ds.ColumnsOfType(dataset.TypeNumeric)
	}
	matrix, err := analysis.CorrelationMatrix(ds, columns)
	if err != nil {
		return nil, err
	}
	return &chart.Spec{
		Kind:       chart.KindHeatmap,
		Title:      "Correlation Heatmap",
		AxisLabels: chart.AxisLabels{X: "Variables", Y: "Variables"},
		Matrix:     matrix,
	}, nil
}

func column(ds *dataset.Dataset, field, name string) (*dataset.Column, error) {
	if name == "" {
		return nil, errors.InvalidColumnSelection(field, "no column selected")
	}
	col, ok := ds.Column(name)
	if !ok {
		return nil, errors.InvalidColumnSelection(field, fmt.Sprintf("column %q not found", name))
	}
	return col, nil
}

func typed(ds *dataset.Dataset, field, name string, want dataset.ColumnType) (*dataset.Column, error) {
	col, err := column(ds, field, name)
	if err != nil {
		return nil, err
	}
	if col.Type != want {
		return nil, errors.InvalidColumnSelection(field, fmt.Sprintf("column %q is %s, expected %s", name, col.Type, want))
	}
	return col, nil
}

// orderLike sorts names by their position in levels
func orderLike(levels, names []string) []string {
	rank := make(map[string]int, len(levels))
	for i, l := range levels {
		rank[l] = i
	}
	sort.SliceStable(names, func(a, b int) bool { return rank[names[a]] < rank[names[b]] })
	return names
}

func varies(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return true
		}
	}
	return false
}
