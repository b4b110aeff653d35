package dataset

import (
	"math"
	"sort"

	"trialdash/domain/dataset"
	"trialdash/internal/errors"

	"github.com/montanaflynn/stats"
)

// Summarize computes the post-upload overview record
func Summarize(ds *dataset.Dataset) (*dataset.Summary, error) {
	groups, ok := ds.Column(dataset.TreatmentGroupColumn)
	outcomes, ok2 := ds.Column(dataset.OutcomeColumn)
	if !ok || !ok2 {
		var missing []string
		if !ok {
			missing = append(missing, dataset.TreatmentGroupColumn)
		}
		if !ok2 {
			missing = append(missing, dataset.OutcomeColumn)
		}
		return nil, errors.MissingColumns(missing)
	}

	summary := &dataset.Summary{
		TotalPatients:        ds.Rows(),
		TreatmentGroupCounts: ValueCounts(groups),
		OutcomeCounts:        ValueCounts(outcomes),
		NumericSummaries:     make(map[string]dataset.NumericSummary),
	}

	for _, col := range ds.Columns {
		if col.Type != dataset.TypeNumeric {
			continue
		}
		values := col.NonMissing()
		if len(values) == 0 {
			continue
		}
		s, err := Describe(values)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to summarize %q", col.Name)
		}
		summary.NumericSummaries[col.Name] = s
	}
	return summary, nil
}

// ValueCounts is the frequency table of a column's non-missing labels
func ValueCounts(col *dataset.Column) map[string]int {
	counts := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		counts[col.Label(i)]++
	}
	return counts
}

// Describe computes count, mean, sample std, min, quartiles and max. A single
// value reports std 0.
func Describe(values []float64) (dataset.NumericSummary, error) {
	var s dataset.NumericSummary
	if len(values) == 0 {
		return s, stats.ErrEmptyInput
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return s, err
	}
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	std := 0.0
	if len(values) > 1 {
		if std, err = stats.StandardDeviationSample(values); err != nil {
			return s, err
		}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return dataset.NumericSummary{
		Count: len(values),
		Mean:  mean,
		Std:   std,
		Min:   min,
		Q25:   Quantile(sorted, 0.25),
		Q50:   Quantile(sorted, 0.50),
		Q75:   Quantile(sorted, 0.75),
		Max:   max,
	}, nil
}

// Quantile interpolates linearly between the closest ranks of an ascending
// slice: position p*(n-1). This is the convention describe-style summaries use.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if hi >= n {
		hi = n - 1
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Overview bundles schema, leading rows and summary for the upload preview
func Overview(ds *dataset.Dataset, summary *dataset.Summary, headRows int) *dataset.Overview {
	return &dataset.Overview{
		Name:    ds.Name,
		Rows:    ds.Rows(),
		Columns: ds.Schema(),
		Head:    ds.Head(headRows),
		Summary: summary,
	}
}
