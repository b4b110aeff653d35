package analysis

import (
	"fmt"
	"math"

	"trialdash/domain/dataset"
	domain "trialdash/domain/stats"
	"trialdash/internal/errors"

	"github.com/montanaflynn/stats"
)

// Pearson computes the correlation of x and y over rows where neither is
// missing. The result is clamped to [-1, 1].
func Pearson(x, y []float64) (float64, error) {
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return 0, errors.InsufficientSamples(fmt.Sprintf("correlation needs at least 2 complete rows, got %d", len(xs)))
	}
	if constant(xs) || constant(ys) {
		return 0, errors.ZeroVariance("correlation is undefined for a constant column")
	}

	r, err := stats.Pearson(xs, ys)
	if err != nil {
		return 0, errors.Wrap(err, "pearson correlation")
	}
	return math.Max(-1, math.Min(1, r)), nil
}

// CorrelationMatrix computes pairwise Pearson correlations of numeric columns.
// The diagonal is exactly 1.
func CorrelationMatrix(ds *dataset.Dataset, columns []string) (*domain.CorrelationMatrix, error) {
	if len(columns) == 0 {
		return nil, errors.InvalidColumnSelection("columns", "select at least one numeric column")
	}
	cols := make([]*dataset.Column, len(columns))
	for i, name := range columns {
		col, err := requireTyped(ds, "columns", name, dataset.TypeNumeric)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	if len(cols) == 1 {
		if v := cols[0].NonMissing(); len(v) < 2 || constant(v) {
			return nil, errors.ZeroVariance(fmt.Sprintf("correlation is undefined for column %q", cols[0].Name))
		}
	}

	values := make([][]float64, len(cols))
	for i := range values {
		values[i] = make([]float64, len(cols))
		values[i][i] = 1
	}
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			r, err := Pearson(cols[i].Numbers, cols[j].Numbers)
			if err != nil {
				return nil, errors.Wrapf(err, "correlation of %q and %q", cols[i].Name, cols[j].Name)
			}
			values[i][j] = r
			values[j][i] = r
		}
	}
	return &domain.CorrelationMatrix{Columns: append([]string(nil), columns...), Values: values}, nil
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
