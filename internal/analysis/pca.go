package analysis

import (
	"fmt"
	"math"

	"trialdash/domain/dataset"
	domain "trialdash/domain/stats"
	"trialdash/internal/errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA standardizes the selected numeric columns (population std, constant
// columns left unscaled) and projects them onto their first k principal
// components. Rows with a missing value in any selected column are dropped.
func PCA(ds *dataset.Dataset, columns []string, k int) (*domain.PCAResult, error) {
	if len(columns) < 2 {
		return nil, errors.InvalidColumnSelection("columns", "PCA needs at least 2 numeric columns")
	}
	cols := make([]*dataset.Column, len(columns))
	for i, name := range columns {
		col, err := requireTyped(ds, "columns", name, dataset.TypeNumeric)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	if k < 2 || k > len(columns) {
		return nil, errors.InvalidColumnSelection("components", fmt.Sprintf("must be between 2 and %d, got %d", len(columns), k))
	}

	rows := completeRows(cols)
	if len(rows) < k {
		return nil, errors.InsufficientSamples(fmt.Sprintf("PCA with %d components needs at least %d complete rows, got %d", k, k, len(rows)))
	}

	p := len(cols)
	x := mat.NewDense(len(rows), p, nil)
	for j, col := range cols {
		values := make([]float64, len(rows))
		for i, r := range rows {
			values[i] = col.Numbers[r]
		}
		mean, variance := stat.PopMeanVariance(values, nil)
		scale := math.Sqrt(variance)
		if scale == 0 {
			scale = 1
		}
		for i, v := range values {
			x.Set(i, j, (v-mean)/scale)
		}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, errors.New(errors.CodeInternalError, "principal component decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	total := 0.0
	for _, v := range vars {
		total += v
	}
	if total == 0 {
		return nil, errors.ZeroVariance("PCA is undefined: every selected column is constant")
	}

	explained := make([]float64, k)
	cumulative := make([]float64, k)
	running := 0.0
	for i := 0; i < k; i++ {
		explained[i] = vars[i] / total
		running += explained[i]
		cumulative[i] = running
	}

	loadings := make([][]float64, p)
	for i := range loadings {
		loadings[i] = make([]float64, k)
		for j := 0; j < k; j++ {
			loadings[i][j] = vecs.At(i, j)
		}
	}

	var projected mat.Dense
	projected.Mul(x, vecs.Slice(0, p, 0, k))
	scores := make([][]float64, len(rows))
	for i := range scores {
		scores[i] = mat.Row(nil, i, &projected)
	}

	return &domain.PCAResult{
		Columns:            append([]string(nil), columns...),
		Components:         k,
		ExplainedVariance:  explained,
		CumulativeVariance: cumulative,
		Loadings:           loadings,
		Scores:             scores,
	}, nil
}

func completeRows(cols []*dataset.Column) []int {
	var rows []int
	n := cols[0].Len()
	for i := 0; i < n; i++ {
		ok := true
		for _, c := range cols {
			if c.IsMissing(i) {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, i)
		}
	}
	return rows
}
