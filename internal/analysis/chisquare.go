package analysis

import (
	"fmt"

	"trialdash/domain/dataset"
	domain "trialdash/domain/stats"
	"trialdash/internal/errors"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquare runs Pearson's chi-square test of independence on the
// contingency table of two categorical columns. No continuity correction is
// applied, whatever the table size.
func ChiSquare(ds *dataset.Dataset, colA, colB string) (*domain.ChiSquareResult, error) {
	a, err := requireTyped(ds, "column_a", colA, dataset.TypeCategorical)
	if err != nil {
		return nil, err
	}
	b, err := requireTyped(ds, "column_b", colB, dataset.TypeCategorical)
	if err != nil {
		return nil, err
	}

	table := Crosstab(a, b)
	if len(table.RowLevels) < 2 || len(table.ColLevels) < 2 {
		return nil, errors.InsufficientCategories(fmt.Sprintf(
			"chi-square needs at least 2 categories per column, %q has %d and %q has %d",
			colA, len(table.RowLevels), colB, len(table.ColLevels)))
	}

	chi2, dof := pearsonChiSquare(table.Counts)
	p := clampProbability(distuv.ChiSquared{K: float64(dof)}.Survival(chi2))

	return &domain.ChiSquareResult{
		Chi2Statistic:    chi2,
		PValue:           p,
		DegreesOfFreedom: dof,
		Contingency:      table,
	}, nil
}

// Crosstab counts joint frequencies over rows where both columns are present
func Crosstab(a, b *dataset.Column) domain.ContingencyTable {
	rowSet := make(map[string]bool)
	colSet := make(map[string]bool)
	for i := 0; i < a.Len(); i++ {
		if a.IsMissing(i) || b.IsMissing(i) {
			continue
		}
		rowSet[a.Label(i)] = true
		colSet[b.Label(i)] = true
	}
	rows := orderedSubset(a.Levels(), rowSet)
	cols := orderedSubset(b.Levels(), colSet)

	rowIdx := indexOf(rows)
	colIdx := indexOf(cols)
	counts := make([][]int, len(rows))
	for i := range counts {
		counts[i] = make([]int, len(cols))
	}
	for i := 0; i < a.Len(); i++ {
		if a.IsMissing(i) || b.IsMissing(i) {
			continue
		}
		counts[rowIdx[a.Label(i)]][colIdx[b.Label(i)]]++
	}
	return domain.ContingencyTable{RowLevels: rows, ColLevels: cols, Counts: counts}
}

// pearsonChiSquare returns sum((O-E)^2/E) and (r-1)(c-1)
func pearsonChiSquare(counts [][]int) (float64, int) {
	r, c := len(counts), len(counts[0])
	rowTotals := make([]float64, r)
	colTotals := make([]float64, c)
	total := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := float64(counts[i][j])
			rowTotals[i] += v
			colTotals[j] += v
			total += v
		}
	}

	chi2 := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			expected := rowTotals[i] * colTotals[j] / total
			d := float64(counts[i][j]) - expected
			chi2 += d * d / expected
		}
	}
	return chi2, (r - 1) * (c - 1)
}

func orderedSubset(levels []string, keep map[string]bool) []string {
	out := make([]string, 0, len(keep))
	for _, l := range levels {
		if keep[l] {
			out = append(out, l)
		}
	}
	return out
}

func indexOf(levels []string) map[string]int {
	idx := make(map[string]int, len(levels))
	for i, l := range levels {
		idx[l] = i
	}
	return idx
}
