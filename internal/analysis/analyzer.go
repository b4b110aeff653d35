// Package analysis implements the fixed catalog of statistical tests run
// against a held trial dataset. Every operation is pure and recomputed per
// call.
package analysis

import (
	"fmt"

	"trialdash/domain/dataset"
	domain "trialdash/domain/stats"
	"trialdash/internal/errors"
)

// DefaultPCAComponents is used when a PCA request leaves Components unset
const DefaultPCAComponents = 3

// Run is the single dispatch point of the analysis catalog
func Run(ds *dataset.Dataset, req domain.Request) (*domain.Result, error) {
	if ds == nil {
		return nil, errors.NoDataset()
	}

	var (
		metrics interface{}
		err     error
	)
	switch req.Kind {
	case domain.KindBasicStats:
		metrics, err = runBasicStats(ds, req)
	case domain.KindTTest:
		metrics, err = runTwoSample(ds, req, func(a, b []float64) (interface{}, error) { return TTest(a, b) })
	case domain.KindEffectSize:
		metrics, err = runTwoSample(ds, req, func(a, b []float64) (interface{}, error) { return EffectSize(a, b) })
	case domain.KindANOVA:
		metrics, err = ANOVA(ds, req.GroupColumn, req.ValueColumn)
	case domain.KindChiSquare:
		metrics, err = runChiSquare(ds, req)
	case domain.KindCorrelation:
		metrics, err = CorrelationMatrix(ds, req.Columns)
	case domain.KindPCA:
		k := req.Components
		if k == 0 {
			k = DefaultPCAComponents
			if len(req.Columns) < k {
				k = len(req.Columns)
			}
		}
		metrics, err = PCA(ds, req.Columns, k)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown analysis kind %q", req.Kind))
	}
	if err != nil {
		return nil, err
	}
	return &domain.Result{Kind: req.Kind, Metrics: metrics}, nil
}

func runBasicStats(ds *dataset.Dataset, req domain.Request) (interface{}, error) {
	col, err := requireTyped(ds, "column", req.Column, dataset.TypeNumeric)
	if err != nil {
		return nil, err
	}
	out, err := BasicStats(col.Numbers)
	if errors.GetCode(err) == errors.CodeEmptyColumn {
		return nil, errors.EmptyColumn(col.Name)
	}
	return out, err
}

// runTwoSample splits the value column by the two selected group levels
func runTwoSample(ds *dataset.Dataset, req domain.Request, test func(a, b []float64) (interface{}, error)) (interface{}, error) {
	if req.GroupA == "" {
		return nil, errors.InvalidColumnSelection("group_a", "no group level selected")
	}
	if req.GroupB == "" {
		return nil, errors.InvalidColumnSelection("group_b", "no group level selected")
	}
	if req.GroupA == req.GroupB {
		return nil, errors.InvalidColumnSelection("group_b", "must differ from group_a")
	}

	a, err := GroupValues(ds, req.GroupColumn, req.ValueColumn, req.GroupA)
	if err != nil {
		return nil, err
	}
	b, err := GroupValues(ds, req.GroupColumn, req.ValueColumn, req.GroupB)
	if err != nil {
		return nil, err
	}
	return test(a, b)
}

func runChiSquare(ds *dataset.Dataset, req domain.Request) (interface{}, error) {
	if req.ColumnA != "" && req.ColumnA == req.ColumnB {
		return nil, errors.InvalidColumnSelection("column_b", "must differ from column_a")
	}
	return ChiSquare(ds, req.ColumnA, req.ColumnB)
}
