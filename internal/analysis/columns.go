package analysis

import (
	"fmt"

	"trialdash/domain/dataset"
	"trialdash/internal/errors"
)

// requireColumn resolves a selected column or names the request field at fault
func requireColumn(ds *dataset.Dataset, field, name string) (*dataset.Column, error) {
	if name == "" {
		return nil, errors.InvalidColumnSelection(field, "no column selected")
	}
	col, ok := ds.Column(name)
	if !ok {
		return nil, errors.InvalidColumnSelection(field, fmt.Sprintf("column %q not found", name))
	}
	return col, nil
}

func requireTyped(ds *dataset.Dataset, field, name string, want dataset.ColumnType) (*dataset.Column, error) {
	col, err := requireColumn(ds, field, name)
	if err != nil {
		return nil, err
	}
	if col.Type != want {
		return nil, errors.InvalidColumnSelection(field, fmt.Sprintf("column %q is %s, expected %s", name, col.Type, want))
	}
	return col, nil
}

// GroupValues returns the non-missing values of valueCol on rows whose
// groupCol label equals level.
func GroupValues(ds *dataset.Dataset, groupCol, valueCol, level string) ([]float64, error) {
	group, err := requireColumn(ds, "group_column", groupCol)
	if err != nil {
		return nil, err
	}
	value, err := requireTyped(ds, "value_column", valueCol, dataset.TypeNumeric)
	if err != nil {
		return nil, err
	}
	var out []float64
	for i := 0; i < group.Len(); i++ {
		if group.IsMissing(i) || value.IsMissing(i) {
			continue
		}
		if group.Label(i) == level {
			out = append(out, value.Numbers[i])
		}
	}
	return out, nil
}
