// Package validation checks uploaded trial datasets against structural and
// domain constraints before any analysis runs.
package validation

import (
	"math"
	"strconv"

	"trialdash/domain/dataset"
	"trialdash/internal/errors"
)

// SuccessMessage is returned when every check passes
const SuccessMessage = "Data validation successful"

// Validate runs the checks in order and reports only the first failure
func Validate(ds *dataset.Dataset) (bool, string) {
	if err := Check(ds); err != nil {
		return false, errors.Message(err)
	}
	return true, SuccessMessage
}

// Check is Validate returning the typed error. Order: empty dataset, missing
// required columns, duplicate patient IDs.
func Check(ds *dataset.Dataset) error {
	if ds == nil || ds.Rows() == 0 {
		return errors.EmptyDataset()
	}

	var missing []string
	for _, name := range dataset.RequiredColumns {
		if !ds.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.MissingColumns(missing)
	}

	ids, _ := ds.Column(dataset.PatientIDColumn)
	if hasDuplicates(ids) {
		return errors.DuplicateKey()
	}
	return nil
}

// hasDuplicates compares values by identity; two missing IDs count as equal.
func hasDuplicates(col *dataset.Column) bool {
	seen := make(map[string]bool, col.Len())
	for i := 0; i < col.Len(); i++ {
		key := idKey(col, i)
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}

func idKey(col *dataset.Column, i int) string {
	if col.Type == dataset.TypeNumeric {
		v := col.Numbers[i]
		if math.IsNaN(v) {
			return "\x00missing"
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if col.Text[i] == "" {
		return "\x00missing"
	}
	return col.Text[i]
}
