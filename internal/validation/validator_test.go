package validation

import (
	"math"
	"testing"

	"trialdash/domain/dataset"
	"trialdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(name string, values ...string) *dataset.Column {
	return &dataset.Column{Name: name, Type: dataset.TypeCategorical, Text: values}
}

func ids(values ...float64) *dataset.Column {
	return &dataset.Column{Name: dataset.PatientIDColumn, Type: dataset.TypeNumeric, Numbers: values}
}

func TestValidateSuccess(t *testing.T) {
	ds := dataset.New("ok", 2, []*dataset.Column{
		ids(1, 2),
		text(dataset.TreatmentGroupColumn, "A", "B"),
		text(dataset.OutcomeColumn, "Yes", "No"),
	})
	ok, message := Validate(ds)
	assert.True(t, ok)
	assert.Equal(t, SuccessMessage, message)
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name    string
		ds      *dataset.Dataset
		code    string
		message string
	}{
		{
			name:    "nil",
			ds:      nil,
			code:    errors.CodeEmptyDataset,
			message: "Dataset is empty",
		},
		{
			name:    "no rows",
			ds:      dataset.New("empty", 0, []*dataset.Column{ids(), text(dataset.TreatmentGroupColumn), text(dataset.OutcomeColumn)}),
			code:    errors.CodeEmptyDataset,
			message: "Dataset is empty",
		},
		{
			name:    "missing columns listed in required order",
			ds:      dataset.New("partial", 1, []*dataset.Column{text("site", "X")}),
			code:    errors.CodeMissingColumns,
			message: "Missing required columns: patient_id, treatment_group, outcome",
		},
		{
			name: "duplicate ids",
			ds: dataset.New("dup", 2, []*dataset.Column{
				ids(7, 7),
				text(dataset.TreatmentGroupColumn, "A", "B"),
				text(dataset.OutcomeColumn, "Yes", "No"),
			}),
			code:    errors.CodeDuplicateKey,
			message: "Duplicate patient IDs found",
		},
		{
			name: "two missing ids collide",
			ds: dataset.New("nan", 2, []*dataset.Column{
				ids(math.NaN(), math.NaN()),
				text(dataset.TreatmentGroupColumn, "A", "B"),
				text(dataset.OutcomeColumn, "Yes", "No"),
			}),
			code:    errors.CodeDuplicateKey,
			message: "Duplicate patient IDs found",
		},
		{
			name: "empty dataset wins over missing columns",
			ds:   dataset.New("both", 0, []*dataset.Column{text("site")}),
			code: errors.CodeEmptyDataset,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.ds)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
			assert.True(t, errors.IsInputError(err))

			ok, message := Validate(tt.ds)
			assert.False(t, ok)
			if tt.message != "" {
				assert.Equal(t, tt.message, message)
			}
		})
	}
}

func TestCategoricalIDs(t *testing.T) {
	ds := dataset.New("text ids", 2, []*dataset.Column{
		text(dataset.PatientIDColumn, "P-1", "P-2"),
		text(dataset.TreatmentGroupColumn, "A", "B"),
		text(dataset.OutcomeColumn, "Yes", "No"),
	})
	assert.NoError(t, Check(ds))
}
