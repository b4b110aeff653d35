package tabular

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"trialdash/domain/dataset"
	"trialdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSVInfersTypes(t *testing.T) {
	input := "patient_id,treatment_group,outcome,age,visit\n" +
		"1,Drug,Improved,54,2024-01-02\n" +
		"2,Placebo,NA,,2024-01-09\n" +
		"3,Drug,Stable,61,\n"

	opts := DefaultReadOptions()
	opts.Name = "trial.csv"
	opts.DateColumns = []string{"visit"}
	ds, err := ReadCSV(strings.NewReader(input), opts)
	require.NoError(t, err)

	assert.Equal(t, "trial.csv", ds.Name)
	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, []string{"patient_id", "treatment_group", "outcome", "age", "visit"}, ds.ColumnNames())

	types := map[string]dataset.ColumnType{}
	for _, info := range ds.Schema() {
		types[info.Name] = info.Type
	}
	assert.Equal(t, dataset.TypeNumeric, types["patient_id"])
	assert.Equal(t, dataset.TypeCategorical, types["treatment_group"])
	assert.Equal(t, dataset.TypeNumeric, types["age"])
	assert.Equal(t, dataset.TypeTemporal, types["visit"])

	outcome, _ := ds.Column("outcome")
	assert.True(t, outcome.IsMissing(1), "NA reads as missing")
	age, _ := ds.Column("age")
	assert.True(t, math.IsNaN(age.Numbers[1]))
	assert.Equal(t, 1, age.MissingCount())
}

func TestReadCSVMixedColumnStaysCategorical(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("patient_id,dose\n1,10\n2,high\n"), DefaultReadOptions())
	require.NoError(t, err)
	dose, _ := ds.Column("dose")
	assert.Equal(t, dataset.TypeCategorical, dose.Type)
	assert.Equal(t, []string{"10", "high"}, dose.Text)
}

func TestReadCSVHeaderCleanup(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("\ufeffpatient_id,score,score,\n1,2,3,4\n"), DefaultReadOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"patient_id", "score", "score.1", "Unnamed: 3"}, ds.ColumnNames())
}

func TestReadCSVShortRowsPadded(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("patient_id,treatment_group,outcome\n1,A\n"), DefaultReadOptions())
	require.NoError(t, err)
	outcome, _ := ds.Column("outcome")
	assert.True(t, outcome.IsMissing(0))
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  ReadOptions
		code  string
	}{
		{"empty", "", DefaultReadOptions(), errors.CodeParseError},
		{"long row", "a,b\n1,2,3\n", DefaultReadOptions(), errors.CodeParseError},
		{"bad quote", "a,b\n\"1,2\n", DefaultReadOptions(), errors.CodeParseError},
		{"unknown date column", "a,b\n1,2\n", ReadOptions{DateColumns: []string{"when"}}, errors.CodeInvalidColumnSelection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), tt.opts)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestReadCSVCustomMissingTokens(t *testing.T) {
	opts := ReadOptions{MissingTokens: []string{"-"}}
	ds, err := ReadCSV(strings.NewReader("patient_id,site\n1,NA\n2,-\n"), opts)
	require.NoError(t, err)
	site, _ := ds.Column("site")
	assert.False(t, site.IsMissing(0), "NA is a value once tokens are overridden")
	assert.True(t, site.IsMissing(1))
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"patient_id", "treatment_group", "outcome", "score"},
		{1, "Drug", "Improved", 12.5},
		{2, "Placebo", "Stable", 9},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := ReadXLSX(bytes.NewReader(buf.Bytes()), ReadOptions{Name: "trial.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Rows())
	score, _ := ds.Column("score")
	assert.Equal(t, dataset.TypeNumeric, score.Type)
	assert.Equal(t, []float64{12.5, 9}, score.Numbers)

	_, err = ReadXLSX(bytes.NewReader(buf.Bytes()), ReadOptions{Sheet: "Missing"})
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
}

func TestReadXLSXRejectsGarbage(t *testing.T) {
	_, err := ReadXLSX(strings.NewReader("not a workbook"), DefaultReadOptions())
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsSpreadsheet("Trial.XLSX"))
	assert.False(t, IsSpreadsheet("trial.csv"))
	assert.Equal(t, []string{"visit", "enrolled"}, ParseDateColumns(" visit, ,enrolled "))
	assert.Nil(t, ParseDateColumns(""))
}
