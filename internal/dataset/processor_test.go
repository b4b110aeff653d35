package dataset

import (
	"math"
	"testing"
	"time"

	"trialdash/domain/dataset"
	"trialdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawTrial() *dataset.Dataset {
	nan := math.NaN()
	return dataset.New("raw", 4, []*dataset.Column{
		{Name: dataset.PatientIDColumn, Type: dataset.TypeNumeric, Numbers: []float64{1, 2, 3, 4}},
		{Name: dataset.TreatmentGroupColumn, Type: dataset.TypeCategorical, Text: []string{"A", "", "B", "B"}},
		{Name: dataset.OutcomeColumn, Type: dataset.TypeCategorical, Text: []string{"Yes", "No", "", "Yes"}},
		{Name: "score", Type: dataset.TypeNumeric, Numbers: []float64{10, nan, 20, 30}},
		{Name: "visit", Type: dataset.TypeTemporal, Text: []string{"2024-03-01", "03/02/2024", "", "2024-03-04T10:00:00+02:00"}},
	})
}

func TestPreprocessImputes(t *testing.T) {
	raw := rawTrial()
	out, err := Preprocess(raw)
	require.NoError(t, err)

	score, _ := out.Column("score")
	assert.Equal(t, []float64{10, 20, 20, 30}, score.Numbers)

	groups, _ := out.Column(dataset.TreatmentGroupColumn)
	assert.Equal(t, []string{"A", UnknownCategory, "B", "B"}, groups.Text)

	visit, _ := out.Column("visit")
	require.Len(t, visit.Times, 4)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), visit.Times[0])
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), visit.Times[1])
	assert.True(t, visit.IsMissing(2), "missing dates stay missing")
	assert.Equal(t, time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), visit.Times[3])
	assert.Equal(t, []string{"2024-03-01T00:00:00Z", "2024-03-02T00:00:00Z", "", "2024-03-04T08:00:00Z"}, visit.Text)

	assert.Equal(t, out.ColumnNames(), raw.ColumnNames())
	assert.Equal(t, raw.Rows(), out.Rows())
}

func TestPreprocessLeavesInputUntouched(t *testing.T) {
	raw := rawTrial()
	_, err := Preprocess(raw)
	require.NoError(t, err)

	score, _ := raw.Column("score")
	assert.True(t, math.IsNaN(score.Numbers[1]))
	groups, _ := raw.Column(dataset.TreatmentGroupColumn)
	assert.Equal(t, "", groups.Text[1])
	visit, _ := raw.Column("visit")
	assert.Nil(t, visit.Times)
}

func TestPreprocessIdempotent(t *testing.T) {
	once, err := Preprocess(rawTrial())
	require.NoError(t, err)
	twice, err := Preprocess(once)
	require.NoError(t, err)

	for i, col := range once.Columns {
		other := twice.Columns[i]
		assert.Equal(t, col.Numbers, other.Numbers, col.Name)
		assert.Equal(t, col.Text, other.Text, col.Name)
		assert.Equal(t, col.Times, other.Times, col.Name)
	}
}

func TestPreprocessKeepsSubSecondDates(t *testing.T) {
	ds := dataset.New("dates", 1, []*dataset.Column{
		{Name: "visit", Type: dataset.TypeTemporal, Text: []string{"2024-03-01T10:00:00.250+01:00"}},
	})
	once, err := Preprocess(ds)
	require.NoError(t, err)
	visit, _ := once.Column("visit")
	assert.Equal(t, "2024-03-01T09:00:00.25Z", visit.Text[0])

	twice, err := Preprocess(once)
	require.NoError(t, err)
	again, _ := twice.Column("visit")
	assert.True(t, visit.Times[0].Equal(again.Times[0]))
}

func TestPreprocessErrors(t *testing.T) {
	nan := math.NaN()

	allMissing := dataset.New("gaps", 2, []*dataset.Column{
		{Name: "score", Type: dataset.TypeNumeric, Numbers: []float64{nan, nan}},
	})
	_, err := Preprocess(allMissing)
	assert.Equal(t, errors.CodeAllMissingColumn, errors.GetCode(err))
	assert.Contains(t, errors.Message(err), "score")

	badDate := dataset.New("dates", 1, []*dataset.Column{
		{Name: "visit", Type: dataset.TypeTemporal, Text: []string{"next tuesday"}},
	})
	_, err = Preprocess(badDate)
	assert.Equal(t, errors.CodeDateParseError, errors.GetCode(err))
	assert.Contains(t, errors.Message(err), "next tuesday")
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024/01/15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15 08:30:00", time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)},
		{"15-Jan-2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{" Jan 15, 2024 ", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.raw)
		require.True(t, ok, tt.raw)
		assert.True(t, tt.want.Equal(got), "%s parsed as %s", tt.raw, got)
	}

	_, ok := ParseDate("2024-13-45")
	assert.False(t, ok)
}
