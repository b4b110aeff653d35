package dataset

import (
	"testing"

	"trialdash/domain/dataset"
	"trialdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	clean, err := Preprocess(rawTrial())
	require.NoError(t, err)

	summary, err := Summarize(clean)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalPatients)
	assert.Equal(t, map[string]int{"A": 1, "B": 2, UnknownCategory: 1}, summary.TreatmentGroupCounts)
	assert.Equal(t, map[string]int{"Yes": 2, "No": 1, UnknownCategory: 1}, summary.OutcomeCounts)

	require.Contains(t, summary.NumericSummaries, "score")
	require.Contains(t, summary.NumericSummaries, dataset.PatientIDColumn)
	assert.NotContains(t, summary.NumericSummaries, "visit")

	score := summary.NumericSummaries["score"]
	assert.Equal(t, 4, score.Count)
	assert.InDelta(t, 20, score.Mean, 1e-12)
	assert.Equal(t, 10.0, score.Min)
	assert.Equal(t, 17.5, score.Q25)
	assert.Equal(t, 20.0, score.Q50)
	assert.Equal(t, 22.5, score.Q75)
	assert.Equal(t, 30.0, score.Max)
	assert.InDelta(t, 8.1650, score.Std, 1e-4)
}

func TestSummarizeNeedsGroupAndOutcome(t *testing.T) {
	ds := dataset.New("bare", 1, []*dataset.Column{
		{Name: dataset.PatientIDColumn, Type: dataset.TypeNumeric, Numbers: []float64{1}},
	})
	_, err := Summarize(ds)
	assert.Equal(t, errors.CodeMissingColumns, errors.GetCode(err))
	assert.Equal(t, "Missing required columns: treatment_group, outcome", errors.Message(err))
}

func TestDescribe(t *testing.T) {
	s, err := Describe([]float64{7})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Std)
	assert.Equal(t, 7.0, s.Q25)
	assert.Equal(t, 7.0, s.Q75)

	_, err = Describe(nil)
	assert.Error(t, err)
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 1.0, Quantile(sorted, 0))
	assert.Equal(t, 2.0, Quantile(sorted, 0.25))
	assert.Equal(t, 5.0, Quantile(sorted, 1))
	assert.Equal(t, 1.5, Quantile([]float64{1, 2}, 0.5))
}

func TestOverview(t *testing.T) {
	clean, err := Preprocess(rawTrial())
	require.NoError(t, err)
	summary, err := Summarize(clean)
	require.NoError(t, err)

	ov := Overview(clean, summary, 2)
	assert.Equal(t, "raw", ov.Name)
	assert.Equal(t, 4, ov.Rows)
	assert.Len(t, ov.Head, 2)
	assert.Equal(t, 1.0, ov.Head[0][dataset.PatientIDColumn])
	assert.Len(t, ov.Columns, 5)

	assert.Len(t, Overview(clean, summary, 10).Head, 4)
}
