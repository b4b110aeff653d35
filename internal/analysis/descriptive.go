package analysis

import (
	"math"

	domain "trialdash/domain/stats"
	"trialdash/internal/errors"

	"github.com/montanaflynn/stats"
)

// BasicStats computes mean, median, sample std (n-1), min and max over the
// non-missing values. A single observation reports std 0.
func BasicStats(values []float64) (*domain.BasicStats, error) {
	values = dropMissing(values)
	if len(values) == 0 {
		return nil, errors.New(errors.CodeEmptyColumn, "sample has no non-missing values")
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return nil, errors.Wrap(err, "mean")
	}
	median, err := stats.Median(values)
	if err != nil {
		return nil, errors.Wrap(err, "median")
	}
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	std := 0.0
	if len(values) > 1 {
		if std, err = stats.StandardDeviationSample(values); err != nil {
			return nil, errors.Wrap(err, "standard deviation")
		}
	}

	return &domain.BasicStats{
		Count:  len(values),
		Mean:   mean,
		Median: median,
		Std:    std,
		Min:    min,
		Max:    max,
	}, nil
}

func dropMissing(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// meanVar returns the mean and sample variance of a slice with len >= 2
func meanVar(values []float64) (float64, float64, error) {
	mean, err := stats.Mean(values)
	if err != nil {
		return 0, 0, err
	}
	variance, err := stats.SampleVariance(values)
	if err != nil {
		return 0, 0, err
	}
	return mean, variance, nil
}

func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
