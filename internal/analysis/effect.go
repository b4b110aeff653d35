package analysis

import (
	"fmt"
	"math"

	domain "trialdash/domain/stats"
	"trialdash/internal/errors"
)

// EffectSize computes Cohen's d = (mean(treatment) - mean(control)) / pooled SD,
// where the pooled variance weights each group by n-1.
func EffectSize(treatment, control []float64) (*domain.EffectSizeResult, error) {
	treatment, control = dropMissing(treatment), dropMissing(control)
	if len(treatment) < 2 || len(control) < 2 {
		return nil, errors.InsufficientSamples(fmt.Sprintf(
			"effect size needs at least 2 observations per group, got %d and %d", len(treatment), len(control)))
	}

	n1, n2 := float64(len(treatment)), float64(len(control))
	m1, v1, err := meanVar(treatment)
	if err != nil {
		return nil, errors.Wrap(err, "effect size: failed to compute treatment moments")
	}
	m2, v2, err := meanVar(control)
	if err != nil {
		return nil, errors.Wrap(err, "effect size: failed to compute control moments")
	}

	diff := m1 - m2
	if diff == 0 {
		return &domain.EffectSizeResult{CohensD: 0, Magnitude: magnitude(0)}, nil
	}

	pooledSD := math.Sqrt(((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2))
	if pooledSD == 0 {
		return nil, errors.ZeroVariance("Cohen's d is undefined: pooled standard deviation is zero")
	}

	d := diff / pooledSD
	return &domain.EffectSizeResult{CohensD: d, Magnitude: magnitude(d)}, nil
}

// magnitude uses Cohen's conventional thresholds
func magnitude(d float64) string {
	switch abs := math.Abs(d); {
	case abs < 0.2:
		return "negligible"
	case abs < 0.5:
		return "small"
	case abs < 0.8:
		return "medium"
	default:
		return "large"
	}
}
