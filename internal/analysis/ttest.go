package analysis

import (
	"fmt"
	"math"

	domain "trialdash/domain/stats"
	"trialdash/internal/errors"

	"gonum.org/v1/gonum/stat/distuv"
)

// EqualVarianceTTest selects Student's pooled-variance two-sample test. When
// false the Welch-Satterthwaite variant is used instead.
const EqualVarianceTTest = true

// TTest runs an independent two-sample t-test with a two-tailed p-value
func TTest(a, b []float64) (*domain.TTestResult, error) {
	a, b = dropMissing(a), dropMissing(b)
	if len(a) < 2 || len(b) < 2 {
		return nil, errors.InsufficientSamples(fmt.Sprintf(
			"t-test needs at least 2 observations per group, got %d and %d", len(a), len(b)))
	}

	n1, n2 := float64(len(a)), float64(len(b))
	m1, v1, err := meanVar(a)
	if err != nil {
		return nil, errors.Wrap(err, "t-test: failed to compute group moments")
	}
	m2, v2, err := meanVar(b)
	if err != nil {
		return nil, errors.Wrap(err, "t-test: failed to compute group moments")
	}

	var se, df float64
	if EqualVarianceTTest {
		df = n1 + n2 - 2
		pooled := ((n1-1)*v1 + (n2-1)*v2) / df
		se = math.Sqrt(pooled * (1/n1 + 1/n2))
	} else {
		s1, s2 := v1/n1, v2/n2
		se = math.Sqrt(s1 + s2)
		df = (s1 + s2) * (s1 + s2) / (s1*s1/(n1-1) + s2*s2/(n2-1))
	}
	if se == 0 {
		return nil, errors.ZeroVariance("t-test is undefined: both groups have zero variance")
	}

	t := (m1 - m2) / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := clampProbability(2 * dist.Survival(math.Abs(t)))

	return &domain.TTestResult{
		TStatistic:       t,
		PValue:           p,
		DegreesOfFreedom: df,
		EqualVariance:    EqualVarianceTTest,
		NA:               len(a),
		NB:               len(b),
	}, nil
}
