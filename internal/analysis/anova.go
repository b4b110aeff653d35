package analysis

import (
	"fmt"

	"trialdash/domain/dataset"
	domain "trialdash/domain/stats"
	"trialdash/internal/errors"

	"gonum.org/v1/gonum/stat/distuv"
)

// FamilyWiseAlpha is the significance level of the Tukey HSD comparisons
const FamilyWiseAlpha = 0.05

// ANOVA runs a one-way analysis of variance of valueCol grouped by groupCol,
// followed by Tukey HSD pairwise comparisons.
func ANOVA(ds *dataset.Dataset, groupCol, valueCol string) (*domain.ANOVAResult, error) {
	groupColumn, err := requireColumn(ds, "group_column", groupCol)
	if err != nil {
		return nil, err
	}
	valueColumn, err := requireTyped(ds, "value_column", valueCol, dataset.TypeNumeric)
	if err != nil {
		return nil, err
	}

	levels, samples := groupSamples(groupColumn, valueColumn)
	if len(levels) < 2 {
		return nil, errors.InsufficientGroups(fmt.Sprintf(
			"ANOVA needs at least 2 groups in %q, found %d", groupCol, len(levels)))
	}
	for i, level := range levels {
		if len(samples[i]) < 2 {
			return nil, errors.InsufficientGroups(fmt.Sprintf(
				"ANOVA needs at least 2 observations per group, %q has %d", level, len(samples[i])))
		}
	}

	k := len(levels)
	n := 0
	grand := 0.0
	for _, s := range samples {
		for _, v := range s {
			grand += v
		}
		n += len(s)
	}
	grand /= float64(n)

	means := make([]float64, k)
	ssBetween, ssWithin := 0.0, 0.0
	for i, s := range samples {
		m, _, err := meanVar(s)
		if err != nil {
			return nil, errors.Wrapf(err, "ANOVA: failed to compute moments of %q", levels[i])
		}
		means[i] = m
		ssBetween += float64(len(s)) * (m - grand) * (m - grand)
		for _, v := range s {
			ssWithin += (v - m) * (v - m)
		}
	}
	if ssWithin == 0 {
		return nil, errors.ZeroVariance("ANOVA is undefined: every group has zero variance")
	}

	dfB, dfW := k-1, n-k
	msWithin := ssWithin / float64(dfW)
	f := (ssBetween / float64(dfB)) / msWithin
	p := clampProbability(distuv.F{D1: float64(dfB), D2: float64(dfW)}.Survival(f))

	sizes := make([]int, k)
	for i, s := range samples {
		sizes[i] = len(s)
	}
	comparisons := TukeyHSD(levels, means, sizes, msWithin, dfW, FamilyWiseAlpha)

	return &domain.ANOVAResult{
		FStatistic:  f,
		PValue:      p,
		DFBetween:   dfB,
		DFWithin:    dfW,
		PostHoc:     comparisons,
		PostHocText: FormatTukey(comparisons, FamilyWiseAlpha),
	}, nil
}

// groupSamples splits the non-missing values of value by the sorted levels of group
func groupSamples(group, value *dataset.Column) ([]string, [][]float64) {
	byLevel := make(map[string][]float64)
	for i := 0; i < group.Len(); i++ {
		if group.IsMissing(i) || value.IsMissing(i) {
			continue
		}
		label := group.Label(i)
		byLevel[label] = append(byLevel[label], value.Numbers[i])
	}
	var levels []string
	for _, level := range group.Levels() {
		if _, ok := byLevel[level]; ok {
			levels = append(levels, level)
		}
	}
	samples := make([][]float64, len(levels))
	for i, level := range levels {
		samples[i] = byLevel[level]
	}
	return levels, samples
}
