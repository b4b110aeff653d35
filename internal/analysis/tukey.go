package analysis

import (
	"fmt"
	"math"
	"strings"

	domain "trialdash/domain/stats"
)

// TukeyHSD compares every pair of groups (Tukey-Kramer for unequal sizes).
// MeanDiff is mean(group2) - mean(group1) for each pair in level order.
func TukeyHSD(levels []string, means []float64, sizes []int, mse float64, dfWithin int, alpha float64) []domain.TukeyComparison {
	k := float64(len(levels))
	df := float64(dfWithin)
	qCrit := StudentizedRangeQuantile(1-alpha, k, df)

	var out []domain.TukeyComparison
	for i := 0; i < len(levels); i++ {
		for j := i + 1; j < len(levels); j++ {
			diff := means[j] - means[i]
			se := math.Sqrt(mse / 2 * (1/float64(sizes[i]) + 1/float64(sizes[j])))
			q := math.Abs(diff) / se
			pAdj := clampProbability(1 - StudentizedRangeCDF(q, k, df))
			margin := qCrit * se
			out = append(out, domain.TukeyComparison{
				Group1:   levels[i],
				Group2:   levels[j],
				MeanDiff: diff,
				PAdj:     pAdj,
				Lower:    diff - margin,
				Upper:    diff + margin,
				Reject:   pAdj < alpha,
			})
		}
	}
	return out
}

// FormatTukey renders the comparisons as a fixed-width summary table
func FormatTukey(rows []domain.TukeyComparison, alpha float64) string {
	header := []string{"group1", "group2", "meandiff", "p-adj", "lower", "upper", "reject"}
	cells := [][]string{header}
	for _, r := range rows {
		cells = append(cells, []string{
			r.Group1,
			r.Group2,
			fmt.Sprintf("%.4f", r.MeanDiff),
			fmt.Sprintf("%.4f", r.PAdj),
			fmt.Sprintf("%.4f", r.Lower),
			fmt.Sprintf("%.4f", r.Upper),
			fmt.Sprintf("%t", r.Reject),
		})
	}

	widths := make([]int, len(header))
	for _, row := range cells {
		for i, c := range row {
			if len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}
	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Multiple Comparison of Means - Tukey HSD, FWER=%.2f\n", alpha)
	b.WriteString(strings.Repeat("=", total) + "\n")
	for i, row := range cells {
		padded := make([]string, len(row))
		for j, c := range row {
			padded[j] = fmt.Sprintf("%*s", widths[j], c)
		}
		b.WriteString(strings.Join(padded, " ") + "\n")
		if i == 0 {
			b.WriteString(strings.Repeat("-", total) + "\n")
		}
	}
	b.WriteString(strings.Repeat("-", total))
	return b.String()
}
