package stats

// Kind names one operation of the fixed analysis catalog
type Kind string

const (
	KindBasicStats  Kind = "basic_stats"
	KindTTest       Kind = "t_test"
	KindANOVA       Kind = "anova"
	KindEffectSize  Kind = "effect_size"
	KindChiSquare   Kind = "chi_square"
	KindCorrelation Kind = "correlation"
	KindPCA         Kind = "pca"
)

// Kinds lists the catalog in menu order
var Kinds = []Kind{KindBasicStats, KindTTest, KindANOVA, KindEffectSize, KindChiSquare, KindCorrelation, KindPCA}

// Request selects an operation and the columns it runs over. Which fields are
// read depends on Kind:
//
//	basic_stats:           Column
//	t_test, effect_size:   GroupColumn, ValueColumn, GroupA, GroupB
//	anova:                 GroupColumn, ValueColumn
//	chi_square:            ColumnA, ColumnB
//	correlation:           Columns
//	pca:                   Columns, Components
type Request struct {
	Kind        Kind     `json:"kind"`
	Column      string   `json:"column,omitempty"`
	GroupColumn string   `json:"group_column,omitempty"`
	ValueColumn string   `json:"value_column,omitempty"`
	GroupA      string   `json:"group_a,omitempty"`
	GroupB      string   `json:"group_b,omitempty"`
	ColumnA     string   `json:"column_a,omitempty"`
	ColumnB     string   `json:"column_b,omitempty"`
	Columns     []string `json:"columns,omitempty"`
	Components  int      `json:"components,omitempty"`
}

// Result is the transient outcome of one analysis request
type Result struct {
	Kind    Kind        `json:"kind"`
	Metrics interface{} `json:"metrics"`
}

// BasicStats are the descriptive statistics of one numeric sample
type BasicStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// TTestResult is an independent two-sample t-test
type TTestResult struct {
	TStatistic       float64 `json:"t_statistic"`
	PValue           float64 `json:"p_value"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom"`
	EqualVariance    bool    `json:"equal_variance"`
	NA               int     `json:"n_a"`
	NB               int     `json:"n_b"`
}

// TukeyComparison is one pairwise row of a Tukey HSD table
type TukeyComparison struct {
	Group1   string  `json:"group1"`
	Group2   string  `json:"group2"`
	MeanDiff float64 `json:"meandiff"`
	PAdj     float64 `json:"p_adj"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Reject   bool    `json:"reject"`
}

// ANOVAResult is a one-way ANOVA with Tukey HSD post-hoc comparisons
type ANOVAResult struct {
	FStatistic  float64           `json:"f_statistic"`
	PValue      float64           `json:"p_value"`
	DFBetween   int               `json:"df_between"`
	DFWithin    int               `json:"df_within"`
	PostHoc     []TukeyComparison `json:"post_hoc"`
	PostHocText string            `json:"post_hoc_text"`
}

// EffectSizeResult is Cohen's d of treatment against control
type EffectSizeResult struct {
	CohensD   float64 `json:"cohens_d"`
	Magnitude string  `json:"magnitude"`
}

// ChiSquareResult is a Pearson chi-square test of independence
type ChiSquareResult struct {
	Chi2Statistic    float64          `json:"chi2_statistic"`
	PValue           float64          `json:"p_value"`
	DegreesOfFreedom int              `json:"degrees_of_freedom"`
	Contingency      ContingencyTable `json:"contingency"`
}

// ContingencyTable is a cross-tabulation of two categorical columns
type ContingencyTable struct {
	RowLevels []string `json:"row_levels"`
	ColLevels []string `json:"col_levels"`
	Counts    [][]int  `json:"counts"`
}

// CorrelationMatrix is a symmetric Pearson correlation matrix
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// PCAResult is a principal component analysis of standardized columns
type PCAResult struct {
	Columns            []string    `json:"columns"`
	Components         int         `json:"components"`
	ExplainedVariance  []float64   `json:"explained_variance_ratio"`
	CumulativeVariance []float64   `json:"cumulative_variance_ratio"`
	Loadings           [][]float64 `json:"loadings"`
	Scores             [][]float64 `json:"scores"`
}
