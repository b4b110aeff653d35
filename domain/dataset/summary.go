package dataset

// NumericSummary is the describe-style aggregate of one numeric column
type NumericSummary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Q25   float64 `json:"q25"`
	Q50   float64 `json:"q50"`
	Q75   float64 `json:"q75"`
	Max   float64 `json:"max"`
}

// Summary is the post-upload overview computed once after preprocessing
type Summary struct {
	TotalPatients        int                       `json:"total_patients"`
	TreatmentGroupCounts map[string]int            `json:"treatment_group_counts"`
	OutcomeCounts        map[string]int            `json:"outcome_counts"`
	NumericSummaries     map[string]NumericSummary `json:"numeric_summaries"`
}

// Overview is the preview shown after upload: schema, leading rows and summary
type Overview struct {
	Name    string                   `json:"name"`
	Rows    int                      `json:"rows"`
	Columns []ColumnInfo             `json:"columns"`
	Head    []map[string]interface{} `json:"head"`
	Summary *Summary                 `json:"summary,omitempty"`
}
