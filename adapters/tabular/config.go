package tabular

import "strings"

// ReadOptions control how a raw table is turned into a typed dataset
type ReadOptions struct {
	// Name labels the resulting dataset, usually the uploaded filename.
	Name string `json:"name"`
	// DateColumns are parsed as temporal columns during preprocessing.
	// Temporal typing is never inferred from values.
	DateColumns []string `json:"date_columns"`
	// Sheet selects the XLSX worksheet; empty means the first sheet.
	Sheet string `json:"sheet"`
	// MissingTokens replaces the default NA spellings when non-nil.
	MissingTokens []string `json:"missing_tokens,omitempty"`
}

// DefaultMissingTokens are the cell spellings read as missing values
var DefaultMissingTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// DefaultReadOptions returns options with the default missing tokens
func DefaultReadOptions() ReadOptions {
	return ReadOptions{}
}

// ParseDateColumns splits a comma separated form value into column names
func ParseDateColumns(raw string) []string {
	var cols []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			cols = append(cols, part)
		}
	}
	return cols
}

func (o ReadOptions) missingSet() map[string]bool {
	tokens := o.MissingTokens
	if tokens == nil {
		tokens = DefaultMissingTokens
	}
	set := make(map[string]bool, len(tokens)+1)
	set[""] = true
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
