package dataset

import (
	"math"
	"sort"
	"strconv"
	"time"
)

// Required clinical trial columns, in validation order.
const (
	PatientIDColumn      = "patient_id"
	TreatmentGroupColumn = "treatment_group"
	OutcomeColumn        = "outcome"
)

// RequiredColumns lists the columns every trial dataset must carry.
var RequiredColumns = []string{PatientIDColumn, TreatmentGroupColumn, OutcomeColumn}

// ColumnType is the semantic type inferred for a column at load time
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
	TypeTemporal    ColumnType = "temporal"
)

// Column holds one named column. Exactly one backing slice is meaningful per
// type: Numbers (NaN = missing) for numeric, Text ("" = missing) for
// categorical, Text and Times for temporal (Times is filled by preprocessing,
// zero time = missing).
type Column struct {
	Name    string      `json:"name"`
	Type    ColumnType  `json:"type"`
	Numbers []float64   `json:"-"`
	Text    []string    `json:"-"`
	Times   []time.Time `json:"-"`
}

// Len returns the number of cells in the column
func (c *Column) Len() int {
	switch c.Type {
	case TypeNumeric:
		return len(c.Numbers)
	default:
		return len(c.Text)
	}
}

// IsMissing reports whether row i holds no value
func (c *Column) IsMissing(i int) bool {
	switch c.Type {
	case TypeNumeric:
		return math.IsNaN(c.Numbers[i])
	case TypeTemporal:
		if c.Times != nil {
			return c.Times[i].IsZero()
		}
		return c.Text[i] == ""
	default:
		return c.Text[i] == ""
	}
}

// MissingCount counts missing cells
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Label renders row i as a grouping key. Missing cells render as "".
func (c *Column) Label(i int) string {
	if c.IsMissing(i) {
		return ""
	}
	switch c.Type {
	case TypeNumeric:
		return strconv.FormatFloat(c.Numbers[i], 'g', -1, 64)
	case TypeTemporal:
		if c.Times != nil {
			return c.Times[i].Format(time.RFC3339)
		}
		return c.Text[i]
	default:
		return c.Text[i]
	}
}

// Value returns row i as a JSON-friendly value (nil when missing)
func (c *Column) Value(i int) interface{} {
	if c.IsMissing(i) {
		return nil
	}
	switch c.Type {
	case TypeNumeric:
		return c.Numbers[i]
	case TypeTemporal:
		if c.Times != nil {
			return c.Times[i]
		}
		return c.Text[i]
	default:
		return c.Text[i]
	}
}

// NonMissing returns the numeric values of the column, skipping missing ones
func (c *Column) NonMissing() []float64 {
	out := make([]float64, 0, len(c.Numbers))
	for _, v := range c.Numbers {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Levels returns the distinct non-missing labels in sorted order; numeric
// columns sort by value, everything else lexically.
func (c *Column) Levels() []string {
	seen := make(map[string]bool)
	var levels []string
	var nums []float64
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		label := c.Label(i)
		if seen[label] {
			continue
		}
		seen[label] = true
		if c.Type == TypeNumeric {
			nums = append(nums, c.Numbers[i])
		} else {
			levels = append(levels, label)
		}
	}
	if c.Type == TypeNumeric {
		sort.Float64s(nums)
		levels = make([]string, len(nums))
		for i, v := range nums {
			levels[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return levels
	}
	sort.Strings(levels)
	return levels
}

// Clone returns a deep copy of the column
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Type: c.Type}
	if c.Numbers != nil {
		out.Numbers = append([]float64(nil), c.Numbers...)
	}
	if c.Text != nil {
		out.Text = append([]string(nil), c.Text...)
	}
	if c.Times != nil {
		out.Times = append([]time.Time(nil), c.Times...)
	}
	return out
}

// Dataset is an in-memory rectangular table of named, typed columns
type Dataset struct {
	Name    string
	Columns []*Column
	rows    int
	index   map[string]int
}

// New assembles a dataset from columns of equal length
func New(name string, rows int, columns []*Column) *Dataset {
	ds := &Dataset{Name: name, Columns: columns, rows: rows}
	ds.reindex()
	return ds
}

func (d *Dataset) reindex() {
	d.index = make(map[string]int, len(d.Columns))
	for i, c := range d.Columns {
		d.index[c.Name] = i
	}
}

// Rows returns the row count
func (d *Dataset) Rows() int {
	return d.rows
}

// Column looks up a column by name
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.Columns[i], true
}

// Has reports whether the dataset has a column with the given name
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// ColumnNames returns column names in file order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnsOfType returns the names of columns with the given type, in file order
func (d *Dataset) ColumnsOfType(t ColumnType) []string {
	var names []string
	for _, c := range d.Columns {
		if c.Type == t {
			names = append(names, c.Name)
		}
	}
	return names
}

// Schema describes the columns for column-selection UIs
func (d *Dataset) Schema() []ColumnInfo {
	info := make([]ColumnInfo, len(d.Columns))
	for i, c := range d.Columns {
		info[i] = ColumnInfo{Name: c.Name, Type: c.Type, Missing: c.MissingCount()}
	}
	return info
}

// Row renders row i as a name→value record
func (d *Dataset) Row(i int) map[string]interface{} {
	row := make(map[string]interface{}, len(d.Columns))
	for _, c := range d.Columns {
		row[c.Name] = c.Value(i)
	}
	return row
}

// Head returns up to n leading rows
func (d *Dataset) Head(n int) []map[string]interface{} {
	if n > d.rows {
		n = d.rows
	}
	if n < 0 {
		n = 0
	}
	rows := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, d.Row(i))
	}
	return rows
}

// Clone deep-copies the dataset
func (d *Dataset) Clone() *Dataset {
	cols := make([]*Column, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = c.Clone()
	}
	return New(d.Name, d.rows, cols)
}

// ColumnInfo is the public description of one column
type ColumnInfo struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	Missing int        `json:"missing"`
}
