// Package dataset cleans validated trial datasets and computes the
// post-upload overview.
package dataset

import (
	"strings"
	"time"

	"trialdash/domain/dataset"
	"trialdash/internal/errors"

	"github.com/montanaflynn/stats"
)

// UnknownCategory replaces missing categorical cells
const UnknownCategory = "Unknown"

// DateLayouts are tried in order when normalizing temporal columns. Layouts
// without a zone are read as UTC.
var DateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Preprocess returns a cleaned copy of ds; ds itself is not modified.
//
// Numeric gaps take the column mean over non-missing values, categorical gaps
// take UnknownCategory, and temporal columns are parsed and normalized to UTC.
// Row and column order are preserved.
func Preprocess(ds *dataset.Dataset) (*dataset.Dataset, error) {
	out := ds.Clone()
	for _, col := range out.Columns {
		var err error
		switch col.Type {
		case dataset.TypeNumeric:
			err = imputeMean(col)
		case dataset.TypeCategorical:
			imputeUnknown(col)
		case dataset.TypeTemporal:
			err = normalizeDates(col)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func imputeMean(col *dataset.Column) error {
	missing := col.MissingCount()
	if missing == 0 {
		return nil
	}
	values := col.NonMissing()
	if len(values) == 0 {
		return errors.AllMissingColumn(col.Name)
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return errors.Wrapf(err, "failed to compute mean of %q", col.Name)
	}
	for i := range col.Numbers {
		if col.IsMissing(i) {
			col.Numbers[i] = mean
		}
	}
	return nil
}

func imputeUnknown(col *dataset.Column) {
	for i, v := range col.Text {
		if v == "" {
			col.Text[i] = UnknownCategory
		}
	}
}

// normalizeDates fills Times and rewrites Text in canonical RFC3339Nano form so a
// second pass parses to the same instants.
func normalizeDates(col *dataset.Column) error {
	times := make([]time.Time, len(col.Text))
	for i, raw := range col.Text {
		if raw == "" {
			continue
		}
		t, ok := ParseDate(raw)
		if !ok {
			return errors.DateParseError(col.Name, raw)
		}
		times[i] = t
		col.Text[i] = t.Format(time.RFC3339Nano)
	}
	col.Times = times
	return nil
}

// ParseDate tries each of DateLayouts and returns the instant in UTC
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
