package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"trialdash/domain/dataset"
	apperrors "trialdash/internal/errors"

	"github.com/xuri/excelize/v2"
)

// ReadFile loads a CSV or XLSX file, dispatching on its extension
func ReadFile(path string, opts ReadOptions) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if opts.Name == "" {
		opts.Name = filepath.Base(path)
	}
	if IsSpreadsheet(path) {
		return ReadXLSX(f, opts)
	}
	return ReadCSV(f, opts)
}

// IsSpreadsheet reports whether a filename names an XLSX workbook
func IsSpreadsheet(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".xlsx" || ext == ".xlsm"
}

// ReadCSV parses a CSV byte stream whose first record is the header
func ReadCSV(r io.Reader, opts ReadOptions) (*dataset.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.ParseError("No columns to parse from file", nil)
	}
	if err != nil {
		return nil, apperrors.ParseError("malformed CSV header", err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, apperrors.ParseError(fmt.Sprintf("malformed CSV at line %d", perr.Line), err)
			}
			return nil, apperrors.ParseError("failed to read CSV", err)
		}
		records = append(records, record)
	}

	return fromRecords(header, records, opts)
}

// ReadXLSX parses a workbook sheet whose first row is the header
func ReadXLSX(r io.Reader, opts ReadOptions) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.ParseError("failed to open workbook", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.ParseError("workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.ParseError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ParseError("No columns to parse from file", nil)
	}

	// excelize reports fully empty rows as zero-length; CSV readers skip them.
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		records = append(records, row)
	}
	return fromRecords(rows[0], records, opts)
}

// fromRecords builds a typed dataset from a header and raw string records
func fromRecords(header []string, records [][]string, opts ReadOptions) (*dataset.Dataset, error) {
	names := dedupeHeader(header)
	width := len(names)
	if width == 0 {
		return nil, apperrors.ParseError("No columns to parse from file", nil)
	}

	for i, record := range records {
		if len(record) > width {
			return nil, apperrors.ParseError(
				fmt.Sprintf("row %d has %d fields, expected %d", i+2, len(record), width), nil)
		}
	}

	dateCols := make(map[string]bool, len(opts.DateColumns))
	for _, name := range opts.DateColumns {
		if !contains(names, name) {
			return nil, apperrors.InvalidColumnSelection("date_columns", fmt.Sprintf("column %q not found", name))
		}
		dateCols[name] = true
	}

	missing := opts.missingSet()
	columns := make([]*dataset.Column, width)
	for j, name := range names {
		cells := make([]string, len(records))
		for i, record := range records {
			if j < len(record) && !missing[record[j]] {
				cells[i] = record[j]
			}
		}
		if dateCols[name] {
			columns[j] = &dataset.Column{Name: name, Type: dataset.TypeTemporal, Text: cells}
			continue
		}
		columns[j] = inferColumn(name, cells)
	}

	return dataset.New(opts.Name, len(records), columns), nil
}

// inferColumn types a column as numeric when every non-missing cell parses
// as a finite number; otherwise it stays categorical.
func inferColumn(name string, cells []string) *dataset.Column {
	numbers := make([]float64, len(cells))
	for i, cell := range cells {
		if cell == "" {
			numbers[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return &dataset.Column{Name: name, Type: dataset.TypeCategorical, Text: cells}
		}
		numbers[i] = v
	}
	return &dataset.Column{Name: name, Type: dataset.TypeNumeric, Numbers: numbers}
}

// dedupeHeader names blank headers "Unnamed: i" and suffixes repeats with .1, .2 ...
func dedupeHeader(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for seen[name] > 0 {
			name = fmt.Sprintf("%s.%d", base, seen[base])
			seen[base]++
		}
		seen[name]++
		names[i] = name
	}
	return names
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
