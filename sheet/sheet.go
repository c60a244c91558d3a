// Package sheet holds the tabular side of the sync: a Table with one row
// per key and one column per language, the extractor that builds it from
// per-language maps, and readers/writers for .xlsx and .csv files.
package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/xlsync/merge"
)

// KeyColumn is the header of the first column.
const KeyColumn = "key"

// ErrUnsupportedFormat is returned for file extensions or format names
// other than xlsx and csv.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Format is a spreadsheet file format.
type Format string

const (
	XLSX Format = "xlsx"
	CSV  Format = "csv"
)

// ParseFormat parses a format name as given on the command line or in the
// project config. The empty string selects XLSX.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "xlsx":
		return XLSX, nil
	case "csv":
		return CSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatOf returns the format of a file by its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return XLSX, nil
	case ".csv":
		return CSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

// Table is a spreadsheet: Header is ["key", lang1, lang2, ...] and every
// row starts with its key. Rows may be shorter than Header; missing cells
// are empty.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable returns an empty table for the given languages.
func NewTable(langs []string) *Table {
	header := make([]string, 0, len(langs)+1)
	header = append(header, KeyColumn)
	header = append(header, langs...)
	return &Table{Header: header}
}

// Languages returns the language columns, in header order. Blank and
// repeated headers are skipped.
func (t *Table) Languages() []string {
	var langs []string
	seen := make(map[string]bool)
	for i, h := range t.Header {
		h = strings.TrimSpace(h)
		if i == 0 || h == "" || seen[h] {
			continue
		}
		seen[h] = true
		langs = append(langs, h)
	}
	return langs
}

// column returns the index of the first column headed lang, or -1.
func (t *Table) column(lang string) int {
	for i, h := range t.Header {
		if i > 0 && strings.TrimSpace(h) == lang {
			return i
		}
	}
	return -1
}

// Units returns the translations of one language column in row order.
// Rows with an empty key are skipped. Empty cells are kept as units with
// empty text, which removes the key on import.
func (t *Table) Units(lang string) []merge.Unit {
	col := t.column(lang)
	if col < 0 {
		return nil
	}
	units := make([]merge.Unit, 0, len(t.Rows))
	for _, row := range t.Rows {
		key := cell(row, 0)
		if key == "" {
			continue
		}
		units = append(units, merge.Unit{Key: key, Text: cell(row, col)})
	}
	return units
}

// Keys returns the non-empty keys in row order.
func (t *Table) Keys() []string {
	var keys []string
	for _, row := range t.Rows {
		if key := cell(row, 0); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// AddRow appends a row.
func (t *Table) AddRow(key string, values ...string) {
	row := make([]string, 0, len(values)+1)
	row = append(row, key)
	t.Rows = append(t.Rows, append(row, values...))
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	if i == 0 {
		return strings.TrimSpace(row[0])
	}
	return row[i]
}

// ---------------------------------------------------------------------------
// Extraction
// ---------------------------------------------------------------------------

// Extract flattens per-language key/text maps into a table. The rows are
// the sorted union of all keys; header columns follow langs. A key a
// language lacks gets an empty cell.
//
// Keys sort as plain strings, so "list,10" comes before "list,2".
func Extract(langs []string, values map[string]map[string]string) *Table {
	union := make(map[string]bool)
	for _, lang := range langs {
		for k := range values[lang] {
			union[k] = true
		}
	}
	keys := make([]string, 0, len(union))
	for k := range union {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := NewTable(langs)
	for _, k := range keys {
		row := make([]string, len(langs))
		for i, lang := range langs {
			row[i] = values[lang][k]
		}
		t.AddRow(k, row...)
	}
	return t
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

// ReadFile reads a table from an .xlsx or .csv file.
func ReadFile(path string) (*Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	switch format {
	case XLSX:
		rows, err = readXLSX(path)
	case CSV:
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	return &Table{Header: rows[0], Rows: rows[1:]}, nil
}

// WriteFile writes t to path in the format given by its extension.
func WriteFile(path string, t *Table) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	switch format {
	case XLSX:
		return writeXLSX(path, t)
	default:
		return writeCSV(path, t)
	}
}
