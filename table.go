package rebalance

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a rectangular grid of text cells with a header row, as read from a CSV file or a
// spreadsheet.
//
// Tables are always clean: names and cells are trimmed, blank rows are dropped, and unnamed
// blank columns are dropped.
type Table struct {
	Source string
	Header []string
	Rows   [][]string
	lines  []int // source line of each row, 1 is the header
}

// NewTable builds a clean Table from raw records, the first record being the header.
func NewTable(source string, records [][]string) *Table {
	t := &Table{Source: source}
	if len(records) == 0 {
		return t
	}

	width := 0
	for _, rec := range records {
		width = max(width, len(rec))
	}
	cell := func(rec []string, j int) string {
		if j < len(rec) {
			return strings.TrimSpace(strings.TrimPrefix(rec[j], "\ufeff"))
		}
		return ""
	}

	// A column is kept if it is named or holds at least one value.
	keep := make([]int, 0, width)
	for j := range width {
		used := cell(records[0], j) != ""
		for _, rec := range records[1:] {
			if used {
				break
			}
			used = cell(rec, j) != ""
		}
		if used {
			keep = append(keep, j)
		}
	}

	for _, j := range keep {
		t.Header = append(t.Header, cell(records[0], j))
	}
	for i, rec := range records[1:] {
		row := make([]string, len(keep))
		empty := true
		for k, j := range keep {
			row[k] = cell(rec, j)
			empty = empty && row[k] == ""
		}
		if empty {
			continue
		}
		t.Rows = append(t.Rows, row)
		t.lines = append(t.lines, i+2)
	}
	return t
}

// Column returns the index of the first column with one of the given names, or -1.
func (t *Table) Column(names ...string) int {
	for _, name := range names {
		for j, h := range t.Header {
			if strings.EqualFold(h, name) {
				return j
			}
		}
	}
	return -1
}

// Line returns the source line of the i-th row.
func (t *Table) Line(i int) int {
	if i < len(t.lines) {
		return t.lines[i]
	}
	return i + 2
}

// schemaError returns a SchemaError located on row i (-1 for the whole table).
func (t *Table) schemaError(i int, column string, err error) *SchemaError {
	e := &SchemaError{Source: t.Source, Column: column, Err: err}
	if i >= 0 {
		e.Row = t.Line(i)
	}
	return e
}

// require returns the index of the required column, or a SchemaError.
func (t *Table) require(names ...string) (int, error) {
	j := t.Column(names...)
	if j < 0 {
		return -1, t.schemaError(-1, strings.Join(names, "|"), ErrMissingColumn)
	}
	return j, nil
}

// ReadCSV reads a comma separated table.
func ReadCSV(source string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are padded
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read csv %s: %w", source, err)
	}
	return NewTable(source, records), nil
}

// ReadXLSX reads the first sheet of an Excel workbook.
func ReadXLSX(source string, r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook %s: %w", source, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheet", source)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %q of %s: %w", sheets[0], source, err)
	}
	return NewTable(source, records), nil
}

// WriteCSV writes the table as comma separated values.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	return cw.WriteAll(t.Rows)
}
