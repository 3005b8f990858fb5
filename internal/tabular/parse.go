// Package tabular converts raw comma-delimited text into ordered rows.
//
// The parser is deliberately lenient: it never rejects a malformed row.
// Short rows are padded with empty strings, long rows are truncated to the
// header width, blank lines are skipped, and every double-quote character is
// stripped from cells. Quoted delimiters are NOT honoured; a comma inside a
// quoted field still splits the field.
package tabular

import (
	"fmt"
	"io"
	"strings"
)

// Table is the result of parsing one file: a fixed, ordered column set and
// the data rows in input order.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Row is a single record keyed by column name. Every row carries a value for
// every column of its table.
type Row struct {
	columns []string
	values  []string
}

// NewRow builds a row over columns. Missing trailing values become "" and
// extra values are dropped.
func NewRow(columns []string, values []string) Row {
	v := make([]string, len(columns))
	copy(v, values)
	return Row{columns: columns, values: v}
}

// Columns returns the row's column names in order.
func (r Row) Columns() []string {
	return r.columns
}

// Values returns a copy of the row's values in column order.
func (r Row) Values() []string {
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

// Get returns the value stored under col.
func (r Row) Get(col string) (string, bool) {
	for i, c := range r.columns {
		if c == col {
			return r.values[i], true
		}
	}
	return "", false
}

// Len returns the number of columns in the row.
func (r Row) Len() int {
	return len(r.columns)
}

// Parse splits text into a header line and data rows.
// It returns an empty Table when text has no non-blank lines.
func Parse(text string) Table {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return Table{}
	}

	header := splitCells(lines[0])
	columns, slot := indexHeader(header)

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cells := splitCells(line)
		values := make([]string, len(columns))
		// Later positions win for repeated header names.
		for i := range header {
			if i < len(cells) {
				values[slot[i]] = cells[i]
			} else {
				values[slot[i]] = ""
			}
		}
		rows = append(rows, Row{columns: columns, values: values})
	}

	return Table{Columns: columns, Rows: rows}
}

// ParseReader reads all of r and parses it. It only fails on read errors.
func ParseReader(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	return Parse(string(data)), nil
}

// nonBlankLines splits on '\n' and drops lines that are empty after trimming.
func nonBlankLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := raw[:0]
	for _, line := range raw {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitCells splits a line on commas and cleans each cell.
func splitCells(line string) []string {
	cells := strings.Split(line, ",")
	for i, c := range cells {
		cells[i] = cleanCell(c)
	}
	return cells
}

// cleanCell trims surrounding whitespace, then removes every double quote.
func cleanCell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), `"`, "")
}

// indexHeader collapses repeated header names into a unique column list in
// first-seen order. slot maps each header position to its column index.
func indexHeader(header []string) (columns []string, slot []int) {
	seen := make(map[string]int, len(header))
	slot = make([]int, len(header))
	for i, name := range header {
		idx, ok := seen[name]
		if !ok {
			idx = len(columns)
			seen[name] = idx
			columns = append(columns, name)
		}
		slot[i] = idx
	}
	return columns, slot
}
