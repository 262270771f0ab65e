// Package table implements a small in-memory table of string cells used
// to accumulate, join and serialize the per-source datasets. An empty
// cell stands for a missing value.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
)

type Table struct {
	Columns []string
	Rows    [][]string
}

func New(columns ...string) Table {
	return Table{Columns: columns}
}

func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

func (t Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// Append adds one row. Missing trailing cells are left empty, extra
// cells are dropped, so a row always matches the column count.
func (t *Table) Append(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// AddConstColumn appends a column holding the same value in every row,
// used to tag fetched rows with the identity they were fetched for.
func (t *Table) AddConstColumn(name, value string) {
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], value)
	}
}

// Concat appends the rows of other to t, aligning other's columns to
// t's. If t has no columns yet it adopts other's schema. Columns of
// other that t lacks are added (back-filling earlier rows with empty
// cells).
func (t *Table) Concat(other Table) {
	if len(t.Columns) == 0 {
		t.Columns = slices.Clone(other.Columns)
	}
	for _, col := range other.Columns {
		if t.ColumnIndex(col) >= 0 {
			continue
		}
		t.Columns = append(t.Columns, col)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], "")
		}
	}
	for _, row := range other.Rows {
		aligned := make([]string, len(t.Columns))
		for i, col := range other.Columns {
			aligned[t.ColumnIndex(col)] = row[i]
		}
		t.Rows = append(t.Rows, aligned)
	}
}

// LeftJoin joins t with right on t[leftKey] == right[rightKey],
// preserving every row of t. A left row without a match keeps empty
// cells for all right-hand columns; a row with several matches is
// emitted once per match. Right-hand columns whose name collides with
// an existing left column are renamed with the given suffix.
func (t Table) LeftJoin(right Table, leftKey, rightKey, suffix string) Table {
	leftIdx := t.ColumnIndex(leftKey)
	rightIdx := right.ColumnIndex(rightKey)

	out := Table{Columns: slices.Clone(t.Columns)}
	for _, col := range right.Columns {
		if slices.Contains(out.Columns, col) {
			col += suffix
		}
		out.Columns = append(out.Columns, col)
	}

	matches := make(map[string][][]string, len(right.Rows))
	if rightIdx >= 0 {
		for _, row := range right.Rows {
			key := row[rightIdx]
			matches[key] = append(matches[key], row)
		}
	}

	for _, row := range t.Rows {
		var found [][]string
		if leftIdx >= 0 {
			found = matches[row[leftIdx]]
		}
		if len(found) == 0 {
			padded := make([]string, len(out.Columns))
			copy(padded, row)
			out.Rows = append(out.Rows, padded)
			continue
		}
		for _, match := range found {
			joined := make([]string, 0, len(out.Columns))
			joined = append(joined, row...)
			joined = append(joined, match...)
			out.Rows = append(out.Rows, joined)
		}
	}

	return out
}

// WriteCSV writes a header row followed by the data rows.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	err := cw.Write(t.Columns)
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	err = cw.WriteAll(t.Rows)
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// Render pretty-prints up to maxRows rows for terminal output.
func (t Table) Render(maxRows int) string {
	w := table.NewWriter()

	header := make(table.Row, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	w.AppendHeader(header)

	for i, row := range t.Rows {
		if i >= maxRows {
			break
		}
		cells := make(table.Row, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		w.AppendRow(cells)
	}
	if len(t.Rows) > maxRows {
		w.AppendFooter(table.Row{fmt.Sprintf("%d more rows", len(t.Rows)-maxRows)})
	}

	return w.Render()
}
