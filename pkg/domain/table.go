package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidTableRef = errors.New("invalid table reference")

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TableRef is a validated "dataset.table" identifier.
//
// Both segments are restricted to word characters so that a TableRef can
// be interpolated into SQL as a quoted identifier without further checks.
type TableRef struct {
	Dataset string
	Name    string
}

func ParseTableRef(s string) (TableRef, error) {
	dataset, name, found := strings.Cut(s, ".")
	if !found {
		return TableRef{}, fmt.Errorf(
			"%w: %q is not shaped dataset.table", ErrInvalidTableRef, s,
		)
	}
	if !identPattern.MatchString(dataset) || !identPattern.MatchString(name) {
		return TableRef{}, fmt.Errorf(
			"%w: %q contains non-identifier characters", ErrInvalidTableRef, s,
		)
	}
	return TableRef{Dataset: dataset, Name: name}, nil
}

func (t TableRef) String() string {
	return t.Dataset + "." + t.Name
}

// Table is an in-memory snapshot of a warehouse table: column names and
// rows in column order.
type Table struct {
	Columns []string
	Rows    [][]any
}

func (t Table) Len() int {
	return len(t.Rows)
}

func (t Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// WithColumn returns a copy of t extended by one column whose value for
// row i is values[i]. len(values) must equal t.Len().
func (t Table) WithColumn(name string, values []any) (Table, error) {
	if len(values) != t.Len() {
		return Table{}, fmt.Errorf(
			"column %q has %d values for %d rows", name, len(values), t.Len(),
		)
	}
	out := Table{
		Columns: append(append([]string{}, t.Columns...), name),
		Rows:    make([][]any, t.Len()),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append(append([]any{}, row...), values[i])
	}
	return out, nil
}

// WithConstantColumn is WithColumn with the same value on every row.
func (t Table) WithConstantColumn(name string, value any) Table {
	out := Table{
		Columns: append(append([]string{}, t.Columns...), name),
		Rows:    make([][]any, t.Len()),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append(append([]any{}, row...), value)
	}
	return out
}
