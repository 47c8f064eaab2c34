// Package warehouse executes read-only SQL against the clinical trial gold
// layer. The SQL adapter talks to a real database through database/sql; the
// Fixtures adapter serves canned tables when no warehouse is configured.
package warehouse

import (
	"context"
	"fmt"
)

// Adapter runs a single SQL statement and returns its full result set.
// Statements are passed through unchanged; nothing checks that they are
// read-only.
type Adapter interface {
	Execute(ctx context.Context, query string) (*Table, error)
	Dialect() Dialect
}

// Row maps column name to a scalar value.
type Row map[string]interface{}

// Table is a tabular result with column order preserved.
type Table struct {
	Columns []string
	Rows    []Row
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) Empty() bool {
	return t.Len() == 0
}

// First returns the first row, or an empty row when the table has none.
func (t *Table) First() Row {
	if t.Empty() {
		return Row{}
	}
	return t.Rows[0]
}

// Head returns a table holding at most n leading rows.
func (t *Table) Head(n int) *Table {
	if t == nil {
		return &Table{}
	}
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// Records returns the rows for JSON encoding. Nil tables yield nil.
func (t *Table) Records() []Row {
	if t == nil {
		return nil
	}
	return t.Rows
}

// DatabaseError wraps a failure reported by the warehouse while running a
// query on an open connection.
type DatabaseError struct {
	Query string
	Err   error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error: %v", e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}
