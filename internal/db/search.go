package db

import (
	"fmt"

	"github.com/openrailwaymap/railsearch/internal/domain/facility"
)

// RefColumn is the exact-match column of the reference lookup.
type RefColumn string

// Reference columns. Only these ever reach the SQL text.
const (
	RefColumnRailwayRef RefColumn = "railway_ref"
	RefColumnUICRef     RefColumn = "uic_ref"
)

// IsValid checks if the column is one of the supported reference columns.
func (c RefColumn) IsValid() bool {
	return c == RefColumnRailwayRef || c == RefColumnUICRef
}

// NameQuery is the input for ranked full-text facility search.
type NameQuery struct {
	Term  string
	Limit int
}

// Validate checks the query before it reaches the store.
func (q *NameQuery) Validate() error {
	if q.Term == "" {
		return fmt.Errorf("%w: empty term", ErrInvalidQuery)
	}
	if q.Limit < 1 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidQuery, q.Limit)
	}
	return nil
}

// RefQuery is the input for exact reference lookup.
type RefQuery struct {
	Column RefColumn
	Value  string
	Limit  int
}

// Validate checks the query before it reaches the store.
func (q *RefQuery) Validate() error {
	if !q.Column.IsValid() {
		return fmt.Errorf("%w: unknown reference column %q", ErrInvalidQuery, q.Column)
	}
	if q.Value == "" {
		return fmt.Errorf("%w: empty reference", ErrInvalidQuery)
	}
	if q.Limit < 1 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidQuery, q.Limit)
	}
	return nil
}

// ResultSet is the output of a facility query: the column list and the raw rows.
type ResultSet struct {
	Columns []string
	Rows    []facility.Row
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}
