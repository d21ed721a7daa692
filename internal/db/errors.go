package db

import "errors"

// ErrInvalidQuery is returned when a query fails validation before reaching the store.
var ErrInvalidQuery = errors.New("db: invalid query")

// Op constants name the store operation for error context.
const (
	OpConnect    = "CONNECT"
	OpPing       = "PING"
	OpSearchName = "QUERY name"
	OpSearchRef  = "QUERY ref"
	OpScan       = "SCAN"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
