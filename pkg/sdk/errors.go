package railsearch

import "github.com/openrailwaymap/railsearch/internal/domain"

// ErrInvalidRequest is wrapped by every RequestError. Use errors.Is() to check.
var ErrInvalidRequest = domain.ErrInvalidRequest

// RequestError describes why a query was rejected before reaching the database.
type RequestError = domain.RequestError

// ErrorType is the machine-readable kind of a RequestError.
type ErrorType = domain.ErrorType

// Request error kinds.
const (
	ErrorMultipleQueryArgs = domain.ErrorMultipleQueryArgs
	ErrorNoQueryArg        = domain.ErrorNoQueryArg
	ErrorLimitNotInteger   = domain.ErrorLimitNotInteger
	ErrorLimitTooHigh      = domain.ErrorLimitTooHigh
	ErrorWildcardInQuery   = domain.ErrorWildcardInQuery
)
