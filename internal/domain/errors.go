package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRequest signals a client-caused request error. Every *RequestError unwraps to it.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// ErrorType is the machine-readable tag carried by request errors.
type ErrorType string

// Request error types.
const (
	ErrorMultipleQueryArgs ErrorType = "multiple_query_args"
	ErrorNoQueryArg        ErrorType = "no_query_arg"
	ErrorLimitNotInteger   ErrorType = "limit_not_integer"
	ErrorLimitTooHigh      ErrorType = "limit_too_high"
	ErrorWildcardInQuery   ErrorType = "wildcard_in_query"
)

// RequestError is a typed, client-recoverable validation failure.
type RequestError struct {
	Type    ErrorType
	Summary string
	Detail  string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Type, e.Summary, e.Detail)
}

func (e *RequestError) Unwrap() error { return ErrInvalidRequest }

// NewMultipleQueryArgs reports that more than one search field was supplied.
func NewMultipleQueryArgs(allowed []string) error {
	return &RequestError{
		Type:    ErrorMultipleQueryArgs,
		Summary: "More than one argument with a search term provided.",
		Detail:  "Provide only one of the following arguments: " + strings.Join(allowed, ", "),
	}
}

// NewNoQueryArg reports that no search field was supplied.
func NewNoQueryArg(allowed []string) error {
	return &RequestError{
		Type:    ErrorNoQueryArg,
		Summary: "No argument with a search term provided.",
		Detail:  "Provide one of the following arguments: " + strings.Join(allowed, ", "),
	}
}

// NewLimitNotInteger reports an unparseable or non-positive limit.
func NewLimitNotInteger() error {
	return &RequestError{
		Type:    ErrorLimitNotInteger,
		Summary: `Invalid parameter value provided for parameter "limit".`,
		Detail:  "The provided limit cannot be parsed as a positive integer value.",
	}
}

// NewLimitTooHigh reports a limit above the configured maximum.
func NewLimitTooHigh(maxLimit int) error {
	return &RequestError{
		Type:    ErrorLimitTooHigh,
		Summary: `Invalid parameter value provided for parameter "limit".`,
		Detail: fmt.Sprintf(
			"Limit is too high (max %d). Please set up your own instance to query everything.", maxLimit,
		),
	}
}

// NewWildcardInQuery reports a free-text term containing pattern metacharacters.
func NewWildcardInQuery() error {
	return &RequestError{
		Type:    ErrorWildcardInQuery,
		Summary: "Wildcard in query.",
		Detail:  "Query contains any of the wildcard characters: %_",
	}
}
