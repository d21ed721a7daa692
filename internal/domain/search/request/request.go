package request

import (
	"strconv"
	"strings"

	"github.com/openrailwaymap/railsearch/internal/domain"
	"github.com/openrailwaymap/railsearch/internal/domain/search/mode"
)

// Search parameter limits.
const (
	DefaultLimit = 20
	MaxLimit     = 200
)

// Query parameter names recognised as search fields, in dispatch order.
const (
	ParamQ      = "q"
	ParamName   = "name"
	ParamRef    = "ref"
	ParamUICRef = "uicRef"
	ParamLimit  = "limit"
)

// SearchParams lists the search field names reported back in request errors.
var SearchParams = []string{ParamQ, ParamName, ParamRef, ParamUICRef}

// wildcards are the pattern metacharacters of the store's LIKE dialect.
const wildcards = "%_"

// Params holds raw query-string values. A nil pointer means the parameter was absent.
type Params struct {
	Q      *string
	Name   *string
	Ref    *string
	UICRef *string
	Limit  *string
}

// Limits bounds the page size.
type Limits struct {
	Default int
	Max     int
}

// DefaultLimits returns the stock page size bounds (20 / 200).
func DefaultLimits() Limits {
	return Limits{Default: DefaultLimit, Max: MaxLimit}
}

func (l Limits) normalized() Limits {
	if l.Max <= 0 {
		l.Max = MaxLimit
	}
	if l.Default <= 0 {
		l.Default = DefaultLimit
	}
	if l.Default > l.Max {
		l.Default = l.Max
	}
	return l
}

// Request is a validated facility search: exactly one mode, one term and an effective limit.
type Request struct {
	searchMode mode.Mode
	term       string
	limit      int
}

// Parse validates raw parameters and selects the single active search mode.
// It returns a *domain.RequestError for every client-side problem.
func Parse(p Params, limits Limits) (Request, error) {
	limits = limits.normalized()

	fields := []struct {
		value *string
		mode  mode.Mode
	}{
		{p.Name, mode.Name},
		{p.Ref, mode.Ref},
		{p.UICRef, mode.UICRef},
		{p.Q, mode.Generic},
	}

	var (
		count int
		r     Request
	)
	for _, f := range fields {
		if f.value == nil || *f.value == "" {
			continue
		}
		count++
		r.searchMode = f.mode
		r.term = *f.value
	}
	switch {
	case count > 1:
		return Request{}, domain.NewMultipleQueryArgs(SearchParams)
	case count == 0:
		return Request{}, domain.NewNoQueryArg(SearchParams)
	}

	r.limit = limits.Default
	if p.Limit != nil {
		n, err := strconv.Atoi(*p.Limit)
		if err != nil || n < 1 {
			return Request{}, domain.NewLimitNotInteger()
		}
		if n > limits.Max {
			return Request{}, domain.NewLimitTooHigh(limits.Max)
		}
		r.limit = n
	}

	return r, nil
}

// HasWildcard reports whether term contains a reserved pattern metacharacter.
func HasWildcard(term string) bool {
	return strings.ContainsAny(term, wildcards)
}

// Mode returns the selected search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Term returns the raw search term.
func (r *Request) Term() string { return r.term }

// Limit returns the effective page size.
func (r *Request) Limit() int { return r.limit }
