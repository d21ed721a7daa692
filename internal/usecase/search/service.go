package search

import (
	"context"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/openrailwaymap/railsearch/internal/domain"
	"github.com/openrailwaymap/railsearch/internal/domain/facility"
	"github.com/openrailwaymap/railsearch/internal/domain/search/mode"
	"github.com/openrailwaymap/railsearch/internal/domain/search/request"
	"github.com/openrailwaymap/railsearch/internal/metrics"
)

// Service dispatches a validated request to the name, reference or fused lookup.
type Service struct {
	repo     Repository
	parallel bool
}

// Option configures a Service.
type Option func(*Service)

// WithParallelFusion runs the three generic-mode lookups concurrently.
func WithParallelFusion(enabled bool) Option {
	return func(s *Service) { s.parallel = enabled }
}

// New creates a search service.
func New(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search executes a facility search. Wildcards in name-searching modes are
// rejected before the repository is touched.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]facility.Record, error) {
	if req.Mode().UsesNameSearch() && request.HasWildcard(req.Term()) {
		return nil, domain.NewWildcardInQuery()
	}

	var (
		records []facility.Record
		err     error
	)

	switch req.Mode() {
	case mode.Name:
		records, err = s.searchName(ctx, req.Term(), req.Limit())
	case mode.Ref:
		records, err = s.repo.SearchRef(ctx, req.Term(), req.Limit())
	case mode.UICRef:
		records, err = s.repo.SearchUICRef(ctx, req.Term(), req.Limit())
	case mode.Generic:
		records, err = s.searchGeneric(ctx, req.Term(), req.Limit())
	default:
		return nil, fmt.Errorf("unsupported search mode: %s", req.Mode())
	}
	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []facility.Record{}
	}
	if len(records) > req.Limit() {
		records = records[:req.Limit()]
	}

	metrics.SearchResults.WithLabelValues(string(req.Mode())).Observe(float64(len(records)))
	return records, nil
}

// searchName composes the term to NFC so accent folding sees canonical input.
func (s *Service) searchName(ctx context.Context, term string, limit int) ([]facility.Record, error) {
	records, err := s.repo.SearchName(ctx, norm.NFC.String(term), limit)
	if err != nil {
		return nil, fmt.Errorf("name search: %w", err)
	}
	return records, nil
}
