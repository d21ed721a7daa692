package railsearch

import (
	"context"

	"github.com/openrailwaymap/railsearch/internal/domain/facility"
	"github.com/openrailwaymap/railsearch/internal/domain/search/request"
	healthuc "github.com/openrailwaymap/railsearch/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *request.Request) ([]facility.Record, error)
	calls    []request.Request
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) ([]facility.Record, error) {
	m.calls = append(m.calls, *req)
	return m.searchFn(ctx, req)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}

func newTestClient(search searchUseCase, health healthUseCase, obs *observer) *Client {
	return &Client{
		searchSvc: search,
		healthSvc: health,
		limits:    request.DefaultLimits(),
		obs:       obs,
	}
}
