package railsearch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/openrailwaymap/railsearch/internal/db"
	dbPostgres "github.com/openrailwaymap/railsearch/internal/db/postgres"
	"github.com/openrailwaymap/railsearch/internal/domain/facility"
	"github.com/openrailwaymap/railsearch/internal/domain/search/request"
	facilityrepo "github.com/openrailwaymap/railsearch/internal/repository/facility"
	healthuc "github.com/openrailwaymap/railsearch/internal/usecase/health"
	searchuc "github.com/openrailwaymap/railsearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	healthCheckTimeout      = 2 * time.Second
)

// Internal interfaces, swapped out in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) ([]facility.Record, error)
}

// Client is the railsearch SDK entry point.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	healthSvc healthUseCase
	limits    request.Limits
	obs       *observer
}

// New creates a railsearch Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readiness: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dsn == "" {
		return nil, errors.New("railsearch: database dsn required (use WithPostgres)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbPostgres.NewStore(dbPostgres.Config{
		DSN:             cfg.dsn,
		MaxOpenConns:    cfg.maxOpenConns,
		MaxIdleConns:    cfg.maxIdleConns,
		QueryTimeout:    cfg.queryTimeout,
		FacilitiesTable: cfg.facilitiesTable,
		RefTable:        cfg.refTable,
	})
	if err != nil {
		return nil, fmt.Errorf("railsearch: create postgres store: %w", err)
	}

	if err := store.WaitForReady(ctx, cfg.readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("railsearch: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	repo := facilityrepo.New(store, nil)
	searchSvc := searchuc.New(repo, searchuc.WithParallelFusion(cfg.parallelFusion))

	return &Client{
		store:     store,
		searchSvc: searchSvc,
		healthSvc: healthuc.New(store, healthCheckTimeout),
		limits:    request.Limits{Default: cfg.defaultLimit, Max: cfg.maxLimit},
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	sp := c.obs.begin("ping")
	err := c.store.Ping(ctx)
	if err != nil {
		err = fmt.Errorf("ping: %w", err)
	}
	sp.finish(err)
	return err
}

// Facilities searches railway facilities. Invalid queries fail with a
// *RequestError before any database round trip.
func (c *Client) Facilities(ctx context.Context, q FacilityQuery) (out []Facility, err error) {
	sp := c.obs.begin("facilities")
	defer func() { sp.finish(err) }()

	req, err := request.Parse(paramsFromQuery(q), c.limits)
	if err != nil {
		return nil, fmt.Errorf("facilities: %w", err)
	}
	sp.setMode(string(req.Mode()))

	records, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("facilities: %w", err)
	}

	out = make([]Facility, 0, len(records))
	for _, r := range records {
		out = append(out, facilityFromRecord(r))
	}
	sp.setResults(len(out))
	return out, nil
}

func paramsFromQuery(q FacilityQuery) request.Params {
	opt := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	p := request.Params{
		Q:      opt(q.Q),
		Name:   opt(q.Name),
		Ref:    opt(q.Ref),
		UICRef: opt(q.UICRef),
	}
	if q.Limit != 0 {
		p.Limit = opt(strconv.Itoa(q.Limit))
	}
	return p
}
