package facility

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openrailwaymap/railsearch/internal/db"
	"github.com/openrailwaymap/railsearch/internal/domain/facility"
	"github.com/openrailwaymap/railsearch/internal/metrics"
)

// Strategy labels used in logs and metrics.
const (
	StrategyName   = "name"
	StrategyRef    = "ref"
	StrategyUICRef = "uic_ref"
)

// store is the consumer interface for facility lookups (ISP).
type store interface {
	SearchName(ctx context.Context, q *db.NameQuery) (*db.ResultSet, error)
	SearchRef(ctx context.Context, q *db.RefQuery) (*db.ResultSet, error)
}

// Repo implements usecase/search.Repository on top of a db store.
// Every call is timed and counted per strategy.
type Repo struct {
	store  store
	logger *zap.Logger
}

// New creates a facility repository.
func New(s store, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, logger: logger}
}

// SearchName runs the ranked full-text lookup and normalizes the rows.
func (r *Repo) SearchName(ctx context.Context, term string, limit int) ([]facility.Record, error) {
	start := time.Now()
	rs, err := r.store.SearchName(ctx, &db.NameQuery{Term: term, Limit: limit})
	r.observe(StrategyName, start, err)
	if err != nil {
		return nil, fmt.Errorf("search name: %w", err)
	}
	return normalizeAll(rs), nil
}

// SearchRef runs the exact lookup on the operator reference column.
func (r *Repo) SearchRef(ctx context.Context, ref string, limit int) ([]facility.Record, error) {
	return r.searchRef(ctx, StrategyRef, db.RefColumnRailwayRef, ref, limit)
}

// SearchUICRef runs the exact lookup on the UIC identifier column.
func (r *Repo) SearchUICRef(ctx context.Context, uicRef string, limit int) ([]facility.Record, error) {
	return r.searchRef(ctx, StrategyUICRef, db.RefColumnUICRef, uicRef, limit)
}

func (r *Repo) searchRef(
	ctx context.Context, strategy string, column db.RefColumn, value string, limit int,
) ([]facility.Record, error) {
	start := time.Now()
	rs, err := r.store.SearchRef(ctx, &db.RefQuery{Column: column, Value: value, Limit: limit})
	r.observe(strategy, start, err)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", strategy, err)
	}
	return normalizeAll(rs), nil
}

func (r *Repo) observe(strategy string, start time.Time, err error) {
	duration := time.Since(start)
	metrics.StoreQueryDuration.WithLabelValues(strategy).Observe(duration.Seconds())

	if err != nil {
		metrics.StoreQueriesTotal.WithLabelValues(strategy, "error").Inc()
		r.logger.Error("Store query failed",
			zap.String("strategy", strategy),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}
	metrics.StoreQueriesTotal.WithLabelValues(strategy, "success").Inc()
}

func normalizeAll(rs *db.ResultSet) []facility.Record {
	if rs.Len() == 0 {
		return []facility.Record{}
	}
	out := make([]facility.Record, 0, rs.Len())
	for _, row := range rs.Rows {
		out = append(out, facility.Normalize(row))
	}
	return out
}
