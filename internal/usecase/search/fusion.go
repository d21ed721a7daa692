package search

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/openrailwaymap/railsearch/internal/domain/facility"
)

// searchGeneric runs name, ref and UIC lookups with the same limit and fuses them.
func (s *Service) searchGeneric(ctx context.Context, term string, limit int) ([]facility.Record, error) {
	lookups := []func(context.Context) ([]facility.Record, error){
		func(ctx context.Context) ([]facility.Record, error) { return s.searchName(ctx, term, limit) },
		func(ctx context.Context) ([]facility.Record, error) { return s.repo.SearchRef(ctx, term, limit) },
		func(ctx context.Context) ([]facility.Record, error) { return s.repo.SearchUICRef(ctx, term, limit) },
	}

	groups := make([][]facility.Record, len(lookups))

	if !s.parallel {
		for i, lookup := range lookups {
			recs, err := lookup(ctx)
			if err != nil {
				return nil, fmt.Errorf("generic search: %w", err)
			}
			groups[i] = recs
		}
		return fuse(limit, groups...), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, lookup := range lookups {
		g.Go(func() error {
			recs, err := lookup(gctx)
			if err != nil {
				return err
			}
			groups[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generic search: %w", err)
	}
	return fuse(limit, groups...), nil
}

// fuse concatenates groups in order, orders the result by osm_id (stable),
// drops records whose osm_id equals their predecessor's and truncates to limit.
func fuse(limit int, groups ...[]facility.Record) []facility.Record {
	var total int
	for _, g := range groups {
		total += len(g)
	}
	all := make([]facility.Record, 0, total)
	for _, g := range groups {
		all = append(all, g...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].OsmID() < all[j].OsmID()
	})

	out := make([]facility.Record, 0, len(all))
	for i := range all {
		if n := len(out); n > 0 && out[n-1].OsmID() == all[i].OsmID() {
			continue
		}
		out = append(out, all[i])
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
