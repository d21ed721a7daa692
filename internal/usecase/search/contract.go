package search

import (
	"context"

	"github.com/openrailwaymap/railsearch/internal/domain/facility"
)

// Repository defines the storage contract for facility lookups.
type Repository interface {
	SearchName(ctx context.Context, term string, limit int) ([]facility.Record, error)
	SearchRef(ctx context.Context, ref string, limit int) ([]facility.Record, error)
	SearchUICRef(ctx context.Context, uicRef string, limit int) ([]facility.Record, error)
}
