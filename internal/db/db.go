package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher provides the read-only facility lookups.
type Searcher interface {
	SearchName(ctx context.Context, q *NameQuery) (*ResultSet, error)
	SearchRef(ctx context.Context, q *RefQuery) (*ResultSet, error)
}
