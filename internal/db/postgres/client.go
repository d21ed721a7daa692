package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/openrailwaymap/railsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Default relation names of the OpenRailwayMap search schema.
const (
	DefaultFacilitiesTable = "openrailwaymap_facilities_for_search"
	DefaultRefTable        = "openrailwaymap_ref"
)

// Config holds connection parameters for a PostgreSQL/PostGIS store.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// QueryTimeout bounds a single query; zero leaves it to the caller's context.
	QueryTimeout    time.Duration
	FacilitiesTable string
	RefTable        string
}

// Store implements db.Store via sqlx and lib/pq.
type Store struct {
	conn         *sqlx.DB
	queryTimeout time.Duration
	nameSQL      string
	refSQL       map[db.RefColumn]string
}

// NewStore opens a pooled PostgreSQL handle. It does not dial; use WaitForReady.
func NewStore(cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	conn, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, &db.Error{Op: db.OpConnect, Err: err}
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return newStore(conn, cfg), nil
}

// NewStoreForTest wraps an existing *sql.DB (e.g. sqlmock) as a Store.
func NewStoreForTest(conn *sql.DB, cfg Config) *Store {
	return newStore(sqlx.NewDb(conn, "postgres"), cfg)
}

func newStore(conn *sqlx.DB, cfg Config) *Store {
	facilities := cfg.FacilitiesTable
	if facilities == "" {
		facilities = DefaultFacilitiesTable
	}
	refs := cfg.RefTable
	if refs == "" {
		refs = DefaultRefTable
	}

	return &Store{
		conn:         conn,
		queryTimeout: cfg.QueryTimeout,
		nameSQL:      buildNameSQL(pq.QuoteIdentifier(facilities)),
		refSQL: map[db.RefColumn]string{
			db.RefColumnRailwayRef: buildRefSQL(pq.QuoteIdentifier(refs), db.RefColumnRailwayRef),
			db.RefColumnUICRef:     buildRefSQL(pq.QuoteIdentifier(refs), db.RefColumnUICRef),
		},
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	_ = s.conn.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}
