package railsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dsn             string
	maxOpenConns    int
	maxIdleConns    int
	queryTimeout    time.Duration
	readiness       time.Duration
	facilitiesTable string
	refTable        string

	defaultLimit   int
	maxLimit       int
	parallelFusion bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres sets the PostgreSQL connection string.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dsn = dsn
	})
}

// WithPool bounds the connection pool. Zero keeps the driver default.
func WithPool(maxOpen, maxIdle int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxOpenConns = maxOpen
		c.maxIdleConns = maxIdle
	})
}

// WithQueryTimeout bounds each database query.
func WithQueryTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryTimeout = d
	})
}

// WithReadinessTimeout sets how long New waits for the database. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readiness = d
	})
}

// WithTables overrides the search relation names.
// Defaults: openrailwaymap_facilities_for_search and openrailwaymap_ref.
func WithTables(facilities, ref string) Option {
	return optionFunc(func(c *clientConfig) {
		c.facilitiesTable = facilities
		c.refTable = ref
	})
}

// WithLimits sets the default and maximum result count per query.
// Defaults: 20 and 200.
func WithLimits(defaultLimit, maxLimit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultLimit = defaultLimit
		c.maxLimit = maxLimit
	})
}

// WithParallelFusion runs the three lookups of a generic query concurrently.
// Results are identical to the sequential default.
func WithParallelFusion() Option {
	return optionFunc(func(c *clientConfig) {
		c.parallelFusion = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
