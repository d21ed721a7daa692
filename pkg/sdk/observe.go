package railsearch

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/openrailwaymap/railsearch/internal/domain"
)

// Operation outcomes, used as the status label.
const (
	statusOK       = "ok"
	statusRejected = "rejected"
	statusError    = "error"
)

// modeNone labels operations that never resolved a search mode.
const modeNone = "none"

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	results    *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "railsearch",
		Subsystem: "sdk",
		Name:      "operations_total",
		Help:      "SDK operations by search mode and outcome (ok, rejected, error).",
	}, []string{"operation", "mode", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "railsearch",
		Subsystem: "sdk",
		Name:      "operation_duration_seconds",
		Help:      "SDK operation latency.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"operation", "mode"})
	results := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "railsearch",
		Subsystem: "sdk",
		Name:      "facilities_returned",
		Help:      "Facilities returned per successful search.",
		Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 200},
	}, []string{"mode"})

	m := &sdkMetrics{}
	var err error
	if m.operations, err = register(reg, operations); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if m.results, err = register(reg, results); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg. When a second client shares the registry, the
// collector registered first is returned instead.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, fmt.Errorf("railsearch: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("railsearch: metric already registered as %T", are.ExistingCollector)
	}
	return existing, nil
}

// observer reports SDK operations to slog and prometheus. Both sinks are optional.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// span tracks one operation from start to finish.
type span struct {
	obs     *observer
	op      string
	mode    string
	start   time.Time
	results int
	counted bool
}

// begin starts a span. A nil observer yields a span whose finish does nothing.
func (o *observer) begin(op string) *span {
	return &span{obs: o, op: op, mode: modeNone, start: time.Now()}
}

func (s *span) setMode(mode string) { s.mode = mode }

func (s *span) setResults(n int) {
	s.results = n
	s.counted = true
}

// finish classifies err and emits the metrics and log line.
func (s *span) finish(err error) {
	o := s.obs
	if o == nil {
		return
	}
	dur := time.Since(s.start)
	status, errType := classify(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(s.op, s.mode, status).Inc()
		o.metrics.duration.WithLabelValues(s.op, s.mode).Observe(dur.Seconds())
		if s.counted && status == statusOK {
			o.metrics.results.WithLabelValues(s.mode).Observe(float64(s.results))
		}
	}

	if o.logger == nil {
		return
	}
	attrs := []any{"op", s.op, "mode", s.mode, "duration", dur}
	switch status {
	case statusRejected:
		o.logger.Info("request rejected", append(attrs, "error_type", errType, "error", err)...)
	case statusError:
		o.logger.Warn("operation failed", append(attrs, "error", err)...)
	default:
		if s.counted {
			attrs = append(attrs, "results", s.results)
		}
		o.logger.Debug("operation completed", attrs...)
	}
}

// classify separates caller mistakes from backend failures.
func classify(err error) (status string, errType domain.ErrorType) {
	if err == nil {
		return statusOK, ""
	}
	var re *domain.RequestError
	if errors.As(err, &re) {
		return statusRejected, re.Type
	}
	return statusError, ""
}
