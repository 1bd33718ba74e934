// Package metrics instruments any storage backend with Prometheus
// counters and latency histograms, without the backends knowing about it.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/stashkit/stash/internal/repo"
)

// Recorder holds the metric families shared by all instrumented stores.
type Recorder struct {
	ops      *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder registers the storage metric families on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		ops: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stash_store_operations_total",
			Help: "Storage operations by backend and operation.",
		}, []string{"backend", "op"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stash_store_failures_total",
			Help: "Storage infrastructure failures by backend, operation, and error code.",
		}, []string{"backend", "op", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stash_store_operation_seconds",
			Help:    "Storage operation latency by backend and operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "op"}),
	}
}

// observe records one finished operation. Absence is success; only
// infrastructure failures count as failures, labeled by their code.
func (r *Recorder) observe(backend, op string, started time.Time, err error) {
	r.ops.WithLabelValues(backend, op).Inc()
	r.duration.WithLabelValues(backend, op).Observe(time.Since(started).Seconds())
	if err == nil {
		return
	}
	code := "unknown"
	if se, ok := repo.AsError(err); ok {
		code = string(se.Code)
	}
	r.failures.WithLabelValues(backend, op, code).Inc()
}

// Repository wraps any store with operation metrics. It forwards every
// call unchanged; the identity scheme and result semantics are the
// backend's own.
type Repository[T any, ID comparable] struct {
	next    repo.Repository[T, ID]
	rec     *Recorder
	backend string
}

// Instrument wraps next, labeling its metrics with the backend name.
func Instrument[T any, ID comparable](rec *Recorder, backend string, next repo.Repository[T, ID]) *Repository[T, ID] {
	return &Repository[T, ID]{next: next, rec: rec, backend: backend}
}

// All implements repo.Repository.
func (m *Repository[T, ID]) All(ctx context.Context) ([]T, error) {
	started := time.Now()
	out, err := m.next.All(ctx)
	m.rec.observe(m.backend, "all", started, err)
	return out, err
}

// Get implements repo.Repository.
func (m *Repository[T, ID]) Get(ctx context.Context, id ID) (T, bool, error) {
	started := time.Now()
	out, ok, err := m.next.Get(ctx, id)
	m.rec.observe(m.backend, "get", started, err)
	return out, ok, err
}

// Save implements repo.Repository.
func (m *Repository[T, ID]) Save(ctx context.Context, entity T) (ID, error) {
	started := time.Now()
	id, err := m.next.Save(ctx, entity)
	m.rec.observe(m.backend, "save", started, err)
	return id, err
}

// Searchable additionally forwards Find.
type Searchable[T any, ID comparable] struct {
	Repository[T, ID]
	next repo.Searchable[T, ID]
}

// InstrumentSearchable wraps a searchable store with operation metrics.
func InstrumentSearchable[T any, ID comparable](rec *Recorder, backend string, next repo.Searchable[T, ID]) *Searchable[T, ID] {
	return &Searchable[T, ID]{
		Repository: Repository[T, ID]{next: next, rec: rec, backend: backend},
		next:       next,
	}
}

// Find implements repo.Searchable.
func (m *Searchable[T, ID]) Find(ctx context.Context, creds []repo.Credential, limit int) ([]T, error) {
	started := time.Now()
	out, err := m.next.Find(ctx, creds, limit)
	m.rec.observe(m.backend, "find", started, err)
	return out, err
}
