package kv

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/codb/kv/store"
)

// DefaultMetricsNamespace prefixes metric names when MetricsOptions.Namespace is empty.
const DefaultMetricsNamespace = "codb"

// Operation names used as the "op" label and in log entries.
const (
	opGet    = "get"
	opPut    = "put"
	opDelete = "delete"
	opHas    = "has"
	opPing   = "ping"
	opClose  = "close"
)

// InstrumentConfig describes how an InstrumentedDB reports.
type InstrumentConfig struct {
	// Backend is attached to every metric as a constant label and to every log entry.
	Backend string
	// Namespace prefixes metric names. Empty selects DefaultMetricsNamespace.
	Namespace string
	// Logger receives lifecycle and failure logs. Nil disables logging.
	Logger *zap.Logger
	// Registerer receives the collectors. Nil disables metrics.
	Registerer prometheus.Registerer
}

// InstrumentedDB decorates a store.DB with Prometheus metrics and zap logs.
// Results and errors of the wrapped DB pass through unchanged.
type InstrumentedDB struct {
	db         store.DB
	logger     *zap.Logger
	registerer prometheus.Registerer
	collectors []prometheus.Collector

	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec

	unregisterOnce sync.Once
}

var _ store.DB = (*InstrumentedDB)(nil)

// NewInstrumentedDB wraps db. Collectors are registered with cfg.Registerer, and
// registration conflicts (for example a second store with the same namespace and
// backend on one registry) are returned as errors.
func NewInstrumentedDB(db store.DB, cfg InstrumentConfig) (*InstrumentedDB, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = DefaultMetricsNamespace
	}

	i := &InstrumentedDB{
		db:         db,
		logger:     logger.With(zap.String("backend", cfg.Backend)),
		registerer: cfg.Registerer,
	}

	if cfg.Registerer == nil {
		return i, nil
	}

	constLabels := prometheus.Labels{"backend": cfg.Backend}

	i.operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "operations_total",
			Help:        "Total number of store operations by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"op", "result"},
	)

	i.latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "operation_duration_seconds",
			Help:        "Duration of store operations in seconds.",
			ConstLabels: constLabels,
			// From sub-microsecond map hits to multi-millisecond fsyncs.
			Buckets: prometheus.ExponentialBuckets(0.000_000_5, 4, 12),
		},
		[]string{"op"},
	)

	keys := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "keys",
			Help:        "Number of live records.",
			ConstLabels: constLabels,
		},
		func() float64 {
			return float64(db.Stats().KeyCount)
		},
	)

	// Size is computed by a full scan on every collection.
	sizeBytes := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "size_bytes",
			Help:        "Total bytes of live keys and values; negative when unknown.",
			ConstLabels: constLabels,
		},
		func() float64 {
			return float64(db.Size())
		},
	)

	for _, collector := range []prometheus.Collector{i.operations, i.latency, keys, sizeBytes} {
		if err := cfg.Registerer.Register(collector); err != nil {
			i.unregister()

			return nil, fmt.Errorf("%w: %w", ErrMetricsRegisterFailed, err)
		}

		i.collectors = append(i.collectors, collector)
	}

	return i, nil
}

// Get implements store.DB.
func (i *InstrumentedDB) Get(key []byte, opts *store.ReadOptions) ([]byte, error) {
	start := time.Now()
	value, err := i.db.Get(key, opts)
	i.observe(opGet, key, start, err)

	return value, err
}

// Put implements store.DB.
func (i *InstrumentedDB) Put(key, value []byte, opts *store.WriteOptions) error {
	start := time.Now()
	err := i.db.Put(key, value, opts)
	i.observe(opPut, key, start, err)

	return err
}

// Delete implements store.DB.
func (i *InstrumentedDB) Delete(key []byte, opts *store.WriteOptions) error {
	start := time.Now()
	err := i.db.Delete(key, opts)
	i.observe(opDelete, key, start, err)

	return err
}

// Has implements store.DB.
func (i *InstrumentedDB) Has(key []byte, opts *store.ReadOptions) (bool, error) {
	start := time.Now()
	found, err := i.db.Has(key, opts)
	i.observe(opHas, key, start, err)

	return found, err
}

// Stats implements store.DB.
func (i *InstrumentedDB) Stats() store.DBStats {
	return i.db.Stats()
}

// Size implements store.DB.
func (i *InstrumentedDB) Size() int64 {
	return i.db.Size()
}

// Close closes the wrapped DB and unregisters the collectors.
func (i *InstrumentedDB) Close() error {
	start := time.Now()
	wasClosed := i.db.IsClosed()
	err := i.db.Close()
	i.observe(opClose, nil, start, err)

	if !wasClosed {
		stats := i.db.Stats()
		i.logger.Info("store closed", zap.Uint64("keys", stats.KeyCount), zap.Error(err))
	}

	i.unregister()

	return err
}

// IsClosed implements store.DB.
func (i *InstrumentedDB) IsClosed() bool {
	return i.db.IsClosed()
}

// Ping implements store.DB.
func (i *InstrumentedDB) Ping() error {
	start := time.Now()
	err := i.db.Ping()
	i.observe(opPing, nil, start, err)

	return err
}

// Inner returns the decorated DB.
func (i *InstrumentedDB) Inner() store.DB {
	return i.db
}

// observe records metrics and logs for one operation.
func (i *InstrumentedDB) observe(op string, key []byte, start time.Time, err error) {
	elapsed := time.Since(start)
	result := resultLabel(err)

	if i.operations != nil {
		i.operations.WithLabelValues(op, result).Inc()
		i.latency.WithLabelValues(op).Observe(elapsed.Seconds())
	}

	if err != nil && !isExpected(err) {
		i.logger.Warn("store operation failed",
			zap.String("op", op),
			zap.ByteString("key", key),
			zap.String("result", result),
			zap.Error(err),
		)

		return
	}

	if ce := i.logger.Check(zapcore.DebugLevel, "store operation"); ce != nil {
		ce.Write(
			zap.String("op", op),
			zap.ByteString("key", key),
			zap.String("result", result),
			zap.Duration("elapsed", elapsed),
		)
	}
}

// unregister removes the collectors from the registerer, once.
func (i *InstrumentedDB) unregister() {
	if i.registerer == nil {
		return
	}

	i.unregisterOnce.Do(func() {
		for _, collector := range i.collectors {
			i.registerer.Unregister(collector)
		}
	})
}

// isExpected reports whether err is part of normal operation (a miss or a closed store).
func isExpected(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrClosed)
}
