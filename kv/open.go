package kv

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/oshokin/codb/kv/store"
)

// OpenOption customizes Open.
type OpenOption func(*openConfig)

type openConfig struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
}

// WithLogger attaches a logger. The returned DB logs lifecycle events and failures.
func WithLogger(logger *zap.Logger) OpenOption {
	return func(c *openConfig) {
		c.logger = logger
	}
}

// WithRegisterer registers the store's collectors with r when Options.Metrics.Enabled is set.
func WithRegisterer(r prometheus.Registerer) OpenOption {
	return func(c *openConfig) {
		c.registerer = r
	}
}

// Open validates opts and builds the selected backend.
// Without a logger or registerer the bare backend is returned;
// otherwise it is wrapped in an InstrumentedDB.
func Open(opts Options, openOpts ...OpenOption) (store.DB, error) {
	var cfg openConfig
	for _, o := range openOpts {
		o(&cfg)
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	db, err := openBackend(&opts)
	if err != nil {
		return nil, err
	}

	if cfg.logger != nil {
		cfg.logger.Info("store opened",
			zap.String("backend", opts.Backend),
			zap.Uint64("keys", db.Stats().KeyCount),
		)
	}

	registerer := cfg.registerer
	if !opts.Metrics.Enabled {
		registerer = nil
	}

	if cfg.logger == nil && registerer == nil {
		return db, nil
	}

	instrumented, err := NewInstrumentedDB(db, InstrumentConfig{
		Backend:    opts.Backend,
		Namespace:  opts.Metrics.Namespace,
		Logger:     cfg.logger,
		Registerer: registerer,
	})
	if err != nil {
		return nil, multierr.Append(err, db.Close())
	}

	return instrumented, nil
}

// openBackend constructs the backend named by opts.Backend. opts must be validated.
func openBackend(opts *Options) (store.DB, error) {
	switch opts.Backend {
	case BackendDisk:
		cfg, err := opts.Disk.ToDiskConfig()
		if err != nil {
			return nil, err
		}

		return store.OpenDiskStore(cfg)
	default:
		cfg, err := opts.Memory.ToMemoryConfig()
		if err != nil {
			return nil, err
		}

		return store.NewMemoryStore(cfg), nil
	}
}
