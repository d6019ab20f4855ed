package kv

import (
	"fmt"
	"strings"

	"github.com/oshokin/codb/kv/store"
)

const (
	// BackendDisk is the persistent store backed by a bbolt file.
	BackendDisk = "disk"
	// BackendMemory is an in-memory, process-local store (fast, ephemeral).
	BackendMemory = "memory"

	// DefaultBackend is used when the configuration does not name a backend.
	DefaultBackend = BackendMemory
)

// Options controls which backend Open builds and how it is observed.
type Options struct {
	// Backend selects the storage engine.
	// Valid values: "memory" (ephemeral), "disk" (persistent).
	Backend string `koanf:"backend" yaml:"backend"`

	// Memory contains memory-backend specific configuration.
	// Ignored by the "disk" backend.
	Memory MemoryOptions `koanf:"memory" yaml:"memory"`

	// Disk contains bbolt-specific configuration for the "disk" backend.
	// Ignored by the "memory" backend.
	Disk DiskOptions `koanf:"disk" yaml:"disk"`

	// Log configures the zap logger built by NewLogger.
	Log LogOptions `koanf:"log" yaml:"log"`

	// Metrics configures the Prometheus collectors attached by Open.
	Metrics MetricsOptions `koanf:"metrics" yaml:"metrics"`
}

// LogOptions configures structured logging.
type LogOptions struct {
	// Level is the minimum level: "debug", "info", "warn" or "error".
	Level string `koanf:"level" yaml:"level"`
	// Format is "json" or "console".
	Format string `koanf:"format" yaml:"format"`
}

// MetricsOptions configures instrumentation.
type MetricsOptions struct {
	// Enabled wraps the backend in an InstrumentedDB when a registerer is supplied to Open.
	Enabled bool `koanf:"enabled" yaml:"enabled"`
	// Namespace prefixes every metric name.
	Namespace string `koanf:"namespace" yaml:"namespace"`
}

// DefaultOptions returns the configuration used when no source overrides it.
func DefaultOptions() Options {
	return Options{
		Backend: DefaultBackend,
		Log: LogOptions{
			Level:  DefaultLogLevel,
			Format: LogFormatJSON,
		},
		Metrics: MetricsOptions{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// Validate checks the options and normalizes the backend name and disk path.
// It's intentionally strict to fail fast on invalid configs.
func (o *Options) Validate() error {
	o.Backend = strings.ToLower(strings.TrimSpace(o.Backend))
	if o.Backend == "" {
		o.Backend = DefaultBackend
	}

	switch o.Backend {
	case BackendMemory:
		if err := o.Memory.Validate(); err != nil {
			return err
		}
	case BackendDisk:
		canonicalPath, err := store.ResolveDiskPath(o.Disk.Path)
		if err != nil {
			return err
		}

		o.Disk.Path = canonicalPath

		if err := o.Disk.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf(
			"%w: %q; valid values are: %q, %q",
			ErrInvalidBackend, o.Backend, BackendMemory, BackendDisk,
		)
	}

	if _, err := parseLogLevel(o.Log.Level); err != nil {
		return err
	}

	if err := validateLogFormat(o.Log.Format); err != nil {
		return err
	}

	return nil
}
