package kv

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "CODB_"

// LoadOption configures LoadOptions.
type LoadOption func(*loader)

// loader layers configuration sources. Later sources override earlier ones:
// defaults, then the YAML file, then environment variables, then overrides.
type loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	overrides map[string]any
}

// WithConfigFile sets the YAML configuration file path.
func WithConfigFile(path string) LoadOption {
	return func(l *loader) {
		l.filePath = path
	}
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix disables env loading.
func WithEnvPrefix(prefix string) LoadOption {
	return func(l *loader) {
		l.envPrefix = prefix
	}
}

// WithOverrides applies dotted keys (e.g. "disk.path") on top of every other source.
// It is how command-line flags reach the configuration.
func WithOverrides(values map[string]any) LoadOption {
	return func(l *loader) {
		if l.overrides == nil {
			l.overrides = make(map[string]any, len(values))
		}

		for key, value := range values {
			l.overrides[key] = value
		}
	}
}

// LoadOptions builds Options from defaults, an optional YAML file, environment
// variables and explicit overrides, then validates the result.
//
// Environment variables use the form CODB_<SECTION>_<KEY>, e.g.
// CODB_DISK_PATH=/var/lib/codb.db or CODB_MEMORY_SHARD_COUNT=64.
func LoadOptions(opts ...LoadOption) (Options, error) {
	l := &loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	if err := l.load(); err != nil {
		return Options{}, err
	}

	var options Options
	if err := l.k.Unmarshal("", &options); err != nil {
		return Options{}, fmt.Errorf("%w: unmarshal: %w", ErrConfigLoadFailed, err)
	}

	if err := options.Validate(); err != nil {
		return Options{}, err
	}

	return options, nil
}

// load reads every configured source in priority order.
func (l *loader) load() error {
	if err := l.k.Load(confmap.Provider(defaultOptionsMap(), "."), nil); err != nil {
		return fmt.Errorf("%w: defaults: %w", ErrConfigLoadFailed, err)
	}

	if l.filePath != "" {
		if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return fmt.Errorf("%w: file %s: %w", ErrConfigLoadFailed, l.filePath, err)
		}
	}

	if l.envPrefix != "" {
		if err := l.k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
			return fmt.Errorf("%w: env: %w", ErrConfigLoadFailed, err)
		}
	}

	if len(l.overrides) > 0 {
		if err := l.k.Load(confmap.Provider(l.overrides, "."), nil); err != nil {
			return fmt.Errorf("%w: overrides: %w", ErrConfigLoadFailed, err)
		}
	}

	return nil
}

// envKey maps CODB_DISK_NO_SYNC to disk.no_sync: the first underscore after the
// prefix separates the section, the rest stays part of the snake_case key.
func (l *loader) envKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, l.envPrefix))

	section, key, found := strings.Cut(name, "_")
	if !found {
		return section
	}

	return section + "." + key
}

// defaultOptionsMap flattens DefaultOptions into koanf keys.
func defaultOptionsMap() map[string]any {
	defaults := DefaultOptions()

	return map[string]any{
		"backend":           defaults.Backend,
		"log.level":         defaults.Log.Level,
		"log.format":        defaults.Log.Format,
		"metrics.enabled":   defaults.Metrics.Enabled,
		"metrics.namespace": defaults.Metrics.Namespace,
	}
}
