package kv

import (
	"fmt"
	"math"
	"strings"

	"github.com/oshokin/codb/kv/store"
)

// DiskOptions exposes the bbolt file location and a curated subset of bbolt.Options.
//
// Goals:
//   - Let users tune the big, understandable trade-offs:
//   - lock timeout,
//   - durability vs throughput,
//   - freelist behavior for large DBs,
//   - read-only vs read-write.
//   - Keep low-level OS-specific knobs (OpenFile, Logger, MmapFlags, PageSize)
//     internal so we don't drown users in rarely-used settings.
type DiskOptions struct {
	// Path points to the bbolt file. Empty selects store.DefaultDiskStorePath.
	Path string `koanf:"path" yaml:"path"`

	// Timeout controls how long bbolt waits to acquire the file lock.
	//
	// When zero, bbolt waits indefinitely, which hangs if another process holds
	// the lock. Setting a finite timeout makes that misconfiguration fail fast.
	//
	// Accepted types:
	//   - number: milliseconds.
	//   - string: Go duration, e.g. "1s", "500ms", "1.5s".
	Timeout any `koanf:"timeout" yaml:"timeout,omitempty"`

	// NoSync maps to Options.NoSync.
	//
	// When true, bbolt will not fsync on each commit. Recent commits can be lost
	// if the process or machine crashes.
	NoSync *bool `koanf:"no_sync" yaml:"no_sync,omitempty"`

	// NoGrowSync maps to Options.NoGrowSync.
	NoGrowSync *bool `koanf:"no_grow_sync" yaml:"no_grow_sync,omitempty"`

	// NoFreelistSync maps to Options.NoFreelistSync.
	//
	// When true, the freelist is rebuilt at open time instead of being synced.
	NoFreelistSync *bool `koanf:"no_freelist_sync" yaml:"no_freelist_sync,omitempty"`

	// PreLoadFreelist maps to Options.PreLoadFreelist.
	PreLoadFreelist *bool `koanf:"preload_freelist" yaml:"preload_freelist,omitempty"`

	// FreelistType selects the internal freelist representation.
	//
	// Valid values:
	//   - "": use bbolt default ("array").
	//   - "array": simple slice-based freelist (default; fine for small DBs).
	//   - "map": hashmap-based freelist; usually faster on large, fragmented DBs.
	FreelistType *string `koanf:"freelist_type" yaml:"freelist_type,omitempty"`

	// ReadOnly opens the file with a shared lock; writes then fail with NotSupportedError.
	ReadOnly *bool `koanf:"read_only" yaml:"read_only,omitempty"`

	// InitialMmapSize maps to Options.InitialMmapSize (bytes).
	//
	// Accepted types:
	//   - number: bytes.
	//   - string: size, e.g. "64MB", "1GiB".
	InitialMmapSize any `koanf:"initial_mmap_size" yaml:"initial_mmap_size,omitempty"`

	// Mlock maps to Options.Mlock (UNIX only).
	Mlock *bool `koanf:"mlock" yaml:"mlock,omitempty"`
}

// Validate validates DiskOptions and returns an error if invalid.
func (do *DiskOptions) Validate() error {
	if do.Timeout != nil {
		if _, err := parseDurationValue(do.Timeout); err != nil {
			return fmt.Errorf("%w: disk.timeout: %w", store.ErrOptionsInvalid, err)
		}
	}

	if do.InitialMmapSize != nil {
		if _, err := parseSizeValue(do.InitialMmapSize); err != nil {
			return fmt.Errorf("%w: disk.initial_mmap_size: %w", store.ErrOptionsInvalid, err)
		}
	}

	if do.FreelistType != nil {
		switch strings.ToLower(*do.FreelistType) {
		case "", "array", "map":
		default:
			return fmt.Errorf("%w: disk.freelist_type: %q", store.ErrOptionsInvalid, *do.FreelistType)
		}
	}

	return nil
}

// ToDiskConfig converts DiskOptions into a store-level DiskConfig with parsed values.
func (do *DiskOptions) ToDiskConfig() (*store.DiskConfig, error) {
	cfg := &store.DiskConfig{Path: do.Path}

	if do.Timeout != nil {
		duration, err := parseDurationValue(do.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: disk.timeout: %w", store.ErrOptionsInvalid, err)
		}

		cfg.Timeout = &duration
	}

	cfg.NoSync = copyPointer(do.NoSync)
	cfg.NoGrowSync = copyPointer(do.NoGrowSync)
	cfg.NoFreelistSync = copyPointer(do.NoFreelistSync)
	cfg.PreLoadFreelist = copyPointer(do.PreLoadFreelist)
	cfg.ReadOnly = copyPointer(do.ReadOnly)
	cfg.Mlock = copyPointer(do.Mlock)
	cfg.FreelistType = normalizeStringPointer(do.FreelistType)

	if do.InitialMmapSize != nil {
		size, err := parseSizeValue(do.InitialMmapSize)
		if err != nil {
			return nil, fmt.Errorf("%w: disk.initial_mmap_size: %w", store.ErrOptionsInvalid, err)
		}

		if size > math.MaxInt {
			return nil, fmt.Errorf("%w: disk.initial_mmap_size too large: %d", store.ErrOptionsInvalid, size)
		}

		intSize := int(size)
		cfg.InitialMmapSize = &intSize
	}

	return cfg, nil
}
