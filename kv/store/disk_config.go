package store

import (
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DiskConfig holds the bbolt file location and validated bbolt tuning knobs.
// Nil pointer fields keep bbolt's defaults.
type DiskConfig struct {
	// Path is the bbolt file. Empty selects DefaultDiskStorePath.
	Path string
	// Timeout is the amount of time to wait to obtain a file lock.
	// When set to zero it will wait indefinitely.
	Timeout *time.Duration
	// NoSync skips fsync after each commit. Recent commits can be lost on crash.
	NoSync *bool
	// NoGrowSync sets the DB.NoGrowSync flag before memory mapping the file.
	NoGrowSync *bool
	// NoFreelistSync disables syncing the freelist to disk; it is rebuilt on open instead.
	NoFreelistSync *bool
	// PreLoadFreelist loads the free pages when opening the file.
	PreLoadFreelist *bool
	// FreelistType selects the freelist representation. Valid values: "array" or "map".
	FreelistType *string
	// ReadOnly opens the file with a shared lock; Put and Delete then return ErrNotSupported.
	ReadOnly *bool
	// InitialMmapSize is the initial mmap size of the database in bytes.
	// Read transactions won't block the write transaction while the file fits in it.
	InitialMmapSize *int
	// Mlock locks the database file in memory (UNIX only).
	Mlock *bool
}

// validate validates the DiskConfig.
func (cfg *DiskConfig) validate() error {
	if cfg == nil {
		return nil
	}

	if cfg.Timeout != nil && *cfg.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be non-negative", ErrOptionsInvalid)
	}

	if cfg.InitialMmapSize != nil && *cfg.InitialMmapSize < 0 {
		return fmt.Errorf("%w: initialMmapSize must be non-negative", ErrOptionsInvalid)
	}

	return nil
}

// isReadOnly reports whether the file is opened read-only.
func (cfg *DiskConfig) isReadOnly() bool {
	return cfg != nil && cfg.ReadOnly != nil && *cfg.ReadOnly
}

// buildBBoltOptions builds bolt.Options from DiskConfig.
// If cfg is nil, returns nil so bbolt applies its own defaults.
func buildBBoltOptions(cfg *DiskConfig) (*bolt.Options, error) {
	if cfg == nil {
		//nolint:nilnil // nil options are a valid request for bbolt defaults.
		return nil, nil
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Start from bbolt's defaults to avoid changing behavior when new fields are added.
	opts := *bolt.DefaultOptions

	if cfg.Timeout != nil {
		opts.Timeout = *cfg.Timeout
	}

	if cfg.NoSync != nil {
		opts.NoSync = *cfg.NoSync
	}

	if cfg.NoGrowSync != nil {
		opts.NoGrowSync = *cfg.NoGrowSync
	}

	if cfg.NoFreelistSync != nil {
		opts.NoFreelistSync = *cfg.NoFreelistSync
	}

	if cfg.PreLoadFreelist != nil {
		opts.PreLoadFreelist = *cfg.PreLoadFreelist
	}

	if cfg.FreelistType != nil {
		switch strings.ToLower(*cfg.FreelistType) {
		case "", "array":
			opts.FreelistType = bolt.FreelistArrayType
		case "map":
			opts.FreelistType = bolt.FreelistMapType
		default:
			return nil, fmt.Errorf("%w: freelistType: %q", ErrOptionsInvalid, *cfg.FreelistType)
		}
	}

	if cfg.ReadOnly != nil {
		opts.ReadOnly = *cfg.ReadOnly
	}

	if cfg.InitialMmapSize != nil {
		opts.InitialMmapSize = *cfg.InitialMmapSize
	}

	if cfg.Mlock != nil {
		opts.Mlock = *cfg.Mlock
	}

	return &opts, nil
}
