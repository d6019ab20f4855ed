package store

import (
	"fmt"
	"runtime"
	"strings"
)

// MaxShardCount caps the number of memory shards.
const MaxShardCount = 1024

// ShardHashStrategy selects the function used to map a key onto a shard.
type ShardHashStrategy int

const (
	// ShardHashDefault resolves to ShardHashXXHash.
	ShardHashDefault ShardHashStrategy = iota
	// ShardHashXXHash hashes keys with xxhash64.
	ShardHashXXHash
	// ShardHashFNV hashes keys with 64-bit FNV-1a.
	ShardHashFNV
)

// ParseShardHashStrategy converts a configuration string into a ShardHashStrategy.
// Empty input yields ShardHashDefault.
func ParseShardHashStrategy(name string) (ShardHashStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return ShardHashDefault, nil
	case "xxhash":
		return ShardHashXXHash, nil
	case "fnv", "fnv1a":
		return ShardHashFNV, nil
	default:
		return ShardHashDefault, fmt.Errorf("%w: shard hash %q; valid values are: %q, %q",
			ErrOptionsInvalid, name, "xxhash", "fnv")
	}
}

// String implements fmt.Stringer.
func (s ShardHashStrategy) String() string {
	switch s {
	case ShardHashXXHash:
		return "xxhash"
	case ShardHashFNV:
		return "fnv"
	default:
		return "default"
	}
}

// MemoryConfig holds memory-store-specific configuration.
type MemoryConfig struct {
	// ShardCount sets the number of shards for the memory backend.
	// If <= 0, defaults to runtime.NumCPU().
	// If > MaxShardCount, capped at MaxShardCount.
	ShardCount int
	// ShardHash selects how keys are distributed across shards.
	ShardHash ShardHashStrategy
}

// GetShardCount returns the shard count for the memory store.
// If the shard count is not set, it defaults to runtime.NumCPU().
// If the shard count is greater than MaxShardCount, it is capped at MaxShardCount.
func (cfg *MemoryConfig) GetShardCount() int {
	var shards int
	if cfg != nil {
		shards = cfg.ShardCount
	}

	if shards <= 0 {
		shards = max(1, runtime.NumCPU())
	}

	if shards > MaxShardCount {
		shards = MaxShardCount
	}

	return shards
}

// getShardHash returns the configured hash strategy, tolerating a nil config.
func (cfg *MemoryConfig) getShardHash() ShardHashStrategy {
	if cfg == nil {
		return ShardHashDefault
	}

	return cfg.ShardHash
}
