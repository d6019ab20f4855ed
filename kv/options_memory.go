package kv

import (
	"fmt"

	"github.com/oshokin/codb/kv/store"
)

// MemoryOptions exposes memory backend tuning knobs.
type MemoryOptions struct {
	// ShardCount sets the number of shards for the memory backend.
	// If <= 0, defaults to runtime.NumCPU() (automatic).
	// If > store.MaxShardCount, capped at store.MaxShardCount.
	ShardCount int `koanf:"shard_count" yaml:"shard_count"`

	// ShardHash selects the key distribution function: "xxhash" (default) or "fnv".
	ShardHash string `koanf:"shard_hash" yaml:"shard_hash"`
}

// Validate validates MemoryOptions and returns an error if invalid.
func (mo *MemoryOptions) Validate() error {
	if _, err := store.ParseShardHashStrategy(mo.ShardHash); err != nil {
		return fmt.Errorf("memory.shard_hash: %w", err)
	}

	return nil
}

// ToMemoryConfig converts MemoryOptions into a store-level MemoryConfig.
func (mo *MemoryOptions) ToMemoryConfig() (*store.MemoryConfig, error) {
	strategy, err := store.ParseShardHashStrategy(mo.ShardHash)
	if err != nil {
		return nil, fmt.Errorf("memory.shard_hash: %w", err)
	}

	return &store.MemoryConfig{
		ShardCount: mo.ShardCount,
		ShardHash:  strategy,
	}, nil
}
