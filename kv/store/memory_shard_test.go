package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryConfig_GetShardCount covers defaulting and capping of the shard count.
func TestMemoryConfig_GetShardCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  *MemoryConfig
		want int
	}{
		{name: "explicit", cfg: &MemoryConfig{ShardCount: 3}, want: 3},
		{name: "capped", cfg: &MemoryConfig{ShardCount: MaxShardCount + 10}, want: MaxShardCount},
		{name: "max", cfg: &MemoryConfig{ShardCount: MaxShardCount}, want: MaxShardCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.cfg.GetShardCount())
		})
	}

	var nilCfg *MemoryConfig
	assert.GreaterOrEqual(t, nilCfg.GetShardCount(), 1)
	assert.GreaterOrEqual(t, (&MemoryConfig{ShardCount: -5}).GetShardCount(), 1)
}

// TestParseShardHashStrategy checks the accepted spellings and the error path.
func TestParseShardHashStrategy(t *testing.T) {
	t.Parallel()

	tests := map[string]ShardHashStrategy{
		"":        ShardHashDefault,
		"default": ShardHashDefault,
		"xxhash":  ShardHashXXHash,
		"XXHash":  ShardHashXXHash,
		"fnv":     ShardHashFNV,
		" fnv1a ": ShardHashFNV,
	}

	for input, want := range tests {
		got, err := ParseShardHashStrategy(input)
		require.NoErrorf(t, err, "input %q", input)
		assert.Equalf(t, want, got, "input %q", input)
	}

	_, err := ParseShardHashStrategy("sum")
	require.ErrorIs(t, err, ErrOptionsInvalid)
}

// TestFNVShardHash_MatchesReference pins the FNV-1a implementation to known vectors.
func TestFNVShardHash_MatchesReference(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(0xcbf29ce484222325), fnvShardHash(nil))
	assert.Equal(t, uint64(0xaf63dc4c8601ec8c), fnvShardHash([]byte("a")))
	assert.Equal(t, uint64(0x85944171f73967e8), fnvShardHash([]byte("foobar")))
}

// TestHashKey_SpreadsKeys verifies that both strategies use every shard and keep
// the distribution reasonably even.
func TestHashKey_SpreadsKeys(t *testing.T) {
	t.Parallel()

	const (
		shardCount = 16
		keyCount   = 16_000
	)

	for _, strategy := range []ShardHashStrategy{ShardHashXXHash, ShardHashFNV} {
		t.Run(strategy.String(), func(t *testing.T) {
			t.Parallel()

			store := NewMemoryStore(&MemoryConfig{ShardCount: shardCount, ShardHash: strategy})

			for i := range keyCount {
				require.NoError(t, store.Put(fmt.Appendf(nil, "user:%d", i), []byte("v"), nil))
			}

			expected := keyCount / shardCount
			for idx, shard := range store.shards {
				count := shard.entryCount()
				assert.Greaterf(t, count, expected/2, "shard %d is underfilled", idx)
				assert.Lessf(t, count, expected*2, "shard %d is overfilled", idx)
			}
		})
	}
}

// TestHashKey_SingleShard checks the single-shard fast path.
func TestHashKey_SingleShard(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(&MemoryConfig{ShardCount: 1})

	for _, key := range []string{"", "a", "anything"} {
		assert.Zero(t, store.hashKey([]byte(key)))
	}
}
