package store

import (
	"fmt"
	"sync"
	"sync/atomic"

	xxhash "github.com/cespare/xxhash/v2"
)

type (
	// memoryShard is one independently locked partition of the memory store.
	memoryShard struct {
		// container maps keys (as strings, for hashing) to owned value copies.
		container map[string][]byte
		// mu protects container.
		mu sync.RWMutex
	}

	// shardHashFunc is the function to use to hash the key to a shard.
	shardHashFunc func([]byte) uint64
)

// Standard 64-bit FNV-1a parameters, inlined to keep hashing allocation-free.
const (
	// fnv1aOffset64 is the standard 64-bit FNV-1a offset basis.
	fnv1aOffset64 = 14695981039346656037
	// fnv1aPrime64 is the standard 64-bit FNV-1a prime.
	fnv1aPrime64 = 1099511628211
)

// selectShardHashFunc selects the function to use to hash the key to a shard.
func selectShardHashFunc(strategy ShardHashStrategy) shardHashFunc {
	switch strategy {
	case ShardHashFNV:
		return fnvShardHash
	case ShardHashXXHash, ShardHashDefault:
		return xxhashShardHash
	default:
		return xxhashShardHash
	}
}

// xxhashShardHash hashes the key with xxhash.
func xxhashShardHash(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// fnvShardHash hashes the key with FNV-1a.
func fnvShardHash(key []byte) uint64 {
	hash := uint64(fnv1aOffset64)

	for _, b := range key {
		hash ^= uint64(b)
		hash *= fnv1aPrime64
	}

	return hash
}

// newMemoryShards allocates count empty shards.
func newMemoryShards(count int) []*memoryShard {
	shards := make([]*memoryShard, count)
	for i := range shards {
		shards[i] = &memoryShard{container: make(map[string][]byte)}
	}

	return shards
}

// getShardByKey gets the shard by the key.
func (s *MemoryStore) getShardByKey(key []byte) *memoryShard {
	return s.shards[s.hashKey(key)]
}

// hashKey hashes the key to a shard index.
func (s *MemoryStore) hashKey(key []byte) int {
	if len(s.shards) == 1 {
		return 0
	}

	//nolint:gosec // len(s.shards) is always >= 1, see NewMemoryStore.
	return int(s.hashFn(key) % uint64(len(s.shards)))
}

// load returns a copy of the value stored under key.
func (sh *memoryShard) load(key []byte) ([]byte, bool) {
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	// The string(key) conversion in a map index does not allocate.
	value, ok := sh.container[string(key)]
	if !ok {
		return nil, false
	}

	return cloneBytes(value), true
}

// contains reports whether key is present.
func (sh *memoryShard) contains(key []byte) bool {
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	_, ok := sh.container[string(key)]

	return ok
}

// store upserts value under key and increments keyCount when the key was absent.
// value must already be owned by the store. The counter changes under the shard
// lock, so per-key increments and decrements are never reordered.
func (sh *memoryShard) store(key, value []byte, keyCount *atomic.Int64) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	k := string(key)
	_, existed := sh.container[k]
	sh.container[k] = value

	if !existed {
		keyCount.Add(1)
	}
}

// remove deletes key and decrements keyCount when a record was removed.
func (sh *memoryShard) remove(key []byte, keyCount *atomic.Int64) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	k := string(key)
	if _, existed := sh.container[k]; !existed {
		return
	}

	delete(sh.container, k)

	if remaining := keyCount.Add(-1); remaining < 0 {
		panic(fmt.Errorf("%w: key count dropped to %d after deleting %q",
			ErrInvariantViolation, remaining, key))
	}
}

// footprint sums len(key)+len(value) over the shard's records.
func (sh *memoryShard) footprint() int64 {
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	var total int64
	for k, v := range sh.container {
		total += int64(len(k) + len(v))
	}

	return total
}

// entryCount safely reads the number of keys in a shard.
func (sh *memoryShard) entryCount() int {
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	return len(sh.container)
}
