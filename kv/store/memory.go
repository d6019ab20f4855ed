package store

import (
	"fmt"
	"sync/atomic"
)

// MemoryStore is a sharded in-memory implementation of DB.
//
// Keys are spread over a fixed set of shards, each guarded by its own
// sync.RWMutex, so operations on unrelated keys rarely contend. Lifecycle and
// key counting use sync/atomic, whose operations are sequentially consistent
// under the Go memory model:
//
//   - keyCount changes only when a shard mutation changed key presence, and the
//     change is applied while that shard's lock is held. Stats therefore
//     reflects some linearization of Put/Delete calls.
//   - closed is checked before any shard is touched; once a goroutine has
//     observed Close, its later key-level calls fail with ErrClosed.
type MemoryStore struct {
	shards   []*memoryShard
	hashFn   shardHashFunc
	keyCount atomic.Int64
	closed   atomic.Bool
}

var _ DB = (*MemoryStore)(nil)

// NewMemoryStore creates an open, empty MemoryStore. A nil cfg selects defaults.
func NewMemoryStore(cfg *MemoryConfig) *MemoryStore {
	return &MemoryStore{
		shards: newMemoryShards(cfg.GetShardCount()),
		hashFn: selectShardHashFunc(cfg.getShardHash()),
	}
}

// Get returns a copy of the value stored under key.
func (s *MemoryStore) Get(key []byte, _ *ReadOptions) ([]byte, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	value, ok := s.getShardByKey(key).load(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	return value, nil
}

// Put stores a copy of value under key, overwriting any previous value.
// The key count grows only when the key was not present before.
func (s *MemoryStore) Put(key, value []byte, _ *WriteOptions) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	s.getShardByKey(key).store(key, cloneBytes(value), &s.keyCount)

	return nil
}

// Delete removes key if present. It is not an error if the key does not exist.
// The key count shrinks only when a record was actually removed.
func (s *MemoryStore) Delete(key []byte, _ *WriteOptions) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	s.getShardByKey(key).remove(key, &s.keyCount)

	return nil
}

// Has reports whether key is present in the store.
func (s *MemoryStore) Has(key []byte, _ *ReadOptions) (bool, error) {
	if err := s.ensureOpen(); err != nil {
		return false, err
	}

	return s.getShardByKey(key).contains(key), nil
}

// Stats returns the current key count. It is available after Close.
func (s *MemoryStore) Stats() DBStats {
	//nolint:gosec // keyCount never goes negative; Delete panics first.
	return DBStats{KeyCount: uint64(s.keyCount.Load())}
}

// Size returns the sum of key and value lengths over all live records.
//
// Shards are scanned one at a time, each under its own read lock, so under
// concurrent writes the total may mix states from different moments.
func (s *MemoryStore) Size() int64 {
	var total int64
	for _, shard := range s.shards {
		total += shard.footprint()
	}

	return total
}

// Close marks the store closed. Data is retained and in-flight calls are not awaited.
// Close is idempotent and always returns nil.
func (s *MemoryStore) Close() error {
	s.closed.Store(true)

	return nil
}

// IsClosed reports whether Close has been called.
func (s *MemoryStore) IsClosed() bool {
	return s.closed.Load()
}

// Ping returns ErrClosed once the store has been closed.
func (s *MemoryStore) Ping() error {
	return s.ensureOpen()
}

// ensureOpen fails fast when the store is closed.
func (s *MemoryStore) ensureOpen() error {
	if s.closed.Load() {
		return ErrClosed
	}

	return nil
}
