package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backendFactory opens a fresh, empty DB for a test and registers its cleanup.
type backendFactory func(t *testing.T) DB

// testBackends lists every DB implementation the contract suite runs against.
func testBackends() map[string]backendFactory {
	return map[string]backendFactory{
		"memory": func(t *testing.T) DB {
			t.Helper()

			return NewMemoryStore(&MemoryConfig{ShardCount: 8})
		},
		"memory-single-shard": func(t *testing.T) DB {
			t.Helper()

			return NewMemoryStore(&MemoryConfig{ShardCount: 1})
		},
		"memory-fnv": func(t *testing.T) DB {
			t.Helper()

			return NewMemoryStore(&MemoryConfig{ShardCount: 4, ShardHash: ShardHashFNV})
		},
		"disk": func(t *testing.T) DB {
			t.Helper()

			return openTempDiskStore(t)
		},
	}
}

// openTempDiskStore opens a DiskStore in a per-test directory and closes it on cleanup.
func openTempDiskStore(t *testing.T) *DiskStore {
	t.Helper()

	noSync := true
	cfg := &DiskConfig{
		Path:   filepath.Join(t.TempDir(), "test.db"),
		NoSync: &noSync,
	}

	store, err := OpenDiskStore(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// requireStoredValue verifies that the value stored for key equals expected.
func requireStoredValue(t *testing.T, db DB, key, expected string) {
	t.Helper()

	value, err := db.Get([]byte(key), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte(expected), value)
}

// requireKeyCount verifies the KeyCount reported by Stats.
func requireKeyCount(t *testing.T, db DB, expected uint64) {
	t.Helper()

	assert.Equal(t, expected, db.Stats().KeyCount)
}
