package kv

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/codb/kv/store"
)

func TestOpenMemoryDefault(t *testing.T) {
	t.Parallel()

	db, err := Open(Options{})
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	require.IsType(t, &store.MemoryStore{}, db)

	// put a=1, get a.
	require.NoError(t, db.Put([]byte("a"), []byte("1"), nil))

	value, err := db.Get([]byte("a"), nil)
	require.NoError(t, err)
	require.Equal(t, []byte("1"), value)
	require.Equal(t, uint64(1), db.Stats().KeyCount)
}

func TestOpenDiskPersists(t *testing.T) {
	t.Parallel()

	noSync := true
	opts := Options{
		Backend: BackendDisk,
		Disk: DiskOptions{
			Path:   filepath.Join(t.TempDir(), "codb.db"),
			NoSync: &noSync,
		},
	}

	db, err := Open(opts)
	require.NoError(t, err)
	require.IsType(t, &store.DiskStore{}, db)

	require.NoError(t, db.Put([]byte("a"), []byte("1"), nil))
	require.NoError(t, db.Put([]byte("b"), []byte("2"), nil))
	require.NoError(t, db.Close())

	reopened, err := Open(opts)
	require.NoError(t, err)

	t.Cleanup(func() { _ = reopened.Close() })

	require.Equal(t, uint64(2), reopened.Stats().KeyCount)

	value, err := reopened.Get([]byte("b"), nil)
	require.NoError(t, err)
	require.Equal(t, []byte("2"), value)
}

func TestOpenInvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := Open(Options{Backend: "etcd"})
	require.ErrorIs(t, err, ErrInvalidBackend)

	_, err = Open(Options{Backend: BackendDisk, Disk: DiskOptions{Path: t.TempDir()}})
	require.ErrorIs(t, err, store.ErrDiskPathIsDirectory)
	require.Equal(t, DiskPathError, ClassifyError(err).Name)
}

func TestOpenWithInstrumentation(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	reg := prometheus.NewRegistry()

	opts := DefaultOptions()

	db, err := Open(opts, WithLogger(zap.New(core)), WithRegisterer(reg))
	require.NoError(t, err)

	instrumented, ok := db.(*InstrumentedDB)
	require.True(t, ok)

	require.NoError(t, db.Put([]byte("k"), []byte("v"), nil))
	require.InDelta(t, 1, testutil.ToFloat64(instrumented.operations.WithLabelValues(opPut, "ok")), 0)

	require.NoError(t, db.Close())

	require.Equal(t, 1, logs.FilterMessage("store opened").Len())
	require.Equal(t, 1, logs.FilterMessage("store closed").Len())
}

func TestOpenMetricsDisabled(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	opts := DefaultOptions()
	opts.Metrics.Enabled = false

	db, err := Open(opts, WithRegisterer(reg))
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	require.IsType(t, &store.MemoryStore{}, db)

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestOpenRegistrationConflictClosesBackend(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	opts := DefaultOptions()

	first, err := Open(opts, WithRegisterer(reg))
	require.NoError(t, err)

	t.Cleanup(func() { _ = first.Close() })

	_, err = Open(opts, WithRegisterer(reg))
	require.ErrorIs(t, err, ErrMetricsRegisterFailed)
}
