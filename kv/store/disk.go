package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	bolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"
)

// DiskStore is a persistent implementation of DB backed by a single bbolt bucket.
//
// Concurrency:
//   - All exported methods are safe for concurrent use.
//   - Put and Delete each run in one bbolt write transaction, so they are atomic
//     per key; Get, Has and Size run in read transactions and see a consistent
//     view of the file (Size is therefore atomic for this backend).
//   - Close waits for bbolt transactions that are already running.
type DiskStore struct {
	path     string
	handle   *bolt.DB
	bucket   []byte
	readOnly bool
	keyCount atomic.Int64
	closed   atomic.Bool

	// writeMu orders counter updates with the write transactions that caused them.
	writeMu sync.Mutex
}

const (
	// DefaultDiskStorePath is the default filesystem path to the bbolt file.
	DefaultDiskStorePath = ".codb.db"

	// DefaultBucket is the bbolt bucket that holds all records.
	DefaultBucket = "codb"

	// diskFileMode is the permission used when creating the bbolt file.
	diskFileMode = 0o600
	// diskDirMode is the permission used when creating parent directories.
	diskDirMode = 0o750
)

var _ DB = (*DiskStore)(nil)

// OpenDiskStore opens (creating if needed) the bbolt file described by cfg and
// hydrates the key count from it. A nil cfg selects DefaultDiskStorePath and
// bbolt defaults.
func OpenDiskStore(cfg *DiskConfig) (*DiskStore, error) {
	boltOpts, err := buildBBoltOptions(cfg)
	if err != nil {
		return nil, err
	}

	var rawPath string
	if cfg != nil {
		rawPath = cfg.Path
	}

	path, err := ResolveDiskPath(rawPath)
	if err != nil {
		return nil, err
	}

	readOnly := cfg.isReadOnly()
	if !readOnly {
		if err := os.MkdirAll(filepath.Dir(path), diskDirMode); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrDiskDirectoryCreateFailed, filepath.Dir(path), err)
		}
	}

	handle, err := bolt.Open(path, diskFileMode, boltOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrDiskStoreOpenFailed, path, err)
	}

	s := &DiskStore{
		path:     path,
		handle:   handle,
		bucket:   []byte(DefaultBucket),
		readOnly: readOnly,
	}

	if err := s.initBucket(); err != nil {
		_ = handle.Close()

		return nil, err
	}

	return s, nil
}

// initBucket ensures the bucket exists (read-write mode) and loads the key count.
func (s *DiskStore) initBucket() error {
	countKeys := func(bucket *bolt.Bucket) {
		s.keyCount.Store(int64(bucket.Stats().KeyN))
	}

	if s.readOnly {
		err := s.handle.View(func(tx *bolt.Tx) error {
			bucket := tx.Bucket(s.bucket)
			if bucket == nil {
				return fmt.Errorf("%w: %q", ErrBucketNotFound, s.bucket)
			}

			countKeys(bucket)

			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDiskStoreCountFailed, err)
		}

		return nil
	}

	err := s.handle.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %q: %w", s.bucket, err)
		}

		countKeys(bucket)

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDiskStoreOpenFailed, err)
	}

	return nil
}

// Path returns the resolved bbolt file path.
func (s *DiskStore) Path() string {
	return s.path
}

// Get returns a copy of the value stored under key.
func (s *DiskStore) Get(key []byte, _ *ReadOptions) ([]byte, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	var (
		value []byte
		found bool
	)

	err := s.handle.View(func(tx *bolt.Tx) error {
		bucket, err := s.bucketFrom(tx)
		if err != nil {
			return err
		}

		var raw []byte

		// bbolt values are only valid inside the transaction; copy before leaving it.
		raw, found = lookup(bucket, key)
		if found {
			value = cloneBytes(raw)
		}

		return nil
	})
	if err != nil {
		return nil, s.wrapTxError(ErrDiskStoreReadFailed, err)
	}

	if !found {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	return value, nil
}

// Put stores value under key in a single write transaction.
//
// bbolt cannot store empty keys or keys longer than bolt.MaxKeySize; such
// calls return ErrNotSupported, as does any write to a read-only store.
func (s *DiskStore) Put(key, value []byte, _ *WriteOptions) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	if err := validateDiskRecord(key, value); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var existed bool

	err := s.handle.Update(func(tx *bolt.Tx) error {
		bucket, err := s.bucketFrom(tx)
		if err != nil {
			return err
		}

		_, existed = lookup(bucket, key)

		return bucket.Put(key, value)
	})
	if err != nil {
		return s.wrapTxError(ErrDiskStoreWriteFailed, err)
	}

	if !existed {
		s.keyCount.Add(1)
	}

	return nil
}

// Delete removes key if present. It is not an error if the key does not exist.
func (s *DiskStore) Delete(key []byte, _ *WriteOptions) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var existed bool

	err := s.handle.Update(func(tx *bolt.Tx) error {
		bucket, err := s.bucketFrom(tx)
		if err != nil {
			return err
		}

		if _, existed = lookup(bucket, key); !existed {
			return nil
		}

		return bucket.Delete(key)
	})
	if err != nil {
		return s.wrapTxError(ErrDiskStoreDeleteFailed, err)
	}

	if !existed {
		return nil
	}

	if remaining := s.keyCount.Add(-1); remaining < 0 {
		panic(fmt.Errorf("%w: key count dropped to %d after deleting %q",
			ErrInvariantViolation, remaining, key))
	}

	return nil
}

// Has reports whether key is present in the store.
func (s *DiskStore) Has(key []byte, _ *ReadOptions) (bool, error) {
	if err := s.ensureOpen(); err != nil {
		return false, err
	}

	var found bool

	err := s.handle.View(func(tx *bolt.Tx) error {
		bucket, err := s.bucketFrom(tx)
		if err != nil {
			return err
		}

		_, found = lookup(bucket, key)

		return nil
	})
	if err != nil {
		return false, s.wrapTxError(ErrDiskStoreReadFailed, err)
	}

	return found, nil
}

// Stats returns the current key count. It is available after Close.
func (s *DiskStore) Stats() DBStats {
	//nolint:gosec // keyCount never goes negative; Delete panics first.
	return DBStats{KeyCount: uint64(s.keyCount.Load())}
}

// Size sums key and value lengths inside one read transaction.
// It returns -1 when the file can no longer be read (for example after Close).
func (s *DiskStore) Size() int64 {
	var total int64

	err := s.handle.View(func(tx *bolt.Tx) error {
		bucket, err := s.bucketFrom(tx)
		if err != nil {
			return err
		}

		return bucket.ForEach(func(k, v []byte) error {
			total += int64(len(k) + len(v))

			return nil
		})
	})
	if err != nil {
		return -1
	}

	return total
}

// Close marks the store closed and releases the bbolt file.
// Only the first call closes the file; later calls return nil.
func (s *DiskStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	if err := s.handle.Close(); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrDiskStoreCloseFailed, s.path, err)
	}

	return nil
}

// IsClosed reports whether Close has been called.
func (s *DiskStore) IsClosed() bool {
	return s.closed.Load()
}

// Ping returns ErrClosed once the store has been closed.
func (s *DiskStore) Ping() error {
	return s.ensureOpen()
}

// ensureOpen fails fast when the store is closed.
func (s *DiskStore) ensureOpen() error {
	if s.closed.Load() {
		return ErrClosed
	}

	return nil
}

// bucketFrom returns the records bucket for tx.
func (s *DiskStore) bucketFrom(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket(s.bucket)
	if bucket == nil {
		return nil, fmt.Errorf("%w: %q", ErrBucketNotFound, s.bucket)
	}

	return bucket, nil
}

// wrapTxError maps bbolt failures onto the shared taxonomy where one applies
// and wraps everything else with kind.
func (s *DiskStore) wrapTxError(kind, err error) error {
	switch {
	case errors.Is(err, berrors.ErrDatabaseNotOpen):
		// Close won the race against a call that had already passed ensureOpen.
		return ErrClosed
	case errors.Is(err, berrors.ErrDatabaseReadOnly), errors.Is(err, berrors.ErrTxNotWritable):
		return fmt.Errorf("%w: %q is opened read-only", ErrNotSupported, s.path)
	default:
		return fmt.Errorf("%w: %w", kind, err)
	}
}

// lookup reports the value stored under key. A cursor is used instead of
// Bucket.Get so that empty values are told apart from missing keys.
func lookup(bucket *bolt.Bucket, key []byte) ([]byte, bool) {
	if len(key) == 0 {
		return nil, false
	}

	k, v := bucket.Cursor().Seek(key)
	if k == nil || !bytes.Equal(k, key) {
		return nil, false
	}

	return v, true
}

// validateDiskRecord rejects records bbolt cannot store.
func validateDiskRecord(key, value []byte) error {
	switch {
	case len(key) == 0:
		return fmt.Errorf("%w: empty keys are not supported by the disk store", ErrNotSupported)
	case len(key) > bolt.MaxKeySize:
		return fmt.Errorf("%w: key of %d bytes exceeds %d", ErrNotSupported, len(key), bolt.MaxKeySize)
	case len(value) > bolt.MaxValueSize:
		return fmt.Errorf("%w: value of %d bytes exceeds %d", ErrNotSupported, len(value), bolt.MaxValueSize)
	default:
		return nil
	}
}
