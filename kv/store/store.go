package store

// DB defines the operations every storage backend implements.
//
// General notes:
//
//   - Keys and values are opaque byte slices compared by exact byte equality.
//     Backends copy both on the way in and values on the way out, so callers
//     never share memory with stored records.
//   - Options arguments may be nil; nil selects the default behavior.
//   - All methods MUST be safe for concurrent use.
//
// Error semantics:
//
//   - Expected conditions are reported through the sentinels ErrNotFound,
//     ErrClosed and ErrNotSupported (possibly wrapped; match with errors.Is).
//   - Backends with real I/O may additionally return wrapped I/O failures.
//   - No method panics for an expected condition.
type DB interface {
	// Get returns a copy of the value stored under key.
	//
	// Returns ErrNotFound if the key is absent and ErrClosed if the DB is closed.
	Get(key []byte, opts *ReadOptions) ([]byte, error)

	// Put stores value under key, overwriting any existing value.
	// Returns ErrClosed if the DB is closed.
	Put(key, value []byte, opts *WriteOptions) error

	// Delete removes key from the store.
	// It is not an error to delete a non-existent key (the operation is a no-op).
	Delete(key []byte, opts *WriteOptions) error

	// Has reports whether key is present. It never returns ErrNotFound.
	Has(key []byte, opts *ReadOptions) (bool, error)

	// Stats returns a snapshot of engine counters. It works in any lifecycle state.
	Stats() DBStats

	// Size returns the total number of live key and value bytes.
	//
	// A negative result means the backend cannot compute the size cheaply.
	// Whether the result is atomic with respect to concurrent writes is
	// backend-specific; callers MUST NOT assume it.
	Size() int64

	// Close transitions the DB to the closed state. Close is idempotent.
	// Stored data is not cleared. Whether in-flight operations are awaited
	// is backend-specific.
	Close() error

	// IsClosed reports whether Close has been called.
	IsClosed() bool

	// Ping returns nil while the DB is open and ErrClosed afterwards.
	Ping() error
}

// ReadOptions carries per-call read configuration.
//
// No fields are recognized yet. New knobs (e.g. a consistency level) will be
// added as optional fields whose zero value keeps today's behavior, so a nil
// or zero ReadOptions always means "defaults".
type ReadOptions struct{}

// WriteOptions carries per-call write configuration.
//
// No fields are recognized yet. New knobs (e.g. durability hints) will be added
// as optional fields whose zero value keeps today's behavior.
type WriteOptions struct{}

// DBStats is a point-in-time snapshot of engine counters.
type DBStats struct {
	// KeyCount is the number of live records.
	KeyCount uint64 `json:"keyCount" yaml:"key_count"`
}
