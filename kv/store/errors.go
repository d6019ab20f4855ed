package store

import "errors"

var (
	// ErrNotFound is returned by Get when the key has no record.
	ErrNotFound = errors.New("key not found")
	// ErrClosed is returned by key-level operations and Ping after Close.
	ErrClosed = errors.New("database is closed")
	// ErrNotSupported is returned by backends that cannot perform an operation
	// (or cannot perform it for the given input).
	ErrNotSupported = errors.New("operation not supported")

	// ErrInvariantViolation marks internal bookkeeping defects. It is never
	// returned to callers; the store panics with an error wrapping it.
	ErrInvariantViolation = errors.New("store invariant violated")

	// ErrOptionsInvalid indicates invalid backend configuration.
	ErrOptionsInvalid = errors.New("invalid store options")
	// ErrDiskDirectoryCreateFailed indicates disk directory creation failed.
	ErrDiskDirectoryCreateFailed = errors.New("disk directory create failed")
	// ErrDiskPathIsDirectory is returned when the configured disk path points at a directory.
	ErrDiskPathIsDirectory = errors.New("disk path is a directory")
	// ErrDiskPathResolveFailed indicates disk path resolution failed.
	ErrDiskPathResolveFailed = errors.New("disk path resolve failed")
	// ErrDiskStoreCloseFailed indicates closing the bbolt file failed.
	ErrDiskStoreCloseFailed = errors.New("disk store close failed")
	// ErrDiskStoreCountFailed indicates counting disk store entries failed.
	ErrDiskStoreCountFailed = errors.New("disk store count failed")
	// ErrDiskStoreDeleteFailed indicates delete operations failed.
	ErrDiskStoreDeleteFailed = errors.New("disk store delete failed")
	// ErrDiskStoreOpenFailed indicates opening the disk store failed.
	ErrDiskStoreOpenFailed = errors.New("disk store open failed")
	// ErrDiskStoreReadFailed indicates reading from the disk store failed.
	ErrDiskStoreReadFailed = errors.New("disk store read failed")
	// ErrDiskStoreWriteFailed indicates writing to the disk store failed.
	ErrDiskStoreWriteFailed = errors.New("disk store write failed")
	// ErrBucketNotFound is returned when the store bucket is missing from the bbolt file.
	ErrBucketNotFound = errors.New("bucket not found")
)
