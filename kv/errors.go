package kv

import (
	"errors"

	"github.com/oshokin/codb/kv/store"
)

var _ error = (*Error)(nil)

var (
	// ErrInvalidBackend is returned when Options.Backend names an unknown backend.
	ErrInvalidBackend = errors.New("invalid backend")
	// ErrConfigLoadFailed indicates reading configuration sources failed.
	ErrConfigLoadFailed = errors.New("config load failed")
	// ErrLoggerBuildFailed indicates the zap logger could not be constructed.
	ErrLoggerBuildFailed = errors.New("logger build failed")
	// ErrMetricsRegisterFailed indicates registering collectors with Prometheus failed.
	ErrMetricsRegisterFailed = errors.New("metrics register failed")
)

// ErrorName represents the name of an error.
type ErrorName string

const (
	// NotFoundError is emitted when a key has no record.
	NotFoundError ErrorName = "NotFoundError"

	// DatabaseClosedError is emitted when the database is used after Close.
	DatabaseClosedError ErrorName = "DatabaseClosedError"

	// NotSupportedError is emitted when a backend cannot perform the operation.
	NotSupportedError ErrorName = "NotSupportedError"

	// OptionsInvalidError is emitted when configuration is rejected.
	OptionsInvalidError ErrorName = "OptionsInvalidError"

	// ConfigLoadError is emitted when configuration files or environment cannot be read.
	ConfigLoadError ErrorName = "ConfigLoadError"

	// BucketNotFoundError is emitted when the bbolt file lacks the store bucket.
	BucketNotFoundError ErrorName = "BucketNotFoundError"

	// DiskPathError is emitted when disk path resolution or directory creation fails.
	DiskPathError ErrorName = "DiskPathError"

	// DiskStoreOpenError is emitted when the disk backend cannot be opened.
	DiskStoreOpenError ErrorName = "DiskStoreOpenError"

	// DiskStoreCloseError is emitted when the disk backend fails to release its file.
	DiskStoreCloseError ErrorName = "DiskStoreCloseError"

	// DiskStoreReadError is emitted when reads from the disk backend fail.
	DiskStoreReadError ErrorName = "DiskStoreReadError"

	// DiskStoreWriteError is emitted when writes to the disk backend fail.
	DiskStoreWriteError ErrorName = "DiskStoreWriteError"

	// DiskStoreDeleteError is emitted when deletes on the disk backend fail.
	DiskStoreDeleteError ErrorName = "DiskStoreDeleteError"

	// DiskStoreSizeError is emitted when counting disk records fails.
	DiskStoreSizeError ErrorName = "DiskStoreSizeError"

	// InternalError is emitted for failures outside the known taxonomy.
	InternalError ErrorName = "InternalError"
)

// Error is a named, caller-facing rendition of a store error.
type Error struct {
	// Name contains one of the strings associated with an error name.
	Name ErrorName `json:"name" yaml:"name"`

	// Message represents message or description associated with the given error name.
	Message string `json:"message" yaml:"message"`

	// cause is the classified error, kept for errors.Is/As.
	cause error
}

// NewError returns a new Error instance.
func NewError(name ErrorName, message string) *Error {
	return &Error{
		Name:    name,
		Message: message,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return string(e.Name) + ": " + e.Message
}

// Unwrap returns the classified error.
func (e *Error) Unwrap() error {
	return e.cause
}

// ClassifyError converts a store or configuration error into a named *Error.
// Errors outside the known taxonomy are named InternalError. A nil error yields nil.
//
//nolint:cyclop // a flat switch over the taxonomy reads best.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var kvErr *Error
	if errors.As(err, &kvErr) {
		return kvErr
	}

	name := InternalError

	switch {
	case errors.Is(err, store.ErrNotFound):
		name = NotFoundError
	case errors.Is(err, store.ErrClosed):
		name = DatabaseClosedError
	case errors.Is(err, store.ErrNotSupported):
		name = NotSupportedError
	case errors.Is(err, store.ErrOptionsInvalid),
		errors.Is(err, ErrInvalidBackend):
		name = OptionsInvalidError
	case errors.Is(err, ErrConfigLoadFailed):
		name = ConfigLoadError
	case errors.Is(err, store.ErrBucketNotFound):
		name = BucketNotFoundError
	case errors.Is(err, store.ErrDiskPathResolveFailed),
		errors.Is(err, store.ErrDiskPathIsDirectory),
		errors.Is(err, store.ErrDiskDirectoryCreateFailed):
		name = DiskPathError
	case errors.Is(err, store.ErrDiskStoreOpenFailed):
		name = DiskStoreOpenError
	case errors.Is(err, store.ErrDiskStoreCloseFailed):
		name = DiskStoreCloseError
	case errors.Is(err, store.ErrDiskStoreReadFailed):
		name = DiskStoreReadError
	case errors.Is(err, store.ErrDiskStoreWriteFailed):
		name = DiskStoreWriteError
	case errors.Is(err, store.ErrDiskStoreDeleteFailed):
		name = DiskStoreDeleteError
	case errors.Is(err, store.ErrDiskStoreCountFailed):
		name = DiskStoreSizeError
	}

	return &Error{
		Name:    name,
		Message: err.Error(),
		cause:   err,
	}
}

// resultLabel names the outcome of an operation for metrics.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}

	return string(ClassifyError(err).Name)
}
