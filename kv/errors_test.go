package kv

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/codb/kv/store"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want ErrorName
	}{
		{name: "not found", err: fmt.Errorf("%w: %q", store.ErrNotFound, "k"), want: NotFoundError},
		{name: "closed", err: store.ErrClosed, want: DatabaseClosedError},
		{name: "not supported", err: fmt.Errorf("%w: empty key", store.ErrNotSupported), want: NotSupportedError},
		{name: "invalid options", err: store.ErrOptionsInvalid, want: OptionsInvalidError},
		{name: "invalid backend", err: ErrInvalidBackend, want: OptionsInvalidError},
		{name: "config load", err: ErrConfigLoadFailed, want: ConfigLoadError},
		{name: "bucket", err: store.ErrBucketNotFound, want: BucketNotFoundError},
		{name: "path is directory", err: store.ErrDiskPathIsDirectory, want: DiskPathError},
		{name: "disk open", err: store.ErrDiskStoreOpenFailed, want: DiskStoreOpenError},
		{name: "disk close", err: store.ErrDiskStoreCloseFailed, want: DiskStoreCloseError},
		{name: "disk read", err: store.ErrDiskStoreReadFailed, want: DiskStoreReadError},
		{name: "disk write", err: store.ErrDiskStoreWriteFailed, want: DiskStoreWriteError},
		{name: "disk delete", err: store.ErrDiskStoreDeleteFailed, want: DiskStoreDeleteError},
		{name: "disk count", err: store.ErrDiskStoreCountFailed, want: DiskStoreSizeError},
		{name: "unknown", err: errors.New("boom"), want: InternalError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			classified := ClassifyError(tc.err)
			require.Equal(t, tc.want, classified.Name)
			require.Equal(t, tc.err.Error(), classified.Message)
			require.ErrorIs(t, classified, tc.err)
		})
	}
}

func TestClassifyErrorPassesThrough(t *testing.T) {
	t.Parallel()

	require.Nil(t, ClassifyError(nil))

	named := NewError(NotSupportedError, "read-only")
	wrapped := fmt.Errorf("cli: %w", named)

	require.Same(t, named, ClassifyError(wrapped))
	require.Equal(t, "NotSupportedError: read-only", named.Error())
}

func TestResultLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ok", resultLabel(nil))
	require.Equal(t, string(NotFoundError), resultLabel(store.ErrNotFound))
	require.Equal(t, string(DatabaseClosedError), resultLabel(store.ErrClosed))
}
