package proof

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatepass/pkg/domain-errors"
)

func TestFilesystemStore_SaveOpenRemove(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	path, err := store.Save(ctx, "image/png", strings.NewReader("fake-png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".png"))

	rc, err := store.Open(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "fake-png-bytes", string(data))

	require.NoError(t, store.Remove(ctx, path))

	_, err = store.Open(ctx, path)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	// Removing an already-removed file is not an error.
	require.NoError(t, store.Remove(ctx, path))
}

func TestFilesystemStore_RejectsUnsupportedContentType(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "application/pdf", strings.NewReader("x"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestFilesystemStore_RejectsPathTraversal(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	for _, path := range []string{"", "../etc/passwd", "/etc/passwd", "a/../../b"} {
		_, err := store.Open(context.Background(), path)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "path %q", path)
	}
}
