package server

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreSaveOpenRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc_report.docx", strings.NewReader("payload")))

	rc, err := store.Open(ctx, "abc_report.docx")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "payload", string(data))

	require.NoError(t, store.Remove(ctx, "abc_report.docx"))
	_, err = store.Open(ctx, "abc_report.docx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStoreDuplicateName(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "name", strings.NewReader("one")))
	// Stored names are unique by construction; a second write must not
	// overwrite.
	assert.Error(t, store.Save(ctx, "name", strings.NewReader("two")))

	rc, err := store.Open(ctx, "name")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "one", string(data))
}

func TestDiskStoreRemoveMissing(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Remove(context.Background(), "never-existed"))
}

func TestDiskStoreRejectsPathyNames(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"", "../escape", `..\escape`, "a/b"} {
		assert.Error(t, store.Save(ctx, name, strings.NewReader("x")), "name %q", name)
		_, err := store.Open(ctx, name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestDiskStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewDiskStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
