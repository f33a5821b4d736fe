package badger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/labmatch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "missing directories are created")
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := OpenBackend(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithTx(func(tx *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestWithTx(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	t.Run("write commits on success", func(t *testing.T) {
		err := backend.WithTx(func(tx *badger.Txn) error {
			return tx.Set([]byte("k1"), []byte("v1"))
		}, true)
		require.NoError(t, err)

		count, err := backend.countPrefix([]byte("k1"))
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("write is discarded on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Set([]byte("k2"), []byte("v2")); err != nil {
				return err
			}
			return boom
		}, true)
		assert.ErrorIs(t, err, boom)

		count, err := backend.countPrefix([]byte("k2"))
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestManifestRepository(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	_, err = NewManifestRepository(backend, "")
	assert.ErrorIs(t, err, storage.ErrEmptyNamespace)

	repo, err := NewManifestRepository(backend, "model-a")
	require.NoError(t, err)

	loaded, err := repo.LoadManifest(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded, "missing manifest is not an error")

	manifest := &storage.Manifest{Model: "model-a", Labs: 3, Digest: 99}
	require.NoError(t, repo.SaveManifest(ctx, manifest))
	assert.False(t, manifest.UpdatedAt.IsZero())

	loaded, err = repo.LoadManifest(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 3, loaded.Labs)
	assert.Equal(t, manifest.Digest, loaded.Digest)

	other, err := NewManifestRepository(backend, "model-b")
	require.NoError(t, err)
	loaded, err = other.LoadManifest(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded, "namespaces are isolated")
}
