package medialib

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestDirLibrarySave(t *testing.T) {
	root := t.TempDir()
	lib, err := NewDirLibrary(root)
	require.NoError(t, err)

	src := writeTemp(t, "shot.jpg", []byte("jpeg bytes"))
	taken := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	asset, err := lib.Save(SaveRequest{
		FilePath: src,
		Kind:     Photo,
		Date:     taken,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, asset.ID)
	assert.Equal(t, Photo, asset.Kind)
	assert.Empty(t, asset.Album)
	assert.Equal(t, ".jpg", filepath.Ext(asset.Path))
	assert.Equal(t, root, filepath.Dir(asset.Path))

	data, err := os.ReadFile(asset.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "the source file is moved, not copied")

	info, err := os.Stat(asset.Path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(taken))
}

func TestDirLibrarySaveIntoAlbum(t *testing.T) {
	root := t.TempDir()
	lib, err := NewDirLibrary(root)
	require.NoError(t, err)

	src := writeTemp(t, "clip.mov", []byte("movie bytes"))
	asset, err := lib.Save(SaveRequest{FilePath: src, Kind: Video, Album: "Holidays"})
	require.NoError(t, err)

	assert.Equal(t, "Holidays", asset.Album)
	assert.Equal(t, filepath.Join(root, "Holidays"), filepath.Dir(asset.Path))
	assert.Equal(t, ".mov", filepath.Ext(asset.Path))
}

func TestDirLibrarySaveMissingSource(t *testing.T) {
	lib, err := NewDirLibrary(t.TempDir())
	require.NoError(t, err)

	_, err = lib.Save(SaveRequest{FilePath: "/nonexistent/file.jpg", Kind: Photo})
	assert.ErrorIs(t, err, ErrNotSaved)
}

func TestNewDirLibraryCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "library")
	_, err := NewDirLibrary(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
