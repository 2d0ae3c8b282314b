package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hbomb79/Cull/internal/cache"
	"github.com/hbomb79/Cull/internal/xmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statFile(t *testing.T, path string) os.FileInfo {
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info
}

func Test_Store_LookupReturnsCurrentEntries(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	filePath := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(filePath, []byte("content"), 0o644))
	info := statFile(t, filePath)

	store := cache.New(filepath.Join(dir, "ratings.json"))
	_, ok := store.Lookup(filePath, info)
	assert.False(t, ok, "expected lookup against an empty cache to miss")

	store.Store(filePath, info, xmp.PacketFields{Rating: 4, Label: "Keep"})
	fields, ok := store.Lookup(filePath, info)
	assert.True(t, ok)
	assert.Equal(t, xmp.PacketFields{Rating: 4, Label: "Keep"}, fields)
	assert.Equal(t, 1, store.Len())
}

func Test_Lookup_StaleEntriesAreDiscarded(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	filePath := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(filePath, []byte("content"), 0o644))

	store := cache.New(filepath.Join(dir, "ratings.json"))
	store.Store(filePath, statFile(t, filePath), xmp.PacketFields{Rating: 3})

	t.Run("Size change invalidates", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filePath, []byte("content grew longer"), 0o644))

		_, ok := store.Lookup(filePath, statFile(t, filePath))
		assert.False(t, ok, "expected lookup to miss after the file size changed")
		assert.Equal(t, 0, store.Len(), "expected the stale entry to be evicted")
	})

	t.Run("Modtime change invalidates", func(t *testing.T) {
		info := statFile(t, filePath)
		store.Store(filePath, info, xmp.PacketFields{Rating: 3})

		touched := info.ModTime().Add(time.Hour)
		require.NoError(t, os.Chtimes(filePath, touched, touched))

		_, ok := store.Lookup(filePath, statFile(t, filePath))
		assert.False(t, ok, "expected lookup to miss after the file modtime changed")
	})
}

func Test_Save_RoundTripsThroughDisk(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	filePath := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(filePath, []byte("content"), 0o644))
	info := statFile(t, filePath)

	// The cache file path is nested to ensure Save creates parents
	cachePath := filepath.Join(dir, "state", "ratings.json")
	store := cache.New(cachePath)
	store.Store(filePath, info, xmp.PacketFields{Rating: 5, Label: "Portfolio"})
	require.NoError(t, store.Save())

	reloaded := cache.New(cachePath)
	assert.Equal(t, 1, reloaded.Len())

	fields, ok := reloaded.Lookup(filePath, info)
	assert.True(t, ok, "expected reloaded cache to hit for an unchanged file")
	assert.Equal(t, xmp.PacketFields{Rating: 5, Label: "Portfolio"}, fields)
}

func Test_New_ToleratesMalformedCacheFile(t *testing.T) {
	t.Parallel()
	cachePath := filepath.Join(t.TempDir(), "ratings.json")
	require.NoError(t, os.WriteFile(cachePath, []byte("{not json"), 0o644))

	store := cache.New(cachePath)
	assert.Equal(t, 0, store.Len(), "expected a malformed cache file to produce an empty cache")
}
