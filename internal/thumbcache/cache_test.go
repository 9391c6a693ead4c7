package thumbcache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "thumbs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_PutGet(t *testing.T) {
	c := openTestCache(t)
	mtime := time.Unix(1700000000, 0)

	require.NoError(t, c.Put("/photos/cat.jpg", mtime, 200, []byte("png-bytes")))

	data, ok, err := c.Get("/photos/cat.jpg", mtime, 200)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("png-bytes"), data)
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := openTestCache(t)

	_, ok, err := c.Get("/photos/missing.jpg", time.Unix(1700000000, 0), 200)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCache_MissOnStaleMtime(t *testing.T) {
	c := openTestCache(t)
	mtime := time.Unix(1700000000, 0)

	require.NoError(t, c.Put("/photos/cat.jpg", mtime, 200, []byte("old")))

	_, ok, err := c.Get("/photos/cat.jpg", mtime.Add(time.Hour), 200)
	require.NoError(t, err)
	require.False(t, ok, "entry rendered from an older file must not be served")
}

func TestCache_SizeIsPartOfKey(t *testing.T) {
	c := openTestCache(t)
	mtime := time.Unix(1700000000, 0)

	require.NoError(t, c.Put("/photos/cat.jpg", mtime, 200, []byte("small")))
	require.NoError(t, c.Put("/photos/cat.jpg", mtime, 400, []byte("large")))

	small, ok, err := c.Get("/photos/cat.jpg", mtime, 200)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("small"), small)

	large, ok, err := c.Get("/photos/cat.jpg", mtime, 400)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("large"), large)

	n, err := c.Len()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestCache_PutReplaces(t *testing.T) {
	c := openTestCache(t)
	oldMtime := time.Unix(1700000000, 0)
	newMtime := oldMtime.Add(time.Hour)

	require.NoError(t, c.Put("/photos/cat.jpg", oldMtime, 200, []byte("v1")))
	require.NoError(t, c.Put("/photos/cat.jpg", newMtime, 200, []byte("v2")))

	data, ok, err := c.Get("/photos/cat.jpg", newMtime, 200)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v2"), data)

	n, err := c.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCache_Prune(t *testing.T) {
	c := openTestCache(t)
	mtime := time.Unix(1700000000, 0)

	require.NoError(t, c.Put("/photos/keep.jpg", mtime, 200, []byte("a")))
	require.NoError(t, c.Put("/photos/gone.jpg", mtime, 200, []byte("b")))
	require.NoError(t, c.Put("/photos/gone.jpg", mtime, 400, []byte("c")))

	removed, err := c.Prune(func(source string) bool {
		return source == "/photos/keep.jpg"
	})
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	_, ok, err := c.Get("/photos/gone.jpg", mtime, 200)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = c.Get("/photos/keep.jpg", mtime, 200)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCache_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thumbs.db")
	mtime := time.Unix(1700000000, 0)

	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.Put("/photos/cat.jpg", mtime, 200, []byte("persisted")))
	require.NoError(t, c.Close())

	c2, err := Open(path)
	require.NoError(t, err)
	defer c2.Close()

	data, ok, err := c2.Get("/photos/cat.jpg", mtime, 200)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("persisted"), data)
}
