package lfs

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheWriterCommitRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache := NewObjectCache(dir)

	w, err := cache.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("hello world"))
	require.NoError(t, err)

	oid, size, err := w.Commit()
	require.NoError(t, err)
	assert.EqualValues(t, len("hello world"), size)

	present, err := cache.Contains(oid, size)
	require.NoError(t, err)
	assert.True(t, present)

	rc, gotSize, err := cache.Open(oid)
	require.NoError(t, err)
	defer rc.Close()
	assert.EqualValues(t, size, gotSize)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))

	expectedPath := filepath.Join(dir, string(oid)[0:2], string(oid)[2:4], string(oid))
	assert.FileExists(t, expectedPath)
}

func TestCacheContainsRemovesStaleLength(t *testing.T) {
	dir := t.TempDir()
	cache := NewObjectCache(dir)

	w, err := cache.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("data"))
	require.NoError(t, err)
	oid, _, err := w.Commit()
	require.NoError(t, err)

	present, err := cache.Contains(oid, 999)
	require.NoError(t, err)
	assert.False(t, present)

	_, err = os.Stat(cache.Path(oid))
	assert.True(t, os.IsNotExist(err))
}

func TestCacheContainsIgnoresSizeWhenNegative(t *testing.T) {
	dir := t.TempDir()
	cache := NewObjectCache(dir)

	w, err := cache.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("data"))
	require.NoError(t, err)
	oid, _, err := w.Commit()
	require.NoError(t, err)

	present, err := cache.Contains(oid, -1)
	require.NoError(t, err)
	assert.True(t, present)
}

func TestCacheWriterCommitExpectedRejectsMismatch(t *testing.T) {
	dir := t.TempDir()
	cache := NewObjectCache(dir)

	w, err := cache.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("data"))
	require.NoError(t, err)

	err = w.CommitExpected(OID(testOIDHex), 4)
	assert.ErrorIs(t, err, ErrIntegrity)

	entries, err := os.ReadDir(filepath.Join(dir, "tmp"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCacheWriterCommitExpectedRejectsSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	cache := NewObjectCache(dir)

	w, err := cache.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("data"))
	require.NoError(t, err)

	// The OID matches the written bytes, so only the size disagrees.
	err = w.CommitExpected(w.sink.OID(), 999)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestCacheWriterAbortRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	cache := NewObjectCache(dir)

	w, err := cache.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("discard me"))
	require.NoError(t, err)
	tmpPath := w.tmp.Name()

	require.NoError(t, w.Abort())
	_, err = os.Stat(tmpPath)
	assert.True(t, os.IsNotExist(err))
}

func TestCacheOpenMissingReturnsCacheIOError(t *testing.T) {
	dir := t.TempDir()
	cache := NewObjectCache(dir)
	_, _, err := cache.Open(OID(testOIDHex))
	assert.ErrorIs(t, err, ErrCacheIO)
}
