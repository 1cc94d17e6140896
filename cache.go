package lfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ObjectCache is a content-addressed local store of LFS objects, laid out
// on disk the same way the reference tool lays out <git-dir>/lfs/objects
// (§4.4): <root>/<oid[0:2]>/<oid[2:4]>/<oid>.
type ObjectCache struct {
	root             string
	sharedRepository string
}

// NewObjectCache returns a cache rooted at root. root is created lazily on
// first write; NewObjectCache performs no I/O.
func NewObjectCache(root string) *ObjectCache {
	return &ObjectCache{root: root}
}

// WithSharedRepository sets the core.sharedrepository value consulted
// when normalizing a newly committed object's file mode (mirrors the
// reference tool's FixPermissions, called after every insert).
func (c *ObjectCache) WithSharedRepository(value string) *ObjectCache {
	c.sharedRepository = value
	return c
}

// Root returns the cache's root directory.
func (c *ObjectCache) Root() string {
	return c.root
}

// Path returns the final on-disk path for oid, without checking existence.
func (c *ObjectCache) Path(oid OID) string {
	return filepath.Join(c.root, oid.ShardPath())
}

// Contains reports whether oid is present and, when size >= 0, whether its
// length matches size. A length mismatch is treated as absent and the
// stale file is removed (§4.4).
func (c *ObjectCache) Contains(oid OID, size int64) (bool, error) {
	path := c.Path(oid)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat %s: %s", ErrCacheIO, path, err)
	}
	if size >= 0 && info.Size() != size {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return false, fmt.Errorf("%w: removing stale entry %s: %s", ErrCacheIO, path, rmErr)
		}
		return false, nil
	}
	return true, nil
}

// Open returns a readable stream for oid plus its size. The cache does
// not re-verify the hash on read (§4.4); the producer verified at insert
// time.
func (c *ObjectCache) Open(oid OID) (io.ReadCloser, int64, error) {
	path := c.Path(oid)
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: open %s: %s", ErrCacheIO, path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("%w: stat %s: %s", ErrCacheIO, path, err)
	}
	return f, info.Size(), nil
}

// CacheWriter accumulates bytes for a single insert under a temporary
// name, hashing them as they are written, and either commits them to
// their content-addressed path or discards them.
type CacheWriter struct {
	cache *ObjectCache
	tmp   *os.File
	sink  *HashingSink
}

// Writer opens a new CacheWriter. The temporary file lives alongside the
// cache root so the eventual rename is same-filesystem and atomic (§4.4).
func (c *ObjectCache) Writer() (*CacheWriter, error) {
	tmpDir := filepath.Join(c.root, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: mkdir %s: %s", ErrCacheIO, tmpDir, err)
	}
	tmpPath := filepath.Join(tmpDir, uuid.NewString())
	f, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %s", ErrCacheIO, tmpPath, err)
	}
	return &CacheWriter{cache: c, tmp: f, sink: NewHashingSink(f)}, nil
}

// Write implements io.Writer, hashing as it goes.
func (w *CacheWriter) Write(p []byte) (int, error) {
	n, err := w.sink.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: writing temp file: %s", ErrCacheIO, err)
	}
	return n, nil
}

// Abort discards the temporary file without committing it.
func (w *CacheWriter) Abort() error {
	path := w.tmp.Name()
	w.tmp.Close()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: removing %s: %s", ErrCacheIO, path, err)
	}
	return nil
}

// Commit finalizes the write: it closes the temporary file and renames it
// to its content-addressed path, keyed by the hash computed from the
// bytes actually written. The resulting OID is returned.
func (w *CacheWriter) Commit() (OID, int64, error) {
	oid := w.sink.OID()
	size := w.sink.Size()
	if err := w.commitAs(oid); err != nil {
		return "", 0, err
	}
	return oid, size, nil
}

// CommitExpected finalizes the write like Commit, but additionally
// verifies the computed digest and size against expectedOID/expectedSize
// before renaming into place. On mismatch the temporary file is unlinked
// and the operation fails with ErrIntegrity or ErrSizeMismatch (§4.6,
// checked OID-first to match the spec's wording).
func (w *CacheWriter) CommitExpected(expectedOID OID, expectedSize int64) error {
	got := w.sink.OID()
	if got != expectedOID {
		_ = w.Abort()
		return fmt.Errorf("%w: expected %s, computed %s", ErrIntegrity, expectedOID, got)
	}
	if w.sink.Size() != expectedSize {
		_ = w.Abort()
		return fmt.Errorf("%w: expected %d bytes, wrote %d", ErrSizeMismatch, expectedSize, w.sink.Size())
	}
	return w.commitAs(expectedOID)
}

func (w *CacheWriter) commitAs(oid OID) error {
	tmpPath := w.tmp.Name()
	if err := w.tmp.Sync(); err != nil {
		w.tmp.Close()
		return fmt.Errorf("%w: syncing %s: %s", ErrCacheIO, tmpPath, err)
	}
	if err := w.tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %s", ErrCacheIO, tmpPath, err)
	}
	finalPath := w.cache.Path(oid)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %s", ErrCacheIO, filepath.Dir(finalPath), err)
	}
	// Same-filesystem rename is atomic with respect to readers; concurrent
	// writers for the same OID race harmlessly since both produce
	// identical content (§4.4).
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("%w: renaming %s to %s: %s", ErrCacheIO, tmpPath, finalPath, err)
	}
	return fixPermissions(finalPath, w.cache.sharedRepository)
}
