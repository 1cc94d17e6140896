package lfs

import (
	"bytes"
	"context"
	"io"
)

// Filter is the transformation engine bridging Git's object database and
// the LFS content store (§4.7): Clean turns working-tree bytes into a
// pointer on the way into history, Smudge turns a pointer back into
// bytes on the way into the working tree.
type Filter struct {
	cache  *ObjectCache
	client *Client
	attrs  AttributesProvider
}

// NewFilter builds a Filter over cache, client, and attrs.
func NewFilter(cache *ObjectCache, client *Client, attrs AttributesProvider) *Filter {
	return &Filter{cache: cache, client: client, attrs: attrs}
}

// Clean implements §4.7's clean(path, content) -> pointer_bytes.
//
// If content already decodes as a valid Pointer, it is returned verbatim
// (idempotence: clean(clean(x)) = clean(x)). Otherwise the attribute gate
// is consulted: if path is not LFS-tracked, content is returned
// unchanged. Tracked content is streamed into the cache, uploaded, and
// its encoded Pointer is returned.
func (f *Filter) Clean(ctx context.Context, path string, content []byte) ([]byte, error) {
	if IsPointer(content) {
		return content, nil
	}
	if !f.attrs.IsTracked(path) {
		return content, nil
	}

	w, err := f.cache.Writer()
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(w, bytes.NewReader(content)); err != nil {
		_ = w.Abort()
		return nil, err
	}
	oid, size, err := w.Commit()
	if err != nil {
		return nil, err
	}

	p, err := NewPointer(oid, size)
	if err != nil {
		return nil, err
	}

	rc, _, err := f.cache.Open(oid)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	if err := f.client.Upload(ctx, p, rc); err != nil {
		return nil, err
	}

	return p.Encode(), nil
}

// Smudge implements §4.7's smudge(path, pointer_bytes) -> content.
//
// A decode failure is a passthrough: the input is returned unchanged, so
// non-LFS content flows through untouched. A decoded pointer is served
// from the cache on hit; on miss, the client downloads it, populating the
// cache as a side effect.
func (f *Filter) Smudge(ctx context.Context, path string, pointerBytes []byte) ([]byte, error) {
	p, err := DecodePointer(pointerBytes)
	if err != nil {
		return pointerBytes, nil
	}

	present, err := f.cache.Contains(p.OID(), p.Size())
	if err != nil {
		return nil, err
	}
	if present {
		rc, _, err := f.cache.Open(p.OID())
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	return f.client.Download(ctx, p)
}
