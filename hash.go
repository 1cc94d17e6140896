package lfs

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

var _ io.Writer = (*HashingSink)(nil)

// HashingSink is a write-through wrapper: every byte written is forwarded
// to an inner io.Writer and absorbed by a streaming SHA-256 in the same
// call, so the digest always reflects exactly the bytes that reached the
// inner sink, in order, with no internal buffering.
type HashingSink struct {
	w    io.Writer
	hash hash.Hash
	size int64
}

// NewHashingSink wraps w. w may be a file, a buffer, or io.Discard.
func NewHashingSink(w io.Writer) *HashingSink {
	return &HashingSink{w: w, hash: sha256.New()}
}

// Write forwards p to the inner sink and hashes exactly what was forwarded.
func (s *HashingSink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	s.hash.Write(p[:n])
	s.size += int64(n)
	return n, err
}

// Size returns the number of bytes written so far.
func (s *HashingSink) Size() int64 {
	return s.size
}

// OID returns the SHA-256 digest of the bytes written so far, as an OID.
// Callers should only trust this once writing is complete.
func (s *HashingSink) OID() OID {
	return OID(hex.EncodeToString(s.hash.Sum(nil)))
}

