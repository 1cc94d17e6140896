package lfs

import (
	"errors"
	"path/filepath"
)

// ErrInvalidOID is returned when a candidate object ID does not satisfy the
// 64-character lowercase hex SHA-256 invariant.
var ErrInvalidOID = errors.New("invalid oid")

// OID is a Git LFS object ID: a 64-character lowercase hexadecimal SHA-256
// digest. The zero value is not a valid OID.
type OID string

// NewOID validates s and returns it as an OID, or ErrInvalidOID.
func NewOID(s string) (OID, error) {
	if !validOIDString(s) {
		return "", ErrInvalidOID
	}
	return OID(s), nil
}

// Valid reports whether o satisfies the OID invariant.
func (o OID) Valid() bool {
	return validOIDString(string(o))
}

// String returns the hex representation of o.
func (o OID) String() string {
	return string(o)
}

// ShardPath returns the cache-relative path for o under the git-lfs
// sharding convention: <oid[0:2]>/<oid[2:4]>/<oid>. The caller joins this
// with a cache root.
func (o OID) ShardPath() string {
	s := string(o)
	if len(s) < 4 {
		// Only reachable for an invalid OID; callers are expected to have
		// validated first, but we avoid panicking on a short slice.
		return s
	}
	return filepath.Join(s[0:2], s[2:4], s)
}

func validOIDString(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
