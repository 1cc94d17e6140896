package lfs

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// SpecVersion is the canonical LFS pointer spec version URI this codec
// writes and requires on decode.
const SpecVersion = "https://git-lfs.github.com/spec/v1"

// MaxPointerSize is the largest byte length a candidate blob may have and
// still be considered for pointer decoding (§4.2).
const MaxPointerSize = 1024

// Pointer is the decoded form of an LFS pointer file: an immutable
// (version, oid, size) triple. The zero value is not a valid Pointer; use
// NewPointer or DecodePointer.
type Pointer struct {
	version string
	oid     OID
	size    int64
}

// NewPointer builds a Pointer for oid/size using the canonical spec
// version. size must be non-negative.
func NewPointer(oid OID, size int64) (Pointer, error) {
	if !oid.Valid() {
		return Pointer{}, ErrInvalidOID
	}
	if size < 0 {
		return Pointer{}, fmt.Errorf("%w: negative size %d", ErrInvalidPointer, size)
	}
	return Pointer{version: SpecVersion, oid: oid, size: size}, nil
}

// OID returns the pointer's object ID.
func (p Pointer) OID() OID { return p.oid }

// Size returns the pointer's declared byte count.
func (p Pointer) Size() int64 { return p.size }

// Version returns the pointer's spec version URI.
func (p Pointer) Version() string { return p.version }

// Encode renders p as the bit-exact three-line pointer text (§6):
//
//	version <uri>\noid sha256:<hex>\nsize <decimal>\n
func (p Pointer) Encode() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "version %s\n", p.version)
	fmt.Fprintf(&b, "oid sha256:%s\n", p.oid)
	fmt.Fprintf(&b, "size %d\n", p.size)
	return b.Bytes()
}

// String implements fmt.Stringer in terms of Encode.
func (p Pointer) String() string {
	return string(p.Encode())
}

// DecodePointer parses the bit-exact pointer text described by §4.2/§6.
// It requires exactly three LF-terminated lines: version first, then oid
// and size in either order, no duplicates, no extraneous bytes, and no
// trailing blank line. Any violation is ErrInvalidPointer.
func DecodePointer(b []byte) (Pointer, error) {
	if len(b) > MaxPointerSize {
		return Pointer{}, fmt.Errorf("%w: %d bytes exceeds %d byte limit", ErrInvalidPointer, len(b), MaxPointerSize)
	}
	if len(b) == 0 || b[len(b)-1] != '\n' {
		return Pointer{}, fmt.Errorf("%w: missing trailing newline", ErrInvalidPointer)
	}
	// Drop the final newline, then split: a trailing blank line would show
	// up as an extra empty element here and is rejected below.
	lines := strings.Split(string(b[:len(b)-1]), "\n")
	if len(lines) != 3 {
		return Pointer{}, fmt.Errorf("%w: expected 3 lines, got %d", ErrInvalidPointer, len(lines))
	}

	version, ok := strings.CutPrefix(lines[0], "version ")
	if !ok || version == "" {
		return Pointer{}, fmt.Errorf("%w: first line is not a version line", ErrInvalidPointer)
	}
	if version != SpecVersion {
		return Pointer{}, fmt.Errorf("%w: unsupported version %q", ErrInvalidPointer, version)
	}

	var (
		oid      OID
		size     int64
		haveOID  bool
		haveSize bool
	)
	for _, line := range lines[1:] {
		switch {
		case strings.HasPrefix(line, "oid "):
			if haveOID {
				return Pointer{}, fmt.Errorf("%w: duplicate oid line", ErrInvalidPointer)
			}
			hex, ok := strings.CutPrefix(line, "oid sha256:")
			if !ok {
				return Pointer{}, fmt.Errorf("%w: oid line missing sha256: prefix", ErrInvalidPointer)
			}
			o, err := NewOID(hex)
			if err != nil {
				return Pointer{}, fmt.Errorf("%w: %s", ErrInvalidPointer, err)
			}
			oid = o
			haveOID = true
		case strings.HasPrefix(line, "size "):
			if haveSize {
				return Pointer{}, fmt.Errorf("%w: duplicate size line", ErrInvalidPointer)
			}
			digits, _ := strings.CutPrefix(line, "size ")
			if digits == "" || strings.ContainsAny(digits, "+- ") {
				return Pointer{}, fmt.Errorf("%w: invalid size %q", ErrInvalidPointer, digits)
			}
			if digits != "0" && digits[0] == '0' {
				return Pointer{}, fmt.Errorf("%w: size %q has a leading zero", ErrInvalidPointer, digits)
			}
			n, err := strconv.ParseInt(digits, 10, 64)
			if err != nil || n < 0 {
				return Pointer{}, fmt.Errorf("%w: invalid size %q", ErrInvalidPointer, digits)
			}
			size = n
			haveSize = true
		default:
			return Pointer{}, fmt.Errorf("%w: unrecognized line %q", ErrInvalidPointer, line)
		}
	}
	if !haveOID {
		return Pointer{}, fmt.Errorf("%w: missing oid line", ErrInvalidPointer)
	}
	if !haveSize {
		return Pointer{}, fmt.Errorf("%w: missing size line", ErrInvalidPointer)
	}

	return Pointer{version: version, oid: oid, size: size}, nil
}

// IsPointer reports whether content is at most MaxPointerSize bytes and
// decodes successfully as a Pointer (§4.2).
func IsPointer(content []byte) bool {
	if len(content) > MaxPointerSize {
		return false
	}
	_, err := DecodePointer(content)
	return err == nil
}
