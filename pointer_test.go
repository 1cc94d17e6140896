package lfs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOIDHex = "4d7a214614ab2935c943f9e0ff69d22eadbb8f32b25bc7d7a3f0d27d10fb89a0"

func TestPointerEncodeDecodeRoundTrip(t *testing.T) {
	oid, err := NewOID(testOIDHex)
	require.NoError(t, err)
	p, err := NewPointer(oid, 128)
	require.NoError(t, err)

	encoded := p.Encode()
	assert.Equal(t, "version https://git-lfs.github.com/spec/v1\noid sha256:"+testOIDHex+"\nsize 128\n", string(encoded))

	decoded, err := DecodePointer(encoded)
	require.NoError(t, err)
	assert.Equal(t, p, decoded)
}

func TestDecodePointerAllowsSizeBeforeOID(t *testing.T) {
	text := "version https://git-lfs.github.com/spec/v1\nsize 42\noid sha256:" + testOIDHex + "\n"
	p, err := DecodePointer([]byte(text))
	require.NoError(t, err)
	assert.EqualValues(t, 42, p.Size())
	assert.Equal(t, OID(testOIDHex), p.OID())
}

func TestDecodePointerRejectsVersionNotFirst(t *testing.T) {
	text := "oid sha256:" + testOIDHex + "\nversion https://git-lfs.github.com/spec/v1\nsize 1\n"
	_, err := DecodePointer([]byte(text))
	assert.ErrorIs(t, err, ErrInvalidPointer)
}

func TestDecodePointerRejectsDuplicateLine(t *testing.T) {
	text := "version https://git-lfs.github.com/spec/v1\noid sha256:" + testOIDHex + "\noid sha256:" + testOIDHex + "\n"
	_, err := DecodePointer([]byte(text))
	assert.ErrorIs(t, err, ErrInvalidPointer)
}

func TestDecodePointerRejectsMissingTrailingNewline(t *testing.T) {
	text := "version https://git-lfs.github.com/spec/v1\noid sha256:" + testOIDHex + "\nsize 1"
	_, err := DecodePointer([]byte(text))
	assert.ErrorIs(t, err, ErrInvalidPointer)
}

func TestDecodePointerRejectsTrailingBlankLine(t *testing.T) {
	text := "version https://git-lfs.github.com/spec/v1\noid sha256:" + testOIDHex + "\nsize 1\n\n"
	_, err := DecodePointer([]byte(text))
	assert.ErrorIs(t, err, ErrInvalidPointer)
}

func TestDecodePointerRejectsBadHexLength(t *testing.T) {
	text := "version https://git-lfs.github.com/spec/v1\noid sha256:abc\nsize 1\n"
	_, err := DecodePointer([]byte(text))
	assert.ErrorIs(t, err, ErrInvalidPointer)
}

func TestDecodePointerRejectsNegativeSize(t *testing.T) {
	text := "version https://git-lfs.github.com/spec/v1\noid sha256:" + testOIDHex + "\nsize -1\n"
	_, err := DecodePointer([]byte(text))
	assert.ErrorIs(t, err, ErrInvalidPointer)
}

func TestDecodePointerRejectsLeadingZeroSize(t *testing.T) {
	text := "version https://git-lfs.github.com/spec/v1\noid sha256:" + testOIDHex + "\nsize 007\n"
	_, err := DecodePointer([]byte(text))
	assert.ErrorIs(t, err, ErrInvalidPointer)
}

func TestDecodePointerRejectsLeadingZeroZeroSize(t *testing.T) {
	text := "version https://git-lfs.github.com/spec/v1\noid sha256:" + testOIDHex + "\nsize 00\n"
	_, err := DecodePointer([]byte(text))
	assert.ErrorIs(t, err, ErrInvalidPointer)
}

func TestDecodePointerAllowsExactZeroSize(t *testing.T) {
	text := "version https://git-lfs.github.com/spec/v1\noid sha256:" + testOIDHex + "\nsize 0\n"
	p, err := DecodePointer([]byte(text))
	require.NoError(t, err)
	assert.EqualValues(t, 0, p.Size())
}

func TestDecodePointerRejectsUnsupportedVersion(t *testing.T) {
	text := "version https://example.com/spec/v2\noid sha256:" + testOIDHex + "\nsize 1\n"
	_, err := DecodePointer([]byte(text))
	assert.ErrorIs(t, err, ErrInvalidPointer)
}

func TestDecodePointerRejectsOversizedBlob(t *testing.T) {
	huge := strings.Repeat("x", MaxPointerSize+1)
	_, err := DecodePointer([]byte(huge))
	assert.ErrorIs(t, err, ErrInvalidPointer)
}

func TestIsPointer(t *testing.T) {
	oid, err := NewOID(testOIDHex)
	require.NoError(t, err)
	p, err := NewPointer(oid, 1)
	require.NoError(t, err)

	assert.True(t, IsPointer(p.Encode()))
	assert.False(t, IsPointer([]byte("not a pointer at all")))
	assert.False(t, IsPointer([]byte(strings.Repeat("y", MaxPointerSize+1))))
}

func TestNewPointerRejectsInvalidOID(t *testing.T) {
	_, err := NewPointer(OID("too-short"), 1)
	assert.ErrorIs(t, err, ErrInvalidOID)
}

func TestNewPointerRejectsNegativeSize(t *testing.T) {
	oid, err := NewOID(testOIDHex)
	require.NoError(t, err)
	_, err = NewPointer(oid, -1)
	assert.ErrorIs(t, err, ErrInvalidPointer)
}
