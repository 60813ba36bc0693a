// Package byteorder converts between the primitive values stored in archive
// headers and their little-endian on-disk byte representation.
package byteorder

import (
	"encoding/binary"
	"unicode/utf8"

	"golang.org/x/xerrors"
)

// EncodeU32 returns the little-endian encoding of v.
func EncodeU32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// DecodeU32 decodes a little-endian uint32 from the first 4 bytes of b.
func DecodeU32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// EncodeU64 returns the little-endian encoding of v.
func EncodeU64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// DecodeU64 decodes a little-endian uint64 from the first 8 bytes of b.
func DecodeU64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

// EncodeI64 returns the two's-complement little-endian encoding of v.
func EncodeI64(v int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b
}

// DecodeI64 decodes a two's-complement little-endian int64 from the first 8
// bytes of b.
func DecodeI64(b []byte) int64 {
	return int64(binary.LittleEndian.Uint64(b))
}

// EncodePath returns the UTF-8 encoding of path's string form.
func EncodePath(path string) ([]byte, error) {
	if !utf8.ValidString(path) {
		return nil, xerrors.Errorf("path %q is not valid UTF-8", path)
	}
	return []byte(path), nil
}

// DecodePath interprets b as a UTF-8 path string. No NUL-trimming is
// performed here; variable-length fields (BAG) pass exactly the stored byte
// count, fixed-width NUL-padded fields (TAR) trim before calling this.
func DecodePath(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", xerrors.New("decoded path bytes are not valid UTF-8")
	}
	return string(b), nil
}
