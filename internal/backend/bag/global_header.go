package bag

import (
	"github.com/pkgarchive/packer/internal/archive"
)

// preamble is the exact 7-byte magic every BAG archive begins with.
const preamble = "BAG AF."

// versionV1 is the only version this implementation understands. Earlier,
// undocumented variants of the BAG format omitted the link_name_size field
// from the per-entry header; this implementation only produces and accepts
// the current 57-byte layout (see header.go) and rejects anything else with
// a FormatError rather than guess at a migration.
const versionV1 = 1

const globalHeaderSize = 64

// encodeGlobalHeader returns the 64-byte, zero-padded global header block:
// 7-byte preamble, 1-byte version, 56 bytes reserved.
func encodeGlobalHeader() [globalHeaderSize]byte {
	var block [globalHeaderSize]byte
	copy(block[0:7], preamble)
	block[7] = versionV1
	return block
}

// decodeGlobalHeader validates a 64-byte candidate global header block.
func decodeGlobalHeader(block []byte) error {
	if len(block) != globalHeaderSize {
		return &archive.FormatError{Reason: "invalid global header block length"}
	}
	if string(block[0:7]) != preamble {
		return &archive.FormatError{Reason: "not a BAG archive: preamble mismatch"}
	}
	if block[7] != versionV1 {
		return &archive.FormatError{Reason: "unsupported BAG version byte"}
	}
	return nil
}
