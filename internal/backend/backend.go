// Package backend declares the format-abstract contract the pack and unpack
// drivers (internal/driver) are written once against, and is implemented
// concretely by internal/backend/bag and internal/backend/tar.
package backend

import (
	"bufio"

	"github.com/pkgarchive/packer/internal/archive"
)

// Backend is the single point of polymorphism between archive formats. A
// Backend implementation owns its header layout, checksum, and
// end-of-archive convention; it never buffers payload bytes itself — the
// driver streams those separately once WriteEntryHeader/ReadEntryHeader has
// returned.
type Backend interface {
	// WritePrologue emits any format-level preamble (global header for
	// BAG; a no-op for TAR).
	WritePrologue(w *bufio.Writer) error

	// WriteEntryHeader emits the header block plus any backend-specific
	// variable-length fields (BAG name/link-name) for one entry. It does
	// not emit the entry's payload. It returns the payload size the driver
	// must stream afterwards for regular files.
	WriteEntryHeader(w *bufio.Writer, archivePath string, meta archive.HostMetadata, linkName string) (fileSize uint64, err error)

	// WriteEpilogue emits the end-of-archive marker.
	WriteEpilogue(w *bufio.Writer) error

	// ReadPrologue consumes and validates any format-level preamble. It
	// returns a FormatError if the stream is not this backend's format.
	ReadPrologue(r *bufio.Reader) error

	// HeaderBlockSize is the fixed size, in bytes, of one header block.
	HeaderBlockSize() int

	// IsEndOfArchive reports whether headerBytes (exactly HeaderBlockSize
	// bytes, already read from the stream at a header position) signals
	// end-of-archive.
	IsEndOfArchive(headerBytes []byte) bool

	// ReadEntryHeader decodes headerBytes and consumes any additional
	// backend-specific bytes (BAG name/link-name) from r, returning the
	// fully populated, codec-neutral metadata for the entry.
	ReadEntryHeader(r *bufio.Reader, headerBytes []byte) (archive.FileMetadata, error)
}
