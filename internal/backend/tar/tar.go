// Package tar implements the packer project's simplified TAR-like archive
// format: a 512-byte header per entry, no prologue, little-endian binary
// integers and a CRC-32 checksum (not GNU/POSIX tar's octal-ASCII,
// summed-byte checksum). It is not wire-compatible with standard tar; see
// header.go for the exact layout.
package tar

import (
	"bufio"

	"github.com/pkgarchive/packer/internal/archive"
)

// eofMarker is written at archive close: 1024 zero bytes (two header
// blocks), though the reader only needs to see 512 zero bytes at a header
// position to stop. This asymmetry mirrors historical archives produced by
// this format and is retained for compatibility with them.
var eofMarker [2 * blockSize]byte

// Backend implements backend.Backend for the simplified TAR format.
type Backend struct{}

// New returns a TAR backend instance.
func New() *Backend { return &Backend{} }

func (*Backend) HeaderBlockSize() int { return blockSize }

func (*Backend) WritePrologue(w *bufio.Writer) error { return nil }

func (*Backend) ReadPrologue(r *bufio.Reader) error { return nil }

func (*Backend) WriteEntryHeader(w *bufio.Writer, archivePath string, meta archive.HostMetadata, linkName string) (uint64, error) {
	typeFlag := archive.TypeRegular
	switch {
	case meta.IsSymlink:
		typeFlag = archive.TypeSymLink
	case meta.IsDir:
		typeFlag = archive.TypeDirectory
	}

	fm := archive.FileMetadata{
		FileName:     archivePath,
		FileSize:     uint64(meta.Size),
		FileMode:     meta.Mode,
		UserID:       meta.UserID,
		GroupID:      meta.GroupID,
		LastModified: meta.LastModified,
		TypeFlag:     typeFlag,
		LinkName:     linkName,
	}

	block, err := encodeHeader(fm)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(block[:]); err != nil {
		return 0, err
	}
	return fm.FileSize, nil
}

func (*Backend) WriteEpilogue(w *bufio.Writer) error {
	_, err := w.Write(eofMarker[:])
	return err
}

func (*Backend) IsEndOfArchive(headerBytes []byte) bool {
	return isEndOfArchive(headerBytes)
}

func (*Backend) ReadEntryHeader(r *bufio.Reader, headerBytes []byte) (archive.FileMetadata, error) {
	// The TAR backend has no variable-length fields after the header
	// block, so r is unused; it exists only to satisfy backend.Backend.
	return decodeHeader(headerBytes)
}
