// Package bag implements the BAG archive format: a 64-byte global header, a
// 64-byte per-entry header carrying variable-length name/link-name fields,
// CRC-32/ISO-HDLC checksums, and a 128-byte end-of-archive marker. See
// header.go and global_header.go for the exact wire layout.
package bag

import (
	"bufio"
	"errors"
	"io"

	"github.com/pkgarchive/packer/internal/archive"
	"github.com/pkgarchive/packer/internal/byteorder"
)

// eofMarker is written at archive close: 128 zero bytes, i.e. two
// zero-valued header blocks back to back. The reader only needs to see the
// first 64 to stop.
var eofMarker [2 * headerSize]byte

// Backend implements backend.Backend for the BAG archive format.
type Backend struct{}

// New returns a BAG backend instance.
func New() *Backend { return &Backend{} }

func (*Backend) HeaderBlockSize() int { return headerSize }

func (*Backend) WritePrologue(w *bufio.Writer) error {
	block := encodeGlobalHeader()
	_, err := w.Write(block[:])
	return err
}

func (*Backend) ReadPrologue(r *bufio.Reader) error {
	block := make([]byte, globalHeaderSize)
	if _, err := io.ReadFull(r, block); err != nil {
		return &archive.TruncationError{ArchivePath: "<global header>", Want: globalHeaderSize, Err: err}
	}
	return decodeGlobalHeader(block)
}

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
		CreatedAt:    meta.CreatedAt,
		LastModified: meta.LastModified,
		TypeFlag:     typeFlag,
		LinkName:     linkName,
	}

	block, nameBytes, linkNameBytes, err := encodeHeader(fm)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(block[:]); err != nil {
		return 0, err
	}
	if _, err := w.Write(nameBytes); err != nil {
		return 0, err
	}
	if len(linkNameBytes) > 0 {
		if _, err := w.Write(linkNameBytes); err != nil {
			return 0, err
		}
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
	meta, fileNameSize, linkNameSize, decodeErr := decodeHeader(headerBytes)

	nameBytes := make([]byte, fileNameSize)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return meta, &archive.TruncationError{ArchivePath: "<unknown>", Want: int64(fileNameSize), Err: err}
	}
	name, nameErr := byteorder.DecodePath(nameBytes)
	meta.FileName = name

	if decodeErr != nil {
		var corrupt *archive.CorruptionError
		var format *archive.FormatError
		switch {
		case errors.As(decodeErr, &corrupt):
			corrupt.ArchivePath = name
		case errors.As(decodeErr, &format):
			format.ArchivePath = name
		}
		return meta, decodeErr
	}
	if nameErr != nil {
		return meta, &archive.FormatError{ArchivePath: name, Reason: nameErr.Error()}
	}

	if meta.TypeFlag == archive.TypeSymLink {
		linkNameBytes := make([]byte, linkNameSize)
		if _, err := io.ReadFull(r, linkNameBytes); err != nil {
			return meta, &archive.TruncationError{ArchivePath: name, Want: int64(linkNameSize), Err: err}
		}
		linkName, err := byteorder.DecodePath(linkNameBytes)
		if err != nil {
			return meta, &archive.FormatError{ArchivePath: name, Reason: err.Error()}
		}
		meta.LinkName = linkName
	}

	return meta, nil
}
