package bag

import (
	"hash/crc32"

	"github.com/pkgarchive/packer/internal/archive"
	"github.com/pkgarchive/packer/internal/byteorder"
)

/*
Layout of the per-entry header block (64 bytes, zero-padded):

	offset  size  field
	0       8     file_name_size (u64)
	8       8     file_size (u64)
	16      4     file_mode (u32)
	20      4     user_id (u32)
	24      4     group_id (u32)
	28      8     created_at (i64)
	36      8     last_modified (i64)
	44      1     type_flag (0=Regular, 1=Directory, 2=SymLink)
	45      8     link_name_size (u64)
	53      4     checksum (u32, CRC-32/ISO-HDLC)
	57      7     reserved (zero)

Immediately following the header block: file_name_size bytes of UTF-8 file
name, then (if type_flag is SymLink) link_name_size bytes of UTF-8 link
target, then (if type_flag is Regular) exactly file_size bytes of payload.
*/
const (
	headerSize = 64

	offFileNameSize  = 0
	offFileSize      = 8
	offFileMode      = 16
	offUserID        = 20
	offGroupID       = 24
	offCreatedAt     = 28
	offLastModified  = 36
	offTypeFlag      = 44
	offLinkNameSize  = 45
	offChecksum      = 53
	serializedLength = 57
)

// eoaMarker is a 64-byte zero header block; its appearance at a header
// position signals end-of-archive.
var eoaMarker [headerSize]byte

func isEndOfArchive(headerBytes []byte) bool {
	if len(headerBytes) != headerSize {
		return false
	}
	for _, b := range headerBytes {
		if b != 0 {
			return false
		}
	}
	return true
}

// encodeHeader serializes meta (with the checksum field zeroed, then
// recomputed) into a 64-byte header block, plus the variable-length name
// and link-name fields that follow it on the wire.
func encodeHeader(meta archive.FileMetadata) (block [headerSize]byte, nameBytes, linkNameBytes []byte, err error) {
	nameBytes, err = byteorder.EncodePath(meta.FileName)
	if err != nil {
		return block, nil, nil, err
	}
	if meta.TypeFlag == archive.TypeSymLink {
		linkNameBytes, err = byteorder.EncodePath(meta.LinkName)
		if err != nil {
			return block, nil, nil, err
		}
	}

	fillHeaderFields(&block, meta, len(nameBytes), len(linkNameBytes))

	sum := crc32.ChecksumIEEE(block[:serializedLength])
	copy(block[offChecksum:offChecksum+4], byteorder.EncodeU32(sum))

	return block, nameBytes, linkNameBytes, nil
}

func fillHeaderFields(block *[headerSize]byte, meta archive.FileMetadata, nameLen, linkNameLen int) {
	copy(block[offFileNameSize:], byteorder.EncodeU64(uint64(nameLen)))
	copy(block[offFileSize:], byteorder.EncodeU64(meta.FileSize))
	copy(block[offFileMode:], byteorder.EncodeU32(meta.FileMode))
	copy(block[offUserID:], byteorder.EncodeU32(meta.UserID))
	copy(block[offGroupID:], byteorder.EncodeU32(meta.GroupID))
	copy(block[offCreatedAt:], byteorder.EncodeI64(meta.CreatedAt))
	copy(block[offLastModified:], byteorder.EncodeI64(meta.LastModified))
	block[offTypeFlag] = byte(meta.TypeFlag)
	copy(block[offLinkNameSize:], byteorder.EncodeU64(uint64(linkNameLen)))
	// offChecksum left zero; caller fills it in after computing the CRC.
}

// decodeHeader verifies the checksum of a 64-byte header block and decodes
// its fixed-width fields. It does not read the variable-length name or
// link-name fields; callers do that separately once they have
// fileNameSize/linkNameSize.
func decodeHeader(block []byte) (meta archive.FileMetadata, fileNameSize, linkNameSize uint64, err error) {
	if len(block) != headerSize {
		return meta, 0, 0, &archive.FormatError{Reason: "invalid header block length"}
	}

	stored := byteorder.DecodeU32(block[offChecksum : offChecksum+4])
	checkable := make([]byte, serializedLength)
	copy(checkable, block[:serializedLength])
	copy(checkable[offChecksum:offChecksum+4], []byte{0, 0, 0, 0})
	computed := crc32.ChecksumIEEE(checkable)

	// Fields are decoded regardless of checksum outcome: the caller needs
	// fileNameSize to read the entry's archive path off the wire even when
	// reporting a CorruptionError, so the error can identify which entry is
	// affected.
	fileNameSize = byteorder.DecodeU64(block[offFileNameSize : offFileNameSize+8])
	linkNameSize = byteorder.DecodeU64(block[offLinkNameSize : offLinkNameSize+8])
	typeFlag := archive.TypeFlag(block[offTypeFlag])
	meta = archive.FileMetadata{
		FileSize:     byteorder.DecodeU64(block[offFileSize : offFileSize+8]),
		FileMode:     byteorder.DecodeU32(block[offFileMode : offFileMode+4]),
		UserID:       byteorder.DecodeU32(block[offUserID : offUserID+4]),
		GroupID:      byteorder.DecodeU32(block[offGroupID : offGroupID+4]),
		CreatedAt:    byteorder.DecodeI64(block[offCreatedAt : offCreatedAt+8]),
		LastModified: byteorder.DecodeI64(block[offLastModified : offLastModified+8]),
		TypeFlag:     typeFlag,
	}

	if computed != stored {
		return meta, fileNameSize, linkNameSize, &archive.CorruptionError{Stored: stored, Computed: computed}
	}

	switch typeFlag {
	case archive.TypeRegular, archive.TypeDirectory, archive.TypeSymLink:
	default:
		return meta, fileNameSize, linkNameSize, &archive.FormatError{Reason: "invalid type flag byte"}
	}

	return meta, fileNameSize, linkNameSize, nil
}
