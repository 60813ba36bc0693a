package tar

import (
	"hash/crc32"

	"github.com/pkgarchive/packer/internal/archive"
	"github.com/pkgarchive/packer/internal/byteorder"
)

/*
Layout of the fixed 512-byte header block. This is a deliberately
non-GNU/POSIX-compatible variant: little-endian binary integers and a
CRC-32 checksum instead of octal ASCII and a summed-bytes checksum, and no
block padding after the payload (see package doc).

	0..100    file name (UTF-8, NUL-padded to 100; >100 bytes is rejected at encode)
	100..108  file_mode (u32 little-endian, zero-padded to 8 bytes)
	108..116  user_id (u32 little-endian, zero-padded)
	116..124  group_id (u32 little-endian, zero-padded)
	124..136  file_size (u64 little-endian, zero-padded to 12 bytes)
	136..148  last_modified (i64 little-endian, zero-padded to 12 bytes)
	148..156  checksum (u32 little-endian, zero-padded to 8 bytes)
	156       type_flag (0/1/2)
	157..257  link_name (NUL-padded to 100 bytes)
	257..512  reserved zeros
*/
const (
	blockSize = 512
	nameSize  = 100

	offName         = 0
	offFileMode     = 100
	offUserID       = 108
	offGroupID      = 116
	offFileSize     = 124
	offLastModified = 136
	offChecksum     = 148
	offTypeFlag     = 156
	offLinkName     = 157
	serializedEnd   = 257
)

// isEndOfArchive reports whether headerBytes is a 512-byte zero block; its
// appearance at a header position signals end-of-archive.
func isEndOfArchive(headerBytes []byte) bool {
	if len(headerBytes) != blockSize {
		return false
	}
	for _, b := range headerBytes {
		if b != 0 {
			return false
		}
	}
	return true
}

func putZeroPadded(dst []byte, value []byte) {
	copy(dst, value)
	for i := len(value); i < len(dst); i++ {
		dst[i] = 0
	}
}

// encodeHeader serializes meta into a 512-byte header block. The archive
// path and, for symlinks, the link target must each fit within 100 bytes of
// UTF-8; longer names are rejected with NameOverflow rather than silently
// truncated.
func encodeHeader(meta archive.FileMetadata) (block [blockSize]byte, err error) {
	nameBytes, err := byteorder.EncodePath(meta.FileName)
	if err != nil {
		return block, err
	}
	if len(nameBytes) > nameSize {
		return block, &archive.NameOverflow{ArchivePath: meta.FileName, Size: len(nameBytes)}
	}

	var linkNameBytes []byte
	if meta.TypeFlag == archive.TypeSymLink {
		linkNameBytes, err = byteorder.EncodePath(meta.LinkName)
		if err != nil {
			return block, err
		}
		if len(linkNameBytes) > nameSize {
			return block, &archive.NameOverflow{ArchivePath: meta.LinkName, Size: len(linkNameBytes)}
		}
	}

	copy(block[offName:offName+nameSize], nameBytes)
	putZeroPadded(block[offFileMode:offFileMode+8], byteorder.EncodeU32(meta.FileMode))
	putZeroPadded(block[offUserID:offUserID+8], byteorder.EncodeU32(meta.UserID))
	putZeroPadded(block[offGroupID:offGroupID+8], byteorder.EncodeU32(meta.GroupID))
	putZeroPadded(block[offFileSize:offFileSize+12], byteorder.EncodeU64(meta.FileSize))
	putZeroPadded(block[offLastModified:offLastModified+12], byteorder.EncodeI64(meta.LastModified))
	block[offTypeFlag] = byte(meta.TypeFlag)
	copy(block[offLinkName:offLinkName+nameSize], linkNameBytes)

	sum := crc32.ChecksumIEEE(zeroedChecksum(block))
	copy(block[offChecksum:offChecksum+8], byteorder.EncodeU32(sum))

	return block, nil
}

// zeroedChecksum returns the serialized region (bytes 0..257) of block with
// the checksum field cleared, the input to both encode and verify.
func zeroedChecksum(block [blockSize]byte) []byte {
	out := make([]byte, serializedEnd)
	copy(out, block[:serializedEnd])
	for i := offChecksum; i < offChecksum+8; i++ {
		out[i] = 0
	}
	return out
}

// decodeHeader verifies the checksum of a 512-byte header block and decodes
// its fields. created_at is not stored by this format and is always
// reported as 0.
func decodeHeader(block []byte) (meta archive.FileMetadata, err error) {
	if len(block) != blockSize {
		return meta, &archive.FormatError{Reason: "invalid header block length"}
	}
	var fixed [blockSize]byte
	copy(fixed[:], block)

	stored := byteorder.DecodeU32(block[offChecksum : offChecksum+4])
	computed := crc32.ChecksumIEEE(zeroedChecksum(fixed))

	name, nameErr := decodeFixedName(block[offName : offName+nameSize])

	typeFlag := archive.TypeFlag(block[offTypeFlag])

	meta = archive.FileMetadata{
		FileName:     name,
		FileSize:     byteorder.DecodeU64(block[offFileSize : offFileSize+8]),
		FileMode:     byteorder.DecodeU32(block[offFileMode : offFileMode+4]),
		UserID:       byteorder.DecodeU32(block[offUserID : offUserID+4]),
		GroupID:      byteorder.DecodeU32(block[offGroupID : offGroupID+4]),
		CreatedAt:    0,
		LastModified: byteorder.DecodeI64(block[offLastModified : offLastModified+8]),
		TypeFlag:     typeFlag,
	}

	if computed != stored {
		return meta, &archive.CorruptionError{ArchivePath: name, Stored: stored, Computed: computed}
	}
	if nameErr != nil {
		return meta, &archive.FormatError{ArchivePath: name, Reason: nameErr.Error()}
	}

	switch typeFlag {
	case archive.TypeRegular, archive.TypeDirectory, archive.TypeSymLink:
	default:
		return meta, &archive.FormatError{ArchivePath: name, Reason: "invalid type flag byte"}
	}

	if typeFlag == archive.TypeSymLink {
		linkName, err := decodeFixedName(block[offLinkName : offLinkName+nameSize])
		if err != nil {
			return meta, &archive.FormatError{ArchivePath: name, Reason: err.Error()}
		}
		meta.LinkName = linkName
	}

	return meta, nil
}

// decodeFixedName trims trailing NUL padding from a fixed-width field
// before UTF-8 validation.
func decodeFixedName(field []byte) (string, error) {
	n := len(field)
	for n > 0 && field[n-1] == 0 {
		n--
	}
	return byteorder.DecodePath(field[:n])
}
