package bag

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/orcaman/writerseeker"

	"github.com/pkgarchive/packer/internal/archive"
)

func sampleMetadata() archive.FileMetadata {
	return archive.FileMetadata{
		FileName:     "hello.txt",
		FileSize:     6,
		FileMode:     0o644,
		UserID:       1000,
		GroupID:      1000,
		CreatedAt:    1700000000,
		LastModified: 1700000100,
		TypeFlag:     archive.TypeRegular,
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	meta := sampleMetadata()
	block, nameBytes, _, err := encodeHeader(meta)
	if err != nil {
		t.Fatalf("encodeHeader: %v", err)
	}
	if string(nameBytes) != meta.FileName {
		t.Fatalf("encoded name = %q, want %q", nameBytes, meta.FileName)
	}

	got, fileNameSize, linkNameSize, err := decodeHeader(block[:])
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	got.FileName = meta.FileName // the name field lives off-header on the wire
	if fileNameSize != uint64(len(nameBytes)) {
		t.Errorf("fileNameSize = %d, want %d", fileNameSize, len(nameBytes))
	}
	if linkNameSize != 0 {
		t.Errorf("linkNameSize = %d, want 0", linkNameSize)
	}
	if diff := cmp.Diff(meta, got); diff != "" {
		t.Errorf("decodeHeader(encodeHeader(meta)) mismatch (-want +got):\n%s", diff)
	}
}

func TestHeaderRoundTripSymlink(t *testing.T) {
	meta := archive.FileMetadata{
		FileName:     "link",
		FileMode:     0o777,
		TypeFlag:     archive.TypeSymLink,
		LinkName:     "hello.txt",
		CreatedAt:    1,
		LastModified: 2,
	}
	block, _, linkNameBytes, err := encodeHeader(meta)
	if err != nil {
		t.Fatalf("encodeHeader: %v", err)
	}
	if string(linkNameBytes) != meta.LinkName {
		t.Fatalf("encoded link name = %q, want %q", linkNameBytes, meta.LinkName)
	}
	got, _, linkNameSize, err := decodeHeader(block[:])
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if linkNameSize != uint64(len(linkNameBytes)) {
		t.Errorf("linkNameSize = %d, want %d", linkNameSize, len(linkNameBytes))
	}
	if got.TypeFlag != archive.TypeSymLink {
		t.Errorf("TypeFlag = %v, want SymLink", got.TypeFlag)
	}
}

func TestHeaderChecksumDetectsBitFlip(t *testing.T) {
	meta := sampleMetadata()
	block, _, _, err := encodeHeader(meta)
	if err != nil {
		t.Fatalf("encodeHeader: %v", err)
	}

	// Flip a bit in a non-padding byte (file_size field).
	block[offFileSize] ^= 0x01

	_, _, _, err = decodeHeader(block[:])
	if err == nil {
		t.Fatal("decodeHeader: want CorruptionError after bit flip, got nil")
	}
	if _, ok := err.(*archive.CorruptionError); !ok {
		t.Fatalf("decodeHeader error type = %T, want *archive.CorruptionError", err)
	}
}

func TestIsEndOfArchive(t *testing.T) {
	var zero [headerSize]byte
	if !isEndOfArchive(zero[:]) {
		t.Error("isEndOfArchive(zero block) = false, want true")
	}
	nonzero := zero
	nonzero[10] = 1
	if isEndOfArchive(nonzero[:]) {
		t.Error("isEndOfArchive(non-zero block) = true, want false")
	}
}

// TestHeaderViaInMemoryWriter exercises encode/decode through an in-memory
// io.WriteSeeker, mirroring how a buffered file writer would be used without
// touching the filesystem.
func TestHeaderViaInMemoryWriter(t *testing.T) {
	ws := writerseeker.WriterSeeker{}
	meta := sampleMetadata()
	block, nameBytes, _, err := encodeHeader(meta)
	if err != nil {
		t.Fatalf("encodeHeader: %v", err)
	}
	if _, err := ws.Write(block[:]); err != nil {
		t.Fatalf("Write header: %v", err)
	}
	if _, err := ws.Write(nameBytes); err != nil {
		t.Fatalf("Write name: %v", err)
	}

	r := ws.BytesReader()
	buf := make([]byte, headerSize+len(nameBytes))
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}

	got, fileNameSize, _, err := decodeHeader(buf[:headerSize])
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if fileNameSize != uint64(len(nameBytes)) {
		t.Fatalf("fileNameSize = %d, want %d", fileNameSize, len(nameBytes))
	}
	if got.FileSize != meta.FileSize {
		t.Errorf("FileSize = %d, want %d", got.FileSize, meta.FileSize)
	}
}
