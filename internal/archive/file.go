package archive

import (
	"bufio"
	"io"
	"os"

	"golang.org/x/xerrors"
)

// ChunkSize is the size of the one reusable chunk buffer each streaming
// loop uses; the trailing partial chunk gets a heap buffer sized exactly to
// the remainder.
const ChunkSize = 8192

// ReadFileChunked opens path and reads exactly fileSize bytes from it,
// invoking callback with each chunk of at most ChunkSize bytes. It fails if
// fewer than fileSize bytes are available (io.ReadFull / read_exact
// semantics on the final chunk).
func ReadFileChunked(path string, fileSize uint64, callback func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return xerrors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, ChunkSize)
	return readChunked(r, path, fileSize, callback)
}

// ReadSliceChunked reads exactly fileSize bytes from the already-open
// buffered reader r, invoking callback with each chunk of at most ChunkSize
// bytes. archivePath identifies the entry for error messages. It fails on
// short read.
func ReadSliceChunked(r *bufio.Reader, archivePath string, fileSize uint64, callback func([]byte) error) error {
	return readChunked(r, archivePath, fileSize, callback)
}

func readChunked(r *bufio.Reader, archivePath string, fileSize uint64, callback func([]byte) error) error {
	var buf [ChunkSize]byte
	var read uint64
	for read < fileSize {
		remaining := fileSize - read
		chunk := buf[:]
		if remaining < ChunkSize {
			chunk = make([]byte, remaining)
		}
		n, err := io.ReadFull(r, chunk)
		if err != nil {
			return &TruncationError{ArchivePath: archivePath, Want: int64(fileSize), Got: int64(read) + int64(n), Err: err}
		}
		if err := callback(chunk); err != nil {
			return err
		}
		read += uint64(n)
	}
	return nil
}
