package driver

import (
	"bufio"
	"io"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/xerrors"

	"github.com/pkgarchive/packer/internal/archive"
	"github.com/pkgarchive/packer/internal/backend"
	"github.com/pkgarchive/packer/internal/logging"
)

const readerBufferSize = 8192

// Unpack reads the archive at archivePath with the given backend format and
// re-materializes its entries under outDir, which must already exist.
func Unpack(log *logging.Logger, b backend.Backend, archivePath, outDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return xerrors.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, readerBufferSize)

	if err := b.ReadPrologue(r); err != nil {
		return xerrors.Errorf("reading prologue: %w", err)
	}

	headerBuf := make([]byte, b.HeaderBlockSize())
	for {
		if _, err := io.ReadFull(r, headerBuf); err != nil {
			return &archive.TruncationError{ArchivePath: "<header>", Want: int64(len(headerBuf)), Err: err}
		}
		if b.IsEndOfArchive(headerBuf) {
			return nil
		}
		if err := unpackOne(log, b, r, headerBuf, outDir); err != nil {
			return err
		}
	}
}

func unpackOne(log *logging.Logger, b backend.Backend, r *bufio.Reader, headerBuf []byte, outDir string) error {
	meta, err := b.ReadEntryHeader(r, headerBuf)
	if err != nil {
		return err
	}
	log.Debugf("unpacking %s: type=%s size=%d mode=%#o uid=%d gid=%d mtime=%d linkname=%q",
		meta.FileName, meta.TypeFlag, meta.FileSize, meta.FileMode, meta.UserID, meta.GroupID,
		meta.LastModified, meta.LinkName)

	filename, parentDirs := splitArchivePath(meta.FileName)

	destDir := outDir
	if parentDirs != "" {
		destDir = filepath.Join(outDir, filepath.FromSlash(parentDirs))
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return xerrors.Errorf("%s: %w", meta.FileName, err)
		}
	}
	destPath := filepath.Join(destDir, filename)

	switch meta.TypeFlag {
	case archive.TypeSymLink:
		os.Remove(destPath) // best-effort: allow re-creating an existing entry
		if err := os.Symlink(meta.LinkName, destPath); err != nil {
			log.Warnf("%s: creating symlink to %q failed, skipping: %v", meta.FileName, meta.LinkName, err)
			return nil
		}

	default:
		out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return xerrors.Errorf("%s: %w", meta.FileName, err)
		}
		w := bufio.NewWriterSize(out, archive.ChunkSize)
		streamErr := archive.ReadSliceChunked(r, meta.FileName, meta.FileSize, func(chunk []byte) error {
			log.Tracef("%s: writing %d byte chunk", meta.FileName, len(chunk))
			_, err := w.Write(chunk)
			return err
		})
		flushErr := w.Flush()
		closeErr := out.Close()
		if streamErr != nil {
			return streamErr
		}
		if flushErr != nil {
			return xerrors.Errorf("%s: %w", meta.FileName, flushErr)
		}
		if closeErr != nil {
			return xerrors.Errorf("%s: %w", meta.FileName, closeErr)
		}
	}

	if err := archive.RestoreMetadata(destPath, meta, meta.TypeFlag == archive.TypeSymLink); err != nil {
		return xerrors.Errorf("restoring metadata for %s: %w", meta.FileName, err)
	}
	return nil
}

// splitArchivePath decomposes an archive path (always "/"-separated) into
// its final component and the "/"-joined directory components above it, if
// any.
func splitArchivePath(archivePath string) (filename, parentDirs string) {
	dir, file := path.Split(archivePath)
	dir = path.Clean(dir)
	if dir == "." {
		dir = ""
	}
	return file, dir
}
