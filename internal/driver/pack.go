// Package driver implements the pack and unpack drivers: the traversal,
// emission, and restoration pipelines that are written once and
// parameterized over a backend.Backend. See pack.go (§4.5) and unpack.go
// (§4.6).
package driver

import (
	"bufio"
	"os"
	"path"
	"path/filepath"

	"github.com/google/renameio"
	"golang.org/x/xerrors"

	"github.com/pkgarchive/packer/internal/archive"
	"github.com/pkgarchive/packer/internal/backend"
	"github.com/pkgarchive/packer/internal/logging"
)

// writerBufferSize is the size of the buffered writer wrapping the archive
// output file; it bounds I/O syscalls, not payload chunking (see
// archive.ChunkSize for that).
const writerBufferSize = 8192

// Pack writes a new archive at archivePath containing inputs, using the
// given backend format. The archive is produced atomically: on success it
// replaces any existing file at archivePath; on any error archivePath is
// left untouched.
func Pack(log *logging.Logger, b backend.Backend, archivePath string, inputs []string) error {
	if len(inputs) == 0 {
		return &archive.ConfigError{Reason: "no input paths given"}
	}

	out, err := renameio.TempFile("", archivePath)
	if err != nil {
		return xerrors.Errorf("creating archive: %w", err)
	}
	defer out.Cleanup()

	w := bufio.NewWriterSize(out, writerBufferSize)

	if err := b.WritePrologue(w); err != nil {
		return xerrors.Errorf("writing prologue: %w", err)
	}

	worklist := make([]archive.FilePath, 0, len(inputs))
	for _, in := range inputs {
		worklist = append(worklist, archive.FilePath{
			ArchivePath: filepath.Base(in),
			SystemPath:  in,
		})
	}

	if err := packAll(log, b, w, worklist); err != nil {
		return err
	}

	if err := b.WriteEpilogue(w); err != nil {
		return xerrors.Errorf("writing epilogue: %w", err)
	}
	if err := w.Flush(); err != nil {
		return xerrors.Errorf("flushing archive writer: %w", err)
	}
	if err := out.CloseAtomicallyReplace(); err != nil {
		return xerrors.Errorf("finalizing archive: %w", err)
	}
	return nil
}

// packAll processes a worklist depth-first, in the order given, pushing
// directory children in host listing order (not sorted) as it goes.
func packAll(log *logging.Logger, b backend.Backend, w *bufio.Writer, worklist []archive.FilePath) error {
	for _, fp := range worklist {
		if err := packOne(log, b, w, fp); err != nil {
			return err
		}
	}
	return nil
}

func packOne(log *logging.Logger, b backend.Backend, w *bufio.Writer, fp archive.FilePath) error {
	log.Debugf("packing %s (%s)", fp.ArchivePath, fp.SystemPath)

	meta, err := archive.LstatHostMetadata(fp.SystemPath)
	if err != nil {
		return xerrors.Errorf("%s: %w", fp.ArchivePath, err)
	}

	switch {
	case meta.IsDir:
		children, err := readDirEntries(fp.SystemPath)
		if err != nil {
			return xerrors.Errorf("%s: %w", fp.ArchivePath, err)
		}
		sub := make([]archive.FilePath, 0, len(children))
		for _, name := range children {
			sub = append(sub, archive.FilePath{
				ArchivePath: path.Join(fp.ArchivePath, name),
				SystemPath:  filepath.Join(fp.SystemPath, name),
			})
		}
		return packAll(log, b, w, sub)

	case meta.IsSymlink:
		target, err := os.Readlink(fp.SystemPath)
		if err != nil {
			return xerrors.Errorf("%s: %w", fp.ArchivePath, err)
		}
		log.Tracef("%s -> %s", fp.ArchivePath, target)
		if _, err := b.WriteEntryHeader(w, fp.ArchivePath, meta, target); err != nil {
			return xerrors.Errorf("%s: %w", fp.ArchivePath, err)
		}
		return nil

	default:
		// Regular file is the only remaining supported type; anything
		// stat/lstat would report as a device, FIFO, or socket has already
		// been excluded from IsDir/IsSymlink and falls through here, so we
		// must verify it is in fact a plain file before packing it.
		if !isRegularMode(meta.Mode) {
			return &archive.UnsupportedEntry{SystemPath: fp.SystemPath, Mode: os.FileMode(meta.Mode).String()}
		}
		fileSize, err := b.WriteEntryHeader(w, fp.ArchivePath, meta, "")
		if err != nil {
			return xerrors.Errorf("%s: %w", fp.ArchivePath, err)
		}
		if err := archive.ReadFileChunked(fp.SystemPath, fileSize, func(chunk []byte) error {
			log.Tracef("%s: writing %d byte chunk", fp.ArchivePath, len(chunk))
			_, err := w.Write(chunk)
			return err
		}); err != nil {
			return xerrors.Errorf("%s: %w", fp.ArchivePath, err)
		}
		return nil
	}
}

func readDirEntries(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}

// isRegularMode reports whether the low 16 bits of a POSIX mode value
// identify a regular file (S_IFREG). Directories and symlinks are already
// handled by the caller before this is consulted.
func isRegularMode(mode uint32) bool {
	const sIFMT = 0o170000
	const sIFREG = 0o100000
	return mode&sIFMT == sIFREG
}
