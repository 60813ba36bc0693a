package archive

import "fmt"

// FormatError signals that a stream does not match the expected backend
// format: a prologue mismatch, an invalid version or type-flag byte, or a
// header block of the wrong length.
type FormatError struct {
	ArchivePath string
	Reason      string
}

func (e *FormatError) Error() string {
	if e.ArchivePath == "" {
		return fmt.Sprintf("format error: %s", e.Reason)
	}
	return fmt.Sprintf("format error for %q: %s", e.ArchivePath, e.Reason)
}

// CorruptionError signals a CRC-32 mismatch between a header's stored and
// recomputed checksum.
type CorruptionError struct {
	ArchivePath string
	Stored      uint32
	Computed    uint32
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("checksum mismatch for %q: stored=%#08x computed=%#08x", e.ArchivePath, e.Stored, e.Computed)
}

// TruncationError signals a short read (read_exact semantics) while
// consuming a header, name, link-name, or payload.
type TruncationError struct {
	ArchivePath string
	Want        int64
	Got         int64
	Err         error
}

func (e *TruncationError) Error() string {
	return fmt.Sprintf("truncated archive reading %q: wanted %d bytes, got %d", e.ArchivePath, e.Want, e.Got)
}

func (e *TruncationError) Unwrap() error { return e.Err }

// UnsupportedEntry signals a filesystem entry encountered during pack that
// is neither a regular file, directory, nor symlink.
type UnsupportedEntry struct {
	SystemPath string
	Mode       string
}

func (e *UnsupportedEntry) Error() string {
	return fmt.Sprintf("unsupported file type %s at %q", e.Mode, e.SystemPath)
}

// NameOverflow signals that an archive path exceeds the TAR backend's
// 100-byte name field.
type NameOverflow struct {
	ArchivePath string
	Size        int
}

func (e *NameOverflow) Error() string {
	return fmt.Sprintf("archive path %q is %d bytes, exceeds TAR's 100-byte name field", e.ArchivePath, e.Size)
}

// ConfigError signals a violated CLI-level constraint: no inputs given, an
// input that is not a regular file, or an output that is not a directory.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Reason)
}
