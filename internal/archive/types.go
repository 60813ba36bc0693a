// Package archive holds the format-neutral data model, typed errors, chunked
// streaming I/O and POSIX metadata read/restore helpers shared by all packer
// backends and by the pack/unpack drivers in internal/driver (see
// internal/backend/bag and internal/backend/tar for the concrete wire
// formats).
package archive

// TypeFlag identifies the kind of filesystem entry a header describes.
type TypeFlag uint8

const (
	// TypeRegular is a plain file; its payload follows the header.
	TypeRegular TypeFlag = 0
	// TypeDirectory is never written as an entry by this codec: directories
	// are reconstructed implicitly from the parent path components of the
	// entries nested under them. The value is retained because the BAG
	// on-disk encoding historically labelled it "HardLink"; it has meant
	// Directory since before this implementation and no hard-link support
	// exists.
	TypeDirectory TypeFlag = 1
	// TypeSymLink is a symbolic link; LinkName holds its target.
	TypeSymLink TypeFlag = 2
)

func (t TypeFlag) String() string {
	switch t {
	case TypeRegular:
		return "regular"
	case TypeDirectory:
		return "directory"
	case TypeSymLink:
		return "symlink"
	default:
		return "unknown"
	}
}

// HostMetadata is the subset of POSIX filesystem metadata a backend needs
// to build a header for an entry. It is obtained by the pack driver with
// link-aware (lstat) semantics so symlinks are never followed.
type HostMetadata struct {
	Size         int64
	Mode         uint32
	UserID       uint32
	GroupID      uint32
	CreatedAt    int64
	LastModified int64
	IsDir        bool
	IsSymlink    bool
}

// FilePath is the transient pack-side pairing of where an entry will be
// recorded in the archive and where it can currently be read from on the
// host. Parent directories of the original input are stripped: archive
// paths are rooted at the input's basename.
type FilePath struct {
	// ArchivePath is the name recorded in the archive. Non-empty, contains
	// no ".." component. For a directory input named D, children appear as
	// D/<sub>.
	ArchivePath string
	// SystemPath is usable to open the entry on the host (absolute or
	// CWD-relative).
	SystemPath string
}

// FileMetadata is the codec-neutral descriptor for one archive entry,
// populated by a backend's decode path and consumed by the unpack driver.
type FileMetadata struct {
	FileName     string
	FileSize     uint64
	FileMode     uint32
	UserID       uint32
	GroupID      uint32
	CreatedAt    int64
	LastModified int64
	TypeFlag     TypeFlag
	// LinkName is present iff TypeFlag == TypeSymLink.
	LinkName string
}
