package archive

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// LstatHostMetadata stats systemPath without following a trailing symlink,
// so that symlink entries are packed as symlinks rather than as whatever
// they point to.
func LstatHostMetadata(systemPath string) (HostMetadata, error) {
	var st unix.Stat_t
	if err := unix.Lstat(systemPath, &st); err != nil {
		return HostMetadata{}, xerrors.Errorf("lstat %s: %w", systemPath, err)
	}
	return HostMetadata{
		Size:         st.Size,
		Mode:         uint32(st.Mode),
		UserID:       st.Uid,
		GroupID:      st.Gid,
		CreatedAt:    int64(st.Ctim.Sec),
		LastModified: int64(st.Mtim.Sec),
		IsDir:        st.Mode&unix.S_IFMT == unix.S_IFDIR,
		IsSymlink:    st.Mode&unix.S_IFMT == unix.S_IFLNK,
	}, nil
}

// RestoreMetadata applies mode, ownership and timestamps from meta onto the
// already-created filesystem entry at path. isSymlink selects the
// link-aware syscalls (Lchown/Lutimes) so a symlink's own metadata is
// restored rather than its target's. Ownership-restore failures are
// reported to the caller, which treats them as fatal per spec; mode and
// timestamp failures are likewise returned as-is.
func RestoreMetadata(path string, meta FileMetadata, isSymlink bool) error {
	atime := time.Unix(meta.LastModified, 0)
	mtime := time.Unix(meta.LastModified, 0)

	if isSymlink {
		// Go's os.Chmod/os.Chtimes follow symlinks; there is no portable
		// lchmod, and symlink permission bits are not meaningful on Linux,
		// so only ownership and times are restored on the link itself.
		if err := unix.Lchown(path, int(meta.UserID), int(meta.GroupID)); err != nil {
			return xerrors.Errorf("lchown %s: %w", path, err)
		}
		tv := []unix.Timeval{
			{Sec: atime.Unix(), Usec: 0},
			{Sec: mtime.Unix(), Usec: 0},
		}
		if err := unix.Lutimes(path, tv); err != nil {
			return xerrors.Errorf("lutimes %s: %w", path, err)
		}
		return nil
	}

	if err := os.Chmod(path, os.FileMode(meta.FileMode&0o7777)); err != nil {
		return xerrors.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Chown(path, int(meta.UserID), int(meta.GroupID)); err != nil {
		return xerrors.Errorf("chown %s: %w", path, err)
	}
	if err := os.Chtimes(path, atime, mtime); err != nil {
		return xerrors.Errorf("chtimes %s: %w", path, err)
	}
	return nil
}
