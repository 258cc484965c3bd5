//go:build darwin

package fsync

import (
	"os"

	"golang.org/x/sys/unix"
)

// datasync uses fsync; macOS has no fdatasync.
func datasync(f *os.File) error {
	return unix.Fsync(int(f.Fd()))
}

// fullsync uses F_FULLFSYNC, which forces the drive to flush its own cache.
func fullsync(f *os.File) error {
	_, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0)
	return err
}
