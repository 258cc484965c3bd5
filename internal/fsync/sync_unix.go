//go:build linux || freebsd

package fsync

import (
	"os"

	"golang.org/x/sys/unix"
)

// datasync performs file descriptor sync.
//
// On Linux/FreeBSD, fdatasync() provides sufficient guarantees.
func datasync(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}

// fullsync also flushes file metadata.
func fullsync(f *os.File) error {
	return unix.Fsync(int(f.Fd()))
}
