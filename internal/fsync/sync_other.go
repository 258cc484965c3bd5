//go:build !linux && !freebsd && !darwin && !windows

package fsync

import "os"

func datasync(f *os.File) error {
	return f.Sync()
}

func fullsync(f *os.File) error {
	return f.Sync()
}
