//go:build windows

package fsync

import (
	"os"

	"golang.org/x/sys/windows"
)

// datasync performs file sync using FlushFileBuffers.
func datasync(f *os.File) error {
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}

// fullsync is the same as datasync; FlushFileBuffers already covers metadata.
func fullsync(f *os.File) error {
	return datasync(f)
}
