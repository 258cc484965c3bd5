// Package fsync flushes an open store file to stable storage using the
// strongest primitive each platform offers for the requested FlushMode.
package fsync

import (
	"fmt"
	"os"
)

// FlushMode controls durability guarantees of a store flush.
type FlushMode int

const (
	// FlushAuto provides safe defaults for most use cases:
	// - fdatasync() after header and index are written
	// - On macOS, plain fsync().
	FlushAuto FlushMode = iota

	// FlushDataOnly hands the writes to the OS without waiting for the disk.
	// Use this when batching many mutations and syncing at the end.
	FlushDataOnly

	// FlushFull provides ultra-safe durability:
	// - fsync() the file descriptor
	// - On macOS, uses F_FULLFSYNC
	// Use this for power-loss sensitive workflows.
	FlushFull
)

func (m FlushMode) String() string {
	switch m {
	case FlushAuto:
		return "auto"
	case FlushDataOnly:
		return "data-only"
	case FlushFull:
		return "full"
	default:
		return fmt.Sprintf("FlushMode(%d)", int(m))
	}
}

// ParseMode maps a mode name as printed by String back to a FlushMode.
func ParseMode(s string) (FlushMode, error) {
	switch s {
	case "", "auto":
		return FlushAuto, nil
	case "data-only", "data":
		return FlushDataOnly, nil
	case "full":
		return FlushFull, nil
	default:
		return FlushAuto, fmt.Errorf("fsync: unknown flush mode %q", s)
	}
}

// File syncs f according to mode.
func File(f *os.File, mode FlushMode) error {
	if f == nil {
		return os.ErrInvalid
	}
	switch mode {
	case FlushDataOnly:
		return nil
	case FlushFull:
		return fullsync(f)
	default:
		return datasync(f)
	}
}
