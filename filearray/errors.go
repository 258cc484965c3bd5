package filearray

import "errors"

var (
	// ErrIDInUse indicates SetID was asked for an ID another record already has.
	ErrIDInUse = errors.New("filearray: record ID already in use")

	// ErrIDsExhausted indicates every ID in the allocation range is taken.
	ErrIDsExhausted = errors.New("filearray: no unused record ID left")

	// ErrTooLarge indicates the mutation would overflow a 32-bit size, offset or count.
	ErrTooLarge = errors.New("filearray: store would exceed 32-bit limits")

	// ErrCorrupt indicates Verify found the on-disk structure inconsistent.
	ErrCorrupt = errors.New("filearray: inconsistent store structure")

	// ErrClosed is returned when flushing or verifying a closed store.
	ErrClosed = errors.New("filearray: store is closed")
)
