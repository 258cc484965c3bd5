package format

import "errors"

var (
	// ErrSignatureMismatch indicates the leading bytes differ from the expected signature.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadKind indicates an index entry carried an unknown record kind.
	ErrBadKind = errors.New("format: unknown record kind")
	// ErrBadIndexOffset indicates the header points the index before the first record.
	ErrBadIndexOffset = errors.New("format: index offset inside header")
)
