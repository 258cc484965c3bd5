package types

import (
	"errors"
	"io/fs"
	"strconv"
	"sync"
	"syscall"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	KindNone            ErrKind = iota // not an error
	KindFileNotWritable                // file exists but cannot be opened for writing
	KindFileAlreadyOpen                // lock bit set, or embedded record already has a live store
	KindWrongSignature                 // leading bytes differ from the expected signature
	KindNotEmbeddedFile                // record is not flagged as an embedded store
	KindPermission                     // OS refused access
	KindNotFound                       // file, directory or record missing
	KindDiskFull                       // no space left on device
	KindUnknown                        // OS error we have no category for
	KindUnexpected                     // internal inconsistency found in the file
)

var kindNames = [...]string{
	KindNone:            "none",
	KindFileNotWritable: "file-not-writable",
	KindFileAlreadyOpen: "file-already-open",
	KindWrongSignature:  "wrong-signature",
	KindNotEmbeddedFile: "not-embedded-file",
	KindPermission:      "permission",
	KindNotFound:        "not-found",
	KindDiskFull:        "disk-full",
	KindUnknown:         "unknown",
	KindUnexpected:      "unexpected",
}

func (k ErrKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "ErrKind(" + strconv.Itoa(int(k)) + ")"
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string // overrides the catalogue message when set
	Path string // file involved, if any
	Code int    // OS error code for passthrough kinds, 0 otherwise
	Err  error  // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if msg == "" {
		msg = Message(e.Kind)
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t == nil || e == nil {
		return false
	}
	return e.Kind == t.Kind
}

// OK reports whether e represents "no error".
func (e *Error) OK() bool { return e == nil || e.Kind == KindNone }

// Sentinels commonly returned by implementations.
var (
	// ErrFileNotWritable indicates the file exists but cannot be written.
	ErrFileNotWritable = &Error{Kind: KindFileNotWritable}
	// ErrFileAlreadyOpen indicates another instance holds the file or record open.
	ErrFileAlreadyOpen = &Error{Kind: KindFileAlreadyOpen}
	// ErrWrongSignature indicates the file does not start with the expected signature.
	ErrWrongSignature = &Error{Kind: KindWrongSignature}
	// ErrNotEmbeddedFile indicates the record does not hold an embedded store.
	ErrNotEmbeddedFile = &Error{Kind: KindNotEmbeddedFile}
	// ErrNotFound indicates a missing file or record.
	ErrNotFound = &Error{Kind: KindNotFound}
	// ErrUnexpected indicates an internal inconsistency in the file.
	ErrUnexpected = &Error{Kind: KindUnexpected}
)

// New builds an *Error of the given kind.
func New(kind ErrKind, path string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Code: osCode(cause), Err: cause}
}

// Classify maps any error into the taxonomy. nil yields the KindNone value.
func Classify(err error) *Error {
	if err == nil {
		return &Error{Kind: KindNone}
	}
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	kind := KindUnknown
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, syscall.ENOSPC):
		kind = KindDiskFull
	case errors.Is(err, syscall.EROFS):
		kind = KindFileNotWritable
	case errors.Is(err, fs.ErrPermission):
		kind = KindPermission
	}
	var pe *fs.PathError
	path := ""
	if errors.As(err, &pe) {
		path = pe.Path
	}
	return &Error{Kind: kind, Path: path, Code: osCode(err), Err: err}
}

// KindOf returns the Kind of err after classification.
func KindOf(err error) ErrKind {
	return Classify(err).Kind
}

func osCode(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 0
}

// -----------------------------------------------------------------------------
// Message catalogue
// -----------------------------------------------------------------------------

var defaultMessages = map[ErrKind]string{
	KindNone:            "no error",
	KindFileNotWritable: "file is not writable",
	KindFileAlreadyOpen: "file is already open",
	KindWrongSignature:  "file has the wrong signature",
	KindNotEmbeddedFile: "record is not an embedded file",
	KindPermission:      "permission denied",
	KindNotFound:        "not found",
	KindDiskFull:        "disk is full",
	KindUnknown:         "unknown error",
	KindUnexpected:      "unexpected error",
}

var (
	messagesMu sync.RWMutex
	messages   = defaultMessages
)

// SetMessages replaces the message catalogue. Kinds missing from m keep their
// default message. Passing nil restores the defaults.
func SetMessages(m map[ErrKind]string) {
	merged := make(map[ErrKind]string, len(defaultMessages))
	for k, v := range defaultMessages {
		merged[k] = v
	}
	for k, v := range m {
		merged[k] = v
	}
	messagesMu.Lock()
	messages = merged
	messagesMu.Unlock()
}

// Message returns the catalogue message for k.
func Message(k ErrKind) string {
	messagesMu.RLock()
	defer messagesMu.RUnlock()
	if m, ok := messages[k]; ok {
		return m
	}
	return k.String()
}
