package filearray

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joshuapare/arraykit/internal/fsync"
)

// OpenPolicy decides what CreateBase does when the file's lock bit says
// another instance still has it open.
type OpenPolicy int

const (
	// FailIfOpen returns a FileAlreadyOpen error.
	FailIfOpen OpenPolicy = iota
	// IgnoreIfOpen opens the file anyway; the caller accepts the risk.
	IgnoreIfOpen
	// DeleteIfOpen discards the stale file and starts an empty store.
	DeleteIfOpen
	// WaitThenFail re-checks the lock bit RetryCount times, RetryDelay apart,
	// then fails like FailIfOpen.
	WaitThenFail
	// WaitThenDelete re-checks like WaitThenFail, then behaves like DeleteIfOpen.
	WaitThenDelete
)

var policyNames = [...]string{
	FailIfOpen:     "fail",
	IgnoreIfOpen:   "ignore",
	DeleteIfOpen:   "delete",
	WaitThenFail:   "wait-fail",
	WaitThenDelete: "wait-delete",
}

func (p OpenPolicy) String() string {
	if p >= 0 && int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("OpenPolicy(%d)", int(p))
}

// ParseOpenPolicy maps a policy name as printed by String back to an OpenPolicy.
func ParseOpenPolicy(s string) (OpenPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FailIfOpen, nil
	}
	for p, name := range policyNames {
		if name == s {
			return OpenPolicy(p), nil
		}
	}
	return FailIfOpen, fmt.Errorf("filearray: unknown open policy %q", s)
}

// FlushMode controls how hard FlushChanges pushes data to stable storage.
type FlushMode = fsync.FlushMode

const (
	FlushAuto     = fsync.FlushAuto
	FlushDataOnly = fsync.FlushDataOnly
	FlushFull     = fsync.FlushFull
)

// ParseFlushMode maps "auto", "data-only" or "full" to a FlushMode.
func ParseFlushMode(s string) (FlushMode, error) {
	return fsync.ParseMode(strings.ToLower(strings.TrimSpace(s)))
}

const (
	defaultChunkSize  = 4096
	defaultRetryCount = 10
	defaultRetryDelay = 100 * time.Millisecond
)

// Options configures a store. Zero values select the defaults.
type Options struct {
	// Logger receives debug and lifecycle messages. Nil discards them.
	Logger *slog.Logger

	// Sink is notified after every successful mutation.
	Sink Sink

	// DeferFlush disables the automatic FlushChanges after each mutation.
	// Header and index are then written on FlushChanges, Batch or Close.
	DeferFlush bool

	// FlushMode selects the durability of each flush. Default: FlushAuto.
	FlushMode FlushMode

	// ChunkSize bounds the buffer used when shifting record bytes. Default: 4096.
	ChunkSize int

	// RetryCount and RetryDelay bound the wait policies. Defaults: 10 and 100ms.
	RetryCount int
	RetryDelay time.Duration

	// Version is written into the header of newly created stores.
	Version uint32
}

// DefaultOptions returns the options used when nil is passed to a factory.
func DefaultOptions() Options {
	return Options{
		FlushMode:  FlushAuto,
		ChunkSize:  defaultChunkSize,
		RetryCount: defaultRetryCount,
		RetryDelay: defaultRetryDelay,
	}
}

func (o *Options) resolve() Options {
	r := DefaultOptions()
	if o == nil {
		r.Logger = slog.New(slog.DiscardHandler)
		return r
	}
	r.Logger = o.Logger
	r.Sink = o.Sink
	r.DeferFlush = o.DeferFlush
	r.FlushMode = o.FlushMode
	r.Version = o.Version
	if o.ChunkSize > 0 {
		r.ChunkSize = o.ChunkSize
	}
	if o.RetryCount > 0 {
		r.RetryCount = o.RetryCount
	}
	if o.RetryDelay > 0 {
		r.RetryDelay = o.RetryDelay
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.DiscardHandler)
	}
	return r
}
