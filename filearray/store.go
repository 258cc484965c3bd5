package filearray

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/joshuapare/arraykit/filearray/index"
	"github.com/joshuapare/arraykit/internal/format"
	"github.com/joshuapare/arraykit/internal/fsync"
)

// serials numbers every store opened by this process, for logs and diagnostics.
var serials atomic.Uint64

// Store is one open array file, or one store embedded in a record of another.
//
// All offsets kept by a store are relative to the end of its signature. The
// store's region is [0, alloc): the signature, the header, the records and the
// index. For a base store the region is the whole file; for an embedded store
// it is the payload of one record of the enclosing store.
//
// NOT thread-safe. Only one goroutine should use a store at a time.
type Store struct {
	serial uint64
	log    *slog.Logger
	sink   Sink
	opts   Options

	sig         []byte
	version     uint32
	indexOffset uint32 // end of the data section, start of the index
	alloc       int64  // current size of the region
	idx         *index.Index

	autoFlush bool
	dirty     bool // header or index differ from what is on disk
	closed    bool

	// Base stores own the file.
	f    *os.File
	path string

	// Embedded stores borrow it through their enclosing store.
	parent   *Store
	parentID uint32
}

func newStore(o Options) *Store {
	return &Store{
		serial:    serials.Add(1),
		log:       o.Logger,
		sink:      o.Sink,
		opts:      o,
		idx:       index.New(),
		autoFlush: !o.DeferFlush,
	}
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// Len returns the number of records.
func (s *Store) Len() int {
	s.mustBeOpen()
	return s.idx.Len()
}

// ID returns the permanent ID of the record at pos.
func (s *Store) ID(pos int) uint32 {
	s.mustBeOpen()
	return s.idx.IDOf(pos)
}

// PositionOf returns the current position of the record with the given ID.
func (s *Store) PositionOf(id uint32) (int, bool) {
	s.mustBeOpen()
	return s.idx.PositionOfID(id)
}

// Kind returns what the record at pos holds.
func (s *Store) Kind(pos int) index.Kind {
	s.mustBeOpen()
	return s.idx.KindOf(pos)
}

// IsEmbedded reports whether the record at pos holds an embedded store.
func (s *Store) IsEmbedded(pos int) bool {
	s.mustBeOpen()
	return s.idx.IsEmbedded(pos)
}

// Entries returns a snapshot of the index in position order.
func (s *Store) Entries() []index.Entry {
	s.mustBeOpen()
	return s.idx.Entries()
}

// Version returns the opaque format version stored in the header.
func (s *Store) Version() uint32 { return s.version }

// Signature returns the store's signature bytes. Embedded stores have none.
func (s *Store) Signature() []byte { return append([]byte(nil), s.sig...) }

// Path returns the file backing the store, or the file of the outermost
// enclosing store for an embedded one.
func (s *Store) Path() string { return s.root().path }

// IndexOffset returns where the index section begins, relative to the end of
// the signature. It is also the end of the data section.
func (s *Store) IndexOffset() uint32 { return s.indexOffset }

// Size returns the byte size of the store's region.
func (s *Store) Size() int64 { return s.alloc }

// Embedded reports whether s lives inside a record of another store.
func (s *Store) Embedded() bool { return s.parent != nil }

// Parent returns the enclosing store and the ID of the record holding s.
func (s *Store) Parent() (*Store, uint32) { return s.parent, s.parentID }

// Logger returns the store's logger.
func (s *Store) Logger() *slog.Logger { return s.log }

func (s *Store) String() string {
	if s.parent != nil {
		return fmt.Sprintf("filearray#%d(embedded in #%d record %d)", s.serial, s.parent.serial, s.parentID)
	}
	return fmt.Sprintf("filearray#%d(%s)", s.serial, s.path)
}

func (s *Store) root() *Store {
	r := s
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (s *Store) mustBeOpen() {
	if s.closed {
		panic(fmt.Sprintf("filearray: use of closed store #%d", s.serial))
	}
}

func (s *Store) checkPos(pos int) {
	if pos < 0 || pos >= s.idx.Len() {
		panic(fmt.Sprintf("filearray: position %d out of range [0, %d)", pos, s.idx.Len()))
	}
}

func (s *Store) mustPositionOf(id uint32) int {
	pos, ok := s.idx.PositionOfID(id)
	if !ok {
		panic(fmt.Sprintf("filearray: no record with ID %d", id))
	}
	return pos
}

func (s *Store) sigLen() int64 { return int64(len(s.sig)) }

// -----------------------------------------------------------------------------
// Region I/O
//
// Offsets passed to readAt/writeAt are region offsets: 0 is the first byte of
// the signature. Embedded stores translate them into the enclosing store's
// region on every call, so they never hold a handle or an absolute position
// that could go stale when the enclosing store moves bytes around.
// -----------------------------------------------------------------------------

func (s *Store) readAt(p []byte, off int64) error {
	if s.parent != nil {
		base := s.parent.payloadOffset(s.parent.mustPositionOf(s.parentID))
		return s.parent.readAt(p, base+off)
	}
	if _, err := s.f.ReadAt(p, off); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("read %d bytes at %d: %w", len(p), off, err)
	}
	return nil
}

func (s *Store) writeAt(p []byte, off int64) error {
	if s.parent != nil {
		base := s.parent.payloadOffset(s.parent.mustPositionOf(s.parentID))
		return s.parent.writeAt(p, base+off)
	}
	if _, err := s.f.WriteAt(p, off); err != nil {
		return fmt.Errorf("write %d bytes at %d: %w", len(p), off, err)
	}
	return nil
}

// regionReader exposes a store's region as an io.ReaderAt.
type regionReader struct{ s *Store }

func (r regionReader) ReadAt(p []byte, off int64) (int, error) {
	if err := r.s.readAt(p, off); err != nil {
		return 0, err
	}
	return len(p), nil
}

// setAllocation grows or shrinks the region to n bytes. Base stores resize the
// file; embedded stores resize their record in the enclosing store.
func (s *Store) setAllocation(n int64) error {
	if n == s.alloc {
		return nil
	}
	if s.parent != nil {
		if n > format.MaxRecordSize {
			return ErrTooLarge
		}
		if err := s.parent.resizeRecordSpace(s.parent.mustPositionOf(s.parentID), n); err != nil {
			return err
		}
	} else if err := s.f.Truncate(n); err != nil {
		return fmt.Errorf("resize file to %d bytes: %w", n, err)
	}
	s.alloc = n
	return nil
}

// syncHandle flushes the shared OS handle, writing the header and index of any
// enclosing store whose bookkeeping changed on the way up.
func (s *Store) syncHandle() error {
	if s.parent == nil {
		return fsync.File(s.f, s.opts.FlushMode)
	}
	if s.parent.dirty {
		if err := s.parent.writeMeta(); err != nil {
			return err
		}
	}
	return s.parent.syncHandle()
}

// -----------------------------------------------------------------------------
// Record addressing
// -----------------------------------------------------------------------------

// recordLen reads the length prefix of the record at pos.
func (s *Store) recordLen(pos int) (uint32, error) {
	var p [format.LengthPrefixSize]byte
	if err := s.readAt(p[:], s.sigLen()+int64(s.idx.OffsetOf(pos))); err != nil {
		return 0, fmt.Errorf("record %d length: %w", s.idx.IDOf(pos), err)
	}
	return format.ReadU32(p[:], 0), nil
}

// payloadOffset returns the region offset of the first payload byte of the
// record at pos.
func (s *Store) payloadOffset(pos int) int64 {
	return s.sigLen() + int64(s.idx.OffsetOf(pos)) + format.LengthPrefixSize
}

// -----------------------------------------------------------------------------
// Close
// -----------------------------------------------------------------------------

// Close writes pending header and index changes, clears the lock bit and
// releases the file (base stores) or the record (embedded stores).
//
// Closing a store while a store embedded in one of its records is still open
// is a programming error and panics. Close on a closed store returns nil.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	if !s.idx.AllEmbeddedClosed() {
		panic(fmt.Sprintf("filearray: closing store #%d while embedded stores %v are open", s.serial, s.idx.OpenEmbedded()))
	}

	err := s.writeMeta()
	// Clearing the lock bit is the last write before the handle is released.
	if err == nil {
		err = s.writeCountField(false)
	}
	if err == nil {
		err = s.syncHandle()
	}

	s.closed = true
	if s.parent != nil {
		s.parent.idx.EmbeddedClosed(s.parent.mustPositionOf(s.parentID))
		s.log.Debug("embedded store closed", "error", err)
		return err
	}
	if cerr := s.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	s.f = nil
	s.log.Debug("store closed", "error", err)
	return err
}
