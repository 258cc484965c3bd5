package filearray

import (
	"fmt"

	"github.com/joshuapare/arraykit/internal/format"
)

// FlushChanges writes the header and the whole index, then flushes the file
// according to Options.FlushMode. Mutations call it automatically unless
// automatic flushing is off.
func (s *Store) FlushChanges() error {
	if s.closed {
		return ErrClosed
	}
	if err := s.writeMeta(); err != nil {
		return err
	}
	return s.syncHandle()
}

// SetAutoFlush turns the automatic flush after each mutation on or off.
// Turning it back on flushes pending changes.
func (s *Store) SetAutoFlush(on bool) error {
	s.mustBeOpen()
	s.autoFlush = on
	if on && s.dirty {
		return s.FlushChanges()
	}
	return nil
}

// AutoFlush reports whether mutations flush automatically.
func (s *Store) AutoFlush() bool { return s.autoFlush }

// Batch runs fn with automatic flushing disabled and flushes once afterwards.
// If fn fails, nothing is flushed and its error is returned; pending changes
// are written by a later flush or by Close.
func (s *Store) Batch(fn func() error) error {
	s.mustBeOpen()
	prev := s.autoFlush
	s.autoFlush = false
	err := fn()
	s.autoFlush = prev
	if err != nil {
		return err
	}
	return s.FlushChanges()
}

// writeMeta writes the header (lock bit set) and the index.
func (s *Store) writeMeta() error {
	h := format.Header{
		Version:     s.version,
		Count:       uint32(s.idx.Len()),
		Locked:      true,
		IndexOffset: s.indexOffset,
	}
	if err := s.writeAt(h.Bytes(), s.sigLen()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := s.writeAt(s.idx.AppendTo(nil), s.sigLen()+int64(s.indexOffset)); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	s.dirty = false
	return nil
}

// writeCountField rewrites only the record count field, with or without the
// lock bit.
func (s *Store) writeCountField(locked bool) error {
	h := format.Header{Count: uint32(s.idx.Len()), Locked: locked}
	var b [4]byte
	format.PutU32(b[:], 0, h.CountField())
	if err := s.writeAt(b[:], s.sigLen()+format.CountOffset); err != nil {
		return fmt.Errorf("write lock bit: %w", err)
	}
	return nil
}

// commit finishes a mutation: flush when automatic, then notify the sink.
func (s *Store) commit(e Event) error {
	s.dirty = true
	if s.autoFlush {
		if err := s.FlushChanges(); err != nil {
			return err
		}
	}
	if s.sink != nil {
		s.sink.StoreChanged(s, e)
	}
	return nil
}
