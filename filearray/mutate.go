package filearray

import (
	"fmt"
	"math"

	"github.com/joshuapare/arraykit/filearray/index"
	"github.com/joshuapare/arraykit/internal/format"
)

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// RecordLen returns the payload length of the record at pos.
func (s *Store) RecordLen(pos int) (int, error) {
	s.mustBeOpen()
	s.checkPos(pos)
	n, err := s.recordLen(pos)
	return int(n), err
}

// GetRecord returns a copy of the bytes of the record at pos.
func (s *Store) GetRecord(pos int) ([]byte, error) {
	s.mustBeOpen()
	s.checkPos(pos)
	n, err := s.recordLen(pos)
	if err != nil {
		return nil, err
	}
	off := s.payloadOffset(pos)
	b := make([]byte, n)
	if err := s.readAt(b, off); err != nil {
		return nil, fmt.Errorf("record %d: %w", s.idx.IDOf(pos), err)
	}
	return b, nil
}

// GetRecordByID returns a copy of the bytes of the record with the given ID.
// Panics if no record has that ID.
func (s *Store) GetRecordByID(id uint32) ([]byte, error) {
	s.mustBeOpen()
	return s.GetRecord(s.mustPositionOf(id))
}

// ForEach calls fn for every record in position order. Records holding an
// embedded store are passed with their raw bytes. Iteration stops at the
// first error, which ForEach returns.
func (s *Store) ForEach(fn func(pos int, e index.Entry, data []byte) error) error {
	s.mustBeOpen()
	for pos := 0; pos < s.idx.Len(); pos++ {
		b, err := s.GetRecord(pos)
		if err != nil {
			return err
		}
		if err := fn(pos, s.idx.Entry(pos), b); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Insert / remove
// -----------------------------------------------------------------------------

// InsertAt stores b as a new record at pos and returns its ID. Positions past
// the end append.
func (s *Store) InsertAt(pos int, b []byte) (uint32, error) {
	s.mustBeOpen()
	return s.insert(pos, b, format.KindData)
}

// Append stores b as a new last record and returns its ID.
func (s *Store) Append(b []byte) (uint32, error) {
	s.mustBeOpen()
	return s.insert(s.idx.Len(), b, format.KindData)
}

// InsertEmbeddedAt inserts an empty record flagged to hold an embedded store
// and returns its ID. Open the embedded store with CreateEmbedded.
func (s *Store) InsertEmbeddedAt(pos int) (uint32, error) {
	s.mustBeOpen()
	return s.insert(pos, nil, format.KindEmbedded)
}

func (s *Store) insert(pos int, b []byte, kind format.Kind) (uint32, error) {
	if pos < 0 {
		panic(fmt.Sprintf("filearray: negative insert position %d", pos))
	}
	n := int64(len(b))
	grow := format.LengthPrefixSize + n
	if n > format.MaxRecordSize ||
		s.idx.Len() >= format.MaxRecords ||
		int64(s.indexOffset)+grow > math.MaxUint32 {
		return index.InvalidID, ErrTooLarge
	}
	id := s.idx.AllocateUniqueID()
	if id == index.InvalidID {
		return index.InvalidID, ErrIDsExhausted
	}

	at := s.indexOffset
	if err := s.setAllocation(s.alloc + grow + format.EntrySize); err != nil {
		return index.InvalidID, err
	}
	prefix := format.LengthPrefix(uint32(n))
	rec := append(prefix[:], b...)
	if err := s.writeAt(rec, s.sigLen()+int64(at)); err != nil {
		return index.InvalidID, err
	}

	pos = s.idx.InsertAt(pos, at, id)
	if kind == format.KindEmbedded {
		s.idx.MarkEmbedded(pos)
	}
	s.indexOffset = at + uint32(grow)
	s.log.Debug("record inserted", "pos", pos, "id", id, "len", n, "kind", kind)
	return id, s.commit(Event{Op: RecordInserted, Pos: pos})
}

// Remove deletes the record at pos. Removing a record whose embedded store
// is open panics.
func (s *Store) Remove(pos int) error {
	s.mustBeOpen()
	s.checkPos(pos)
	if !s.idx.IsEmbeddedClosed(pos) {
		panic(fmt.Sprintf("filearray: removing record %d while its embedded store is open", s.idx.IDOf(pos)))
	}
	n, err := s.recordLen(pos)
	if err != nil {
		return err
	}
	size := uint32(format.LengthPrefixSize) + n
	id := s.idx.IDOf(pos)

	if err := s.compactData(int64(s.idx.OffsetOf(pos)), int64(size)); err != nil {
		return err
	}
	s.idx.Remove(pos, size)
	if err := s.setAllocation(s.sigLen() + int64(s.indexOffset) + s.idx.ByteSize()); err != nil {
		return err
	}
	s.log.Debug("record removed", "pos", pos, "id", id, "len", n)
	return s.commit(Event{Op: RecordRemoved, Pos: pos})
}

// RemoveByID deletes the record with the given ID. Panics if no record has it.
func (s *Store) RemoveByID(id uint32) error {
	s.mustBeOpen()
	return s.Remove(s.mustPositionOf(id))
}

// -----------------------------------------------------------------------------
// Update
// -----------------------------------------------------------------------------

// SetRecord replaces the bytes of the record at pos, keeping its ID.
// Records holding an embedded store cannot be overwritten; SetRecord panics.
func (s *Store) SetRecord(pos int, b []byte) error {
	s.mustBeOpen()
	s.checkPos(pos)
	if s.idx.IsEmbedded(pos) {
		panic(fmt.Sprintf("filearray: SetRecord on embedded record %d", s.idx.IDOf(pos)))
	}
	if err := s.resizeRecordSpace(pos, int64(len(b))); err != nil {
		return err
	}
	off := s.payloadOffset(pos)
	if err := s.writeAt(b, off); err != nil {
		return err
	}
	s.log.Debug("record changed", "pos", pos, "id", s.idx.IDOf(pos), "len", len(b))
	return s.commit(Event{Op: RecordChanged, Pos: pos})
}

// SetRecordByID replaces the bytes of the record with the given ID.
func (s *Store) SetRecordByID(id uint32, b []byte) error {
	s.mustBeOpen()
	return s.SetRecord(s.mustPositionOf(id), b)
}

// SetID gives the record at pos a new permanent ID. It fails with ErrIDInUse
// when another record holds id.
func (s *Store) SetID(pos int, id uint32) error {
	s.mustBeOpen()
	s.checkPos(pos)
	if id == index.InvalidID {
		panic("filearray: SetID with invalid ID")
	}
	if !s.idx.IsEmbeddedClosed(pos) {
		panic(fmt.Sprintf("filearray: SetID on record %d while its embedded store is open", s.idx.IDOf(pos)))
	}
	if s.idx.IDOf(pos) == id {
		return nil
	}
	if !s.idx.SetID(pos, id) {
		return fmt.Errorf("set ID %d: %w", id, ErrIDInUse)
	}
	return s.commit(Event{Op: RecordChanged, Pos: pos})
}

// SetVersion replaces the opaque version stored in the header.
func (s *Store) SetVersion(v uint32) error {
	s.mustBeOpen()
	s.version = v
	s.dirty = true
	if s.autoFlush {
		return s.FlushChanges()
	}
	return nil
}

// -----------------------------------------------------------------------------
// Reorder
// -----------------------------------------------------------------------------

// MoveTo moves the record at from so that it ends up at position to. Only the
// index changes; no record bytes move.
func (s *Store) MoveTo(from, to int) error {
	s.mustBeOpen()
	s.checkPos(from)
	s.checkPos(to)
	if from == to {
		return nil
	}
	s.idx.Move(from, to)
	return s.commit(Event{Op: RecordMoved, Pos: from, To: to})
}

// Swap exchanges the positions of the records at a and b. Only the index
// changes.
func (s *Store) Swap(a, b int) error {
	s.mustBeOpen()
	s.checkPos(a)
	s.checkPos(b)
	if a == b {
		return nil
	}
	s.idx.Swap(a, b)
	return s.commit(Event{Op: RecordsSwapped, Pos: a, To: b})
}
