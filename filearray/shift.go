package filearray

import (
	"fmt"
	"math"

	"github.com/joshuapare/arraykit/internal/format"
)

// ExpandData opens a gap of n bytes at offset by moving the data section
// [offset, IndexOffset) n bytes toward the end. The allocation must already
// hold the extra bytes. The gap keeps whatever bytes were there before.
//
// The index is not touched; callers adjust record offsets themselves.
func (s *Store) ExpandData(offset, n uint32) error {
	s.mustBeOpen()
	if offset < format.FirstRecordOffset || offset > s.indexOffset {
		panic(fmt.Sprintf("filearray: expand at %d outside data section [%d, %d]", offset, format.FirstRecordOffset, s.indexOffset))
	}
	return s.expandData(int64(offset), int64(n))
}

// CompactData closes a gap of n bytes at offset by moving the data section
// [offset+n, IndexOffset) n bytes toward the start. The allocation is shrunk
// by the caller afterwards.
func (s *Store) CompactData(offset, n uint32) error {
	s.mustBeOpen()
	if offset < format.FirstRecordOffset || int64(offset)+int64(n) > int64(s.indexOffset) {
		panic(fmt.Sprintf("filearray: compact [%d, %d) outside data section [%d, %d)", offset, int64(offset)+int64(n), format.FirstRecordOffset, s.indexOffset))
	}
	return s.compactData(int64(offset), int64(n))
}

func (s *Store) expandData(offset, extra int64) error {
	if extra == 0 {
		return nil
	}
	end := int64(s.indexOffset)
	if end+extra > math.MaxUint32 {
		return ErrTooLarge
	}
	s.indexOffset = uint32(end + extra)
	s.dirty = true

	chunk := make([]byte, min(int64(s.opts.ChunkSize), end-offset))
	base := s.sigLen()
	// Walk backwards so a chunk is never overwritten before it is copied.
	for end > offset {
		n := min(int64(len(chunk)), end-offset)
		src := end - n
		if err := s.readAt(chunk[:n], base+src); err != nil {
			return fmt.Errorf("expand: %w", err)
		}
		if err := s.writeAt(chunk[:n], base+src+extra); err != nil {
			return fmt.Errorf("expand: %w", err)
		}
		end = src
	}
	return nil
}

func (s *Store) compactData(offset, blank int64) error {
	if blank == 0 {
		return nil
	}
	end := int64(s.indexOffset)
	s.indexOffset = uint32(end - blank)
	s.dirty = true

	src := offset + blank
	chunk := make([]byte, min(int64(s.opts.ChunkSize), max(end-src, 0)))
	base := s.sigLen()
	for src < end {
		n := min(int64(len(chunk)), end-src)
		if err := s.readAt(chunk[:n], base+src); err != nil {
			return fmt.Errorf("compact: %w", err)
		}
		if err := s.writeAt(chunk[:n], base+src-blank); err != nil {
			return fmt.Errorf("compact: %w", err)
		}
		src += n
	}
	return nil
}

// resizeRecordSpace changes the payload length of the record at pos to
// newLen, shifting every record stored after it. The new payload bytes are
// not initialised.
func (s *Store) resizeRecordSpace(pos int, newLen int64) error {
	if newLen < 0 || newLen > format.MaxRecordSize {
		return ErrTooLarge
	}
	old, err := s.recordLen(pos)
	if err != nil {
		return err
	}
	delta := newLen - int64(old)
	if delta == 0 {
		return nil
	}
	if int64(s.indexOffset)+delta > math.MaxUint32 {
		return ErrTooLarge
	}

	recOff := int64(s.idx.OffsetOf(pos))
	payload := recOff + format.LengthPrefixSize
	if delta > 0 {
		if err := s.setAllocation(s.alloc + delta); err != nil {
			return err
		}
		if err := s.expandData(payload+int64(old), delta); err != nil {
			return err
		}
	} else {
		if err := s.compactData(payload+newLen, -delta); err != nil {
			return err
		}
		if err := s.setAllocation(s.alloc + delta); err != nil {
			return err
		}
	}

	prefix := format.LengthPrefix(uint32(newLen))
	if err := s.writeAt(prefix[:], s.sigLen()+recOff); err != nil {
		return err
	}
	s.idx.ResizeRecord(pos, delta)
	s.dirty = true
	return nil
}
