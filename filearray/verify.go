package filearray

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/joshuapare/arraykit/filearray/index"
	"github.com/joshuapare/arraykit/internal/format"
)

// Stats summarises a store's layout.
type Stats struct {
	Records      int
	Embedded     int   // records flagged as embedded stores
	OpenEmbedded int   // embedded stores currently open
	DataBytes    int64 // records including their length prefixes
	IndexBytes   int64
	Size         int64 // whole region, signature included
}

// Stats returns layout counters without touching the file.
func (s *Store) Stats() Stats {
	s.mustBeOpen()
	st := Stats{
		Records:      s.idx.Len(),
		OpenEmbedded: len(s.idx.OpenEmbedded()),
		DataBytes:    int64(s.indexOffset) - format.FirstRecordOffset,
		IndexBytes:   s.idx.ByteSize(),
		Size:         s.alloc,
	}
	for pos := range st.Records {
		if s.idx.IsEmbedded(pos) {
			st.Embedded++
		}
	}
	return st
}

// Verify checks that the records tile the data section exactly, that the
// on-disk length prefixes agree with the index, and that the region has the
// size the header implies. It returns an error wrapping ErrCorrupt on the
// first inconsistency found.
func (s *Store) Verify() error {
	if s.closed {
		return ErrClosed
	}
	corrupt := func(msg string, args ...any) error {
		return fmt.Errorf("%s: %s: %w", s, fmt.Sprintf(msg, args...), ErrCorrupt)
	}

	entries := s.idx.Entries()
	seen := make(map[uint32]struct{}, len(entries))
	for _, e := range entries {
		if e.ID == index.InvalidID {
			return corrupt("record with invalid ID")
		}
		if _, dup := seen[e.ID]; dup {
			return corrupt("duplicate ID %d", e.ID)
		}
		seen[e.ID] = struct{}{}
		if !e.Kind.Valid() {
			return corrupt("record %d has kind %d", e.ID, e.Kind)
		}
	}

	slices.SortFunc(entries, func(a, b index.Entry) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
	next := int64(format.FirstRecordOffset)
	for _, e := range entries {
		if int64(e.Offset) != next {
			return corrupt("record %d at %d, expected %d", e.ID, e.Offset, next)
		}
		pos, _ := s.idx.PositionOfID(e.ID)
		n, err := s.recordLen(pos)
		if err != nil {
			return corrupt("record %d: %v", e.ID, err)
		}
		next += format.LengthPrefixSize + int64(n)
		if next > int64(s.indexOffset) {
			return corrupt("record %d ends at %d past index offset %d", e.ID, next, s.indexOffset)
		}
	}
	if next != int64(s.indexOffset) {
		return corrupt("data ends at %d, index offset is %d", next, s.indexOffset)
	}

	want := s.sigLen() + int64(s.indexOffset) + s.idx.ByteSize()
	if s.alloc != want {
		return corrupt("allocation %d, expected %d", s.alloc, want)
	}
	if s.parent != nil {
		n, err := s.parent.recordLen(s.parent.mustPositionOf(s.parentID))
		if err != nil {
			return corrupt("enclosing record: %v", err)
		}
		if int64(n) != s.alloc {
			return corrupt("enclosing record holds %d bytes, store needs %d", n, s.alloc)
		}
	} else {
		fi, err := s.f.Stat()
		if err != nil {
			return fmt.Errorf("stat: %w", err)
		}
		if fi.Size() != s.alloc {
			return corrupt("file is %d bytes, store needs %d", fi.Size(), s.alloc)
		}
	}

	if !s.dirty {
		h, err := s.readHeader()
		if err != nil {
			return corrupt("header: %v", err)
		}
		if int(h.Count) != s.idx.Len() || h.IndexOffset != s.indexOffset || h.Version != s.version {
			return corrupt("header (count %d, index %d) disagrees with memory (count %d, index %d)",
				h.Count, h.IndexOffset, s.idx.Len(), s.indexOffset)
		}
	}
	return nil
}
