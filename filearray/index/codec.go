package index

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/joshuapare/arraykit/internal/format"
)

var (
	// ErrDuplicateID indicates two on-disk entries carry the same ID.
	ErrDuplicateID = errors.New("index: duplicate record ID")
	// ErrInvalidID indicates an on-disk entry carries InvalidID.
	ErrInvalidID = errors.New("index: invalid record ID")
)

// readBatch bounds the buffer used while decoding large indexes.
const readBatch = 4096

// ReadFromStream replaces the contents of x with count entries decoded from r.
// On error x is left unchanged.
func (x *Index) ReadFromStream(r io.Reader, count int) error {
	if count < 0 {
		return fmt.Errorf("index: negative entry count %d", count)
	}
	slots := make([]slot, 0, min(count, readBatch))
	used := make(map[uint32]struct{}, min(count, readBatch))
	b := make([]byte, min(count, readBatch)*format.EntrySize)

	for done := 0; done < count; {
		n := min(count-done, readBatch)
		chunk := b[:n*format.EntrySize]
		if _, err := io.ReadFull(r, chunk); err != nil {
			return fmt.Errorf("index: reading entries %d..%d: %w", done, done+n, err)
		}
		for i := range n {
			e, err := format.ParseEntry(chunk[i*format.EntrySize:])
			if err != nil {
				return fmt.Errorf("index: entry %d: %w", done+i, err)
			}
			if e.ID == InvalidID {
				return fmt.Errorf("index: entry %d: %w", done+i, ErrInvalidID)
			}
			if _, dup := used[e.ID]; dup {
				return fmt.Errorf("index: entry %d, id %d: %w", done+i, e.ID, ErrDuplicateID)
			}
			used[e.ID] = struct{}{}
			slots = append(slots, slot{Entry: Entry{Offset: e.Offset, ID: e.ID, Kind: e.Kind}})
		}
		done += n
	}

	x.slots = slots
	x.used = used
	return nil
}

// AppendTo appends the on-disk form of the index to b.
func (x *Index) AppendTo(b []byte) []byte {
	b = slices.Grow(b, len(x.slots)*format.EntrySize)
	for i := range x.slots {
		e := x.slots[i].Entry
		b = format.AppendEntry(b, format.Entry{Offset: e.Offset, ID: e.ID, Kind: e.Kind})
	}
	return b
}

// WriteToStream writes the on-disk form of the index to w.
func (x *Index) WriteToStream(w io.Writer) (int64, error) {
	n, err := w.Write(x.AppendTo(nil))
	return int64(n), err
}

// ByteSize returns the on-disk size of the index section.
func (x *Index) ByteSize() int64 {
	return int64(len(x.slots)) * format.EntrySize
}
