package format

import (
	"fmt"

	"github.com/joshuapare/arraykit/internal/buf"
)

// Entry is one decoded index entry.
//
//	Offset  Size  Description
//	0x00    4     Record offset (relative to the end of the signature)
//	0x04    4     Record ID
//	0x08    4     Kind (0 = data, 1 = embedded store)
type Entry struct {
	Offset uint32
	ID     uint32
	Kind   Kind
}

// ParseEntry decodes one index entry from b.
func ParseEntry(b []byte) (Entry, error) {
	if len(b) < EntrySize {
		return Entry{}, fmt.Errorf("index entry: %w", ErrTruncated)
	}
	e := Entry{
		Offset: buf.U32LE(b[EntryOffsetOffset:]),
		ID:     buf.U32LE(b[EntryIDOffset:]),
		Kind:   Kind(buf.U32LE(b[EntryKindOffset:])),
	}
	if !e.Kind.Valid() {
		return Entry{}, fmt.Errorf("index entry kind %d: %w", uint32(e.Kind), ErrBadKind)
	}
	return e, nil
}

// AppendEntry appends the encoded form of e to b.
func AppendEntry(b []byte, e Entry) []byte {
	b = buf.AppendU32LE(b, e.Offset)
	b = buf.AppendU32LE(b, e.ID)
	return buf.AppendU32LE(b, uint32(e.Kind))
}
