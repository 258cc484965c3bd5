package index

import (
	"fmt"
	"math"
	"slices"

	"github.com/joshuapare/arraykit/internal/format"
)

// Kind tags what a record holds.
type Kind = format.Kind

const (
	KindData     = format.KindData
	KindEmbedded = format.KindEmbedded
)

const (
	// InvalidID is never assigned to a record.
	InvalidID uint32 = 0
	// MinID and MaxID bound the default allocation range.
	MinID uint32 = 1
	MaxID uint32 = math.MaxUint32
)

// Entry is the public view of one index tuple.
type Entry struct {
	Offset uint32 // record offset, relative to the end of the signature
	ID     uint32
	Kind   Kind
}

type slot struct {
	Entry
	open bool   // a live embedded store exists for this record
	ref  uint64 // serial of that store, for diagnostics
}

// Index is the ordered position → (offset, id, kind) table of one store.
//
// NOT thread-safe.
type Index struct {
	slots []slot
	used  map[uint32]struct{}
	minID uint32
	maxID uint32
}

// New returns an empty index allocating IDs from [MinID, MaxID].
func New() *Index {
	return NewWithRange(MinID, MaxID)
}

// NewWithRange returns an empty index allocating IDs from [lo, hi].
// A narrow range makes ID exhaustion reachable in tests.
func NewWithRange(lo, hi uint32) *Index {
	if lo == InvalidID || lo > hi {
		panic(fmt.Sprintf("index: bad ID range [%d, %d]", lo, hi))
	}
	return &Index{
		used:  make(map[uint32]struct{}),
		minID: lo,
		maxID: hi,
	}
}

// Len returns the number of records.
func (x *Index) Len() int { return len(x.slots) }

func (x *Index) check(pos int) {
	if pos < 0 || pos >= len(x.slots) {
		panic(fmt.Sprintf("index: position %d out of range [0, %d)", pos, len(x.slots)))
	}
}

// InsertAt inserts a data tuple at pos and returns the position it landed at.
// Positions past the end clamp to append.
func (x *Index) InsertAt(pos int, offset, id uint32) int {
	if pos < 0 {
		panic(fmt.Sprintf("index: negative insert position %d", pos))
	}
	if id == InvalidID {
		panic("index: insert with invalid ID")
	}
	if _, dup := x.used[id]; dup {
		panic(fmt.Sprintf("index: ID %d already in use", id))
	}
	if pos > len(x.slots) {
		pos = len(x.slots)
	}
	x.slots = slices.Insert(x.slots, pos, slot{Entry: Entry{Offset: offset, ID: id, Kind: KindData}})
	x.used[id] = struct{}{}
	return pos
}

// Remove deletes the tuple at pos and moves every record stored after it
// back by recordByteSize.
func (x *Index) Remove(pos int, recordByteSize uint32) {
	x.check(pos)
	removed := x.slots[pos]
	if removed.open {
		panic(fmt.Sprintf("index: removing record %d while its embedded store #%d is open", removed.ID, removed.ref))
	}
	for i := range x.slots {
		if i == pos || x.slots[i].Offset <= removed.Offset {
			continue
		}
		if x.slots[i].Offset < recordByteSize {
			panic(fmt.Sprintf("index: offset %d of record %d would go negative", x.slots[i].Offset, x.slots[i].ID))
		}
		x.slots[i].Offset -= recordByteSize
	}
	x.slots = slices.Delete(x.slots, pos, pos+1)
	delete(x.used, removed.ID)
}

// ResizeRecord shifts the offset of every record stored after the one at pos
// by delta bytes.
func (x *Index) ResizeRecord(pos int, delta int64) {
	x.check(pos)
	if delta == 0 {
		return
	}
	at := x.slots[pos].Offset
	for i := range x.slots {
		if x.slots[i].Offset <= at || i == pos {
			continue
		}
		n := int64(x.slots[i].Offset) + delta
		if n < 0 || n > math.MaxUint32 {
			panic(fmt.Sprintf("index: offset of record %d out of range after resize by %d", x.slots[i].ID, delta))
		}
		x.slots[i].Offset = uint32(n)
	}
}

// OffsetOf returns the record offset at pos.
func (x *Index) OffsetOf(pos int) uint32 {
	x.check(pos)
	return x.slots[pos].Offset
}

// IDOf returns the record ID at pos.
func (x *Index) IDOf(pos int) uint32 {
	x.check(pos)
	return x.slots[pos].ID
}

// KindOf returns the record kind at pos.
func (x *Index) KindOf(pos int) Kind {
	x.check(pos)
	return x.slots[pos].Kind
}

// Entry returns the tuple at pos.
func (x *Index) Entry(pos int) Entry {
	x.check(pos)
	return x.slots[pos].Entry
}

// Entries returns a copy of all tuples in position order.
func (x *Index) Entries() []Entry {
	out := make([]Entry, len(x.slots))
	for i, s := range x.slots {
		out[i] = s.Entry
	}
	return out
}

// SetID changes the ID of the record at pos. It reports false, and changes
// nothing, when id is invalid or already used by another record.
func (x *Index) SetID(pos int, id uint32) bool {
	x.check(pos)
	old := x.slots[pos].ID
	if id == old {
		return true
	}
	if id == InvalidID {
		return false
	}
	if _, dup := x.used[id]; dup {
		return false
	}
	delete(x.used, old)
	x.used[id] = struct{}{}
	x.slots[pos].ID = id
	return true
}

// PositionOfID returns the position of the record with the given ID.
func (x *Index) PositionOfID(id uint32) (int, bool) {
	if _, ok := x.used[id]; !ok {
		return 0, false
	}
	for i := range x.slots {
		if x.slots[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// HasID reports whether a record currently uses id.
func (x *Index) HasID(id uint32) bool {
	_, ok := x.used[id]
	return ok
}

// AllocateUniqueID returns an ID no record uses, or InvalidID when the whole
// range is taken. The ID is not reserved until InsertAt or SetID uses it.
func (x *Index) AllocateUniqueID() uint32 {
	n := uint64(len(x.slots))
	lo, hi := uint64(x.minID), uint64(x.maxID)
	if id, ok := x.firstFree(max(n+1, lo), hi); ok {
		return id
	}
	if id, ok := x.firstFree(lo, min(n, hi)); ok {
		return id
	}
	return InvalidID
}

func (x *Index) firstFree(from, to uint64) (uint32, bool) {
	for v := from; v <= to; v++ {
		if _, used := x.used[uint32(v)]; !used {
			return uint32(v), true
		}
	}
	return InvalidID, false
}

// Move relocates the tuple at from so that it ends up at position to.
func (x *Index) Move(from, to int) {
	x.check(from)
	x.check(to)
	if from == to {
		return
	}
	s := x.slots[from]
	x.slots = slices.Delete(x.slots, from, from+1)
	x.slots = slices.Insert(x.slots, to, s)
}

// Swap exchanges the tuples at a and b.
func (x *Index) Swap(a, b int) {
	x.check(a)
	x.check(b)
	x.slots[a], x.slots[b] = x.slots[b], x.slots[a]
}

// -----------------------------------------------------------------------------
// Embedded-store bookkeeping
// -----------------------------------------------------------------------------

// MarkEmbedded flags the record at pos as holding an embedded store.
// There is no way back: such a record must be removed, not reused.
func (x *Index) MarkEmbedded(pos int) {
	x.check(pos)
	x.slots[pos].Kind = KindEmbedded
}

// IsEmbedded reports whether the record at pos holds an embedded store.
func (x *Index) IsEmbedded(pos int) bool {
	x.check(pos)
	return x.slots[pos].Kind == KindEmbedded
}

// EmbeddedOpened records that the live embedded store ref now uses the record at pos.
func (x *Index) EmbeddedOpened(pos int, ref uint64) {
	x.check(pos)
	s := &x.slots[pos]
	if s.Kind != KindEmbedded {
		panic(fmt.Sprintf("index: record %d is not an embedded store", s.ID))
	}
	if s.open {
		panic(fmt.Sprintf("index: record %d already has embedded store #%d open", s.ID, s.ref))
	}
	s.open = true
	s.ref = ref
}

// EmbeddedClosed records that the embedded store at pos has been closed.
func (x *Index) EmbeddedClosed(pos int) {
	x.check(pos)
	s := &x.slots[pos]
	if !s.open {
		panic(fmt.Sprintf("index: closing record %d which has no open embedded store", s.ID))
	}
	s.open = false
	s.ref = 0
}

// IsEmbeddedClosed reports whether no live embedded store uses the record at pos.
func (x *Index) IsEmbeddedClosed(pos int) bool {
	x.check(pos)
	return !x.slots[pos].open
}

// AllEmbeddedClosed reports whether no record has a live embedded store.
func (x *Index) AllEmbeddedClosed() bool {
	for i := range x.slots {
		if x.slots[i].open {
			return false
		}
	}
	return true
}

// OpenEmbedded returns the serials of the live embedded stores, in position order.
func (x *Index) OpenEmbedded() []uint64 {
	var refs []uint64
	for i := range x.slots {
		if x.slots[i].open {
			refs = append(refs, x.slots[i].ref)
		}
	}
	return refs
}
