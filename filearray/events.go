package filearray

import "fmt"

// Op identifies the kind of change an Event reports.
type Op int

const (
	// RecordInserted: a record now exists at Pos.
	RecordInserted Op = iota
	// RecordRemoved: the record at Pos is gone.
	RecordRemoved
	// RecordMoved: the record at Pos now sits at To.
	RecordMoved
	// RecordsSwapped: the records at Pos and To traded places.
	RecordsSwapped
	// RecordChanged: the record at Pos has new contents or a new ID.
	RecordChanged
)

func (op Op) String() string {
	switch op {
	case RecordInserted:
		return "inserted"
	case RecordRemoved:
		return "removed"
	case RecordMoved:
		return "moved"
	case RecordsSwapped:
		return "swapped"
	case RecordChanged:
		return "changed"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// Event is delivered to a Sink once per mutating call, after the mutation and
// its flush succeeded.
type Event struct {
	Op  Op
	Pos int
	To  int // RecordMoved and RecordsSwapped only
}

func (e Event) String() string {
	switch e.Op {
	case RecordMoved, RecordsSwapped:
		return fmt.Sprintf("%s(%d,%d)", e.Op, e.Pos, e.To)
	default:
		return fmt.Sprintf("%s(%d)", e.Op, e.Pos)
	}
}

// Translate maps a position a subscriber was holding before the event to the
// position of the same record after it. ok is false when the record was removed.
func (e Event) Translate(p int) (pos int, ok bool) {
	switch e.Op {
	case RecordInserted:
		if p >= e.Pos {
			return p + 1, true
		}
	case RecordRemoved:
		if p == e.Pos {
			return -1, false
		}
		if p > e.Pos {
			return p - 1, true
		}
	case RecordMoved:
		from, to := e.Pos, e.To
		switch {
		case p == from:
			return to, true
		case from < to && p > from && p <= to:
			return p - 1, true
		case to < from && p >= to && p < from:
			return p + 1, true
		}
	case RecordsSwapped:
		switch p {
		case e.Pos:
			return e.To, true
		case e.To:
			return e.Pos, true
		}
	}
	return p, true
}

// Sink receives change notifications from a store.
type Sink interface {
	StoreChanged(s *Store, e Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(s *Store, e Event)

func (f SinkFunc) StoreChanged(s *Store, e Event) { f(s, e) }
