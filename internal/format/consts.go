// Package format houses the low-level codec for the array file layout. It
// knows the byte positions of the header fields, the record length prefix and
// the fixed-width index entries, and nothing about how a store mutates them.
//
// Every integer is an unsigned 32-bit little-endian value, regardless of host
// byte order:
//
//	[signature bytes]                 fixed at creation, may be empty
//	0x00  version                     opaque to the engine
//	0x04  record count | lock bit     bit 31 set while the file is open
//	0x08  index offset                where the index section begins
//	0x0C  [length][bytes] ...         records, tightly packed
//	      [offset][id][kind] ...      index entries, one per record
//
// All offsets are relative to the end of the signature.
package format

const (
	// HeaderSize is the size of the store header following the signature.
	HeaderSize = 12

	// Header field offsets, relative to the end of the signature.
	VersionOffset     = 0x00
	CountOffset       = 0x04
	IndexOffsetOffset = 0x08

	// LengthPrefixSize is the size of the u32 length stored before every record.
	LengthPrefixSize = 4

	// EntrySize is the on-disk size of one index entry (offset, id, kind).
	EntrySize = 12

	// Index entry field offsets.
	EntryOffsetOffset = 0x00
	EntryIDOffset     = 0x04
	EntryKindOffset   = 0x08

	// FirstRecordOffset is the offset of the first record in a store.
	FirstRecordOffset = HeaderSize

	// LockBit marks the record count field of a store that is currently open.
	LockBit uint32 = 1 << 31

	// CountMask extracts the record count from the on-disk count field.
	CountMask = LockBit - 1

	// MaxRecords is the largest record count the count field can hold.
	MaxRecords = int(CountMask)

	// MaxRecordSize is the largest payload a length prefix can describe.
	MaxRecordSize = int64(^uint32(0))
)

// Kind tags what a record holds.
type Kind uint32

const (
	// KindData is a plain byte record.
	KindData Kind = 0
	// KindEmbedded is a record holding a complete embedded store.
	KindEmbedded Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindEmbedded:
		return "embedded"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindData || k == KindEmbedded
}
