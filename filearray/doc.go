// Package filearray stores an ordered, mutable list of variable-length byte
// records in a single file.
//
// # Overview
//
// Every record has a position (0-based, changes as records are inserted,
// removed or moved) and a permanent ID (stable for the record's lifetime).
// A record can itself hold a complete store, called an embedded store, which
// is opened against the record and does all of its I/O through the enclosing
// store.
//
// # File Structure
//
//	[signature] [version][count|lock][index offset] [records...] [index...]
//
// Records are length-prefixed and tightly packed. The index lists one
// (offset, id, kind) entry per record in position order. Resizing or removing
// a record shifts the bytes that follow it; moving records only reorders the
// index.
//
// # Opening a Store
//
//	s, err := filearray.CreateBase(ctx, "/path/to/data.arr", []byte("ARR1"), filearray.FailIfOpen, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	id, err := s.Append([]byte("hello"))
//
// While a store is open, bit 31 of the on-disk record count is set. Another
// process opening the same file sees it and applies its OpenPolicy. The flag
// is advisory: checking and setting it is not atomic across processes.
//
// # Embedding
//
//	id, _ := s.InsertEmbeddedAt(s.Len())
//	child, err := filearray.CreateEmbedded(s, id, nil)
//	...
//	child.Close() // before s.Close()
//
// # Thread Safety
//
// A Store is NOT safe for concurrent use. Embedded stores share the
// enclosing store's file and must be used from the same goroutine.
//
// # Errors
//
// Factories return *types.Error values classified by types.ErrKind.
// Programming errors (out-of-range positions, unknown IDs, removing a record
// whose embedded store is open, closing a store with open children) panic.
package filearray
