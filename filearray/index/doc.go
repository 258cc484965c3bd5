// Package index keeps the in-memory mirror of a store's trailing index: one
// (offset, id, kind) tuple per record, in array-position order.
//
// # Overview
//
// The index owns no file handle. It is pure bookkeeping over record offsets
// and IDs, which lets the store update it first and perform the byte-level
// file surgery afterwards:
//
//   - InsertAt / Remove / Move / Swap: reorder tuples
//   - ResizeRecord: shift the offsets of every record stored after a resized one
//   - AllocateUniqueID / SetID / PositionOfID: permanent record IDs
//   - MarkEmbedded / EmbeddedOpened / EmbeddedClosed: embedded-store bookkeeping
//   - ReadFromStream / WriteToStream: the on-disk codec
//
// # ID Allocation
//
// IDs are allocated by searching (Len()+1 .. max) first and then (min .. Len()),
// so a store that only ever appends hands out 1, 2, 3, ... and existing records
// keep their IDs. InvalidID is returned only when the whole range is in use.
//
// # Contract Violations
//
// Out-of-range positions, offsets that would go negative and double-open of an
// embedded record are programming errors and panic. Only the stream codec
// returns errors, because its input comes from disk.
//
// # Thread Safety
//
// Index instances are not thread-safe; they belong to exactly one store.
package index
