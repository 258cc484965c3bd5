package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/arraykit/internal/buf"
)

// Header is the fixed part of a store that follows the signature.
//
//	Offset  Size  Description
//	------  ----  ------------------------------------------------------
//	 0x00    4    Version
//	 0x04    4    Record count; bit 31 is the open lock flag
//	 0x08    4    Index offset (relative to the end of the signature)
type Header struct {
	Version     uint32
	Count       uint32
	Locked      bool
	IndexOffset uint32
}

// ParseHeader decodes a header from b, which must start right after the signature.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("header: %w", ErrTruncated)
	}
	raw := buf.U32LE(b[CountOffset:])
	h := Header{
		Version:     buf.U32LE(b[VersionOffset:]),
		Count:       raw & CountMask,
		Locked:      raw&LockBit != 0,
		IndexOffset: buf.U32LE(b[IndexOffsetOffset:]),
	}
	if h.IndexOffset < FirstRecordOffset {
		return Header{}, fmt.Errorf("header: index offset %d: %w", h.IndexOffset, ErrBadIndexOffset)
	}
	return h, nil
}

// CountField returns the on-disk value of the record count field.
func (h Header) CountField() uint32 {
	v := h.Count & CountMask
	if h.Locked {
		v |= LockBit
	}
	return v
}

// Encode writes the header into b, which must hold at least HeaderSize bytes.
func (h Header) Encode(b []byte) {
	PutU32(b, VersionOffset, h.Version)
	PutU32(b, CountOffset, h.CountField())
	PutU32(b, IndexOffsetOffset, h.IndexOffset)
}

// Bytes returns the encoded header.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.Encode(b)
	return b
}

// IndexBytes returns the byte length of the index section for h.Count records.
func (h Header) IndexBytes() int64 {
	return int64(h.Count) * EntrySize
}

// CheckSignature reports whether b starts with sig.
func CheckSignature(b, sig []byte) error {
	if len(b) < len(sig) {
		return fmt.Errorf("signature: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:len(sig)], sig) {
		return fmt.Errorf("signature: %w", ErrSignatureMismatch)
	}
	return nil
}

// NewHeader returns the header of an empty store.
func NewHeader(version uint32) Header {
	return Header{Version: version, IndexOffset: FirstRecordOffset}
}
