package format

import "encoding/binary"

// PutU32 writes a uint32 value to the buffer at the specified offset in little-endian format.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified offset in little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// LengthPrefix encodes a record length prefix.
func LengthPrefix(n uint32) [LengthPrefixSize]byte {
	var p [LengthPrefixSize]byte
	binary.LittleEndian.PutUint32(p[:], n)
	return p
}
