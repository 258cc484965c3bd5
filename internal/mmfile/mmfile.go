// Package mmfile maps array files read-only so they can be inspected without
// opening them as a store, which would set the lock bit.
package mmfile

// Region is a read-only view of a whole file.
type Region struct {
	data  []byte
	unmap func([]byte) error
}

// Bytes returns the mapped contents. The slice is invalid after Close.
func (r *Region) Bytes() []byte { return r.data }

// Len returns the size of the file when it was mapped.
func (r *Region) Len() int64 { return int64(len(r.data)) }

// Close releases the mapping. Calling it more than once is a no-op.
func (r *Region) Close() error {
	if r.data == nil || r.unmap == nil {
		r.data = nil
		return nil
	}
	data := r.data
	r.data = nil
	return r.unmap(data)
}
