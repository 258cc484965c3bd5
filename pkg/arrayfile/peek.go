package arrayfile

import (
	"fmt"

	"github.com/joshuapare/arraykit/internal/buf"
	"github.com/joshuapare/arraykit/internal/format"
	"github.com/joshuapare/arraykit/internal/mmfile"
	"github.com/joshuapare/arraykit/pkg/types"
)

// Snapshot is the layout of a store as read straight from disk. Taking one
// does not open the store, so the lock bit is left alone and a file in use
// by another process can be inspected.
type Snapshot struct {
	Version     uint32         `json:"version"`
	Locked      bool           `json:"locked"`
	IndexOffset uint32         `json:"index_offset"`
	Size        int64          `json:"size"`
	Records     []SnapshotItem `json:"records"`
}

// SnapshotItem describes one record of a Snapshot.
type SnapshotItem struct {
	Offset   uint32    `json:"offset"`
	ID       uint32    `json:"id"`
	Kind     string    `json:"kind"`
	Len      uint32    `json:"len"`
	Embedded *Snapshot `json:"embedded,omitempty"` // nil for data and never-written embedded records
}

// Peek maps the file at path read-only and decodes its header and index,
// descending into embedded records.
func Peek(path string, signature []byte) (*Snapshot, error) {
	r, err := mmfile.Map(path)
	if err != nil {
		return nil, types.Classify(err)
	}
	defer r.Close()

	b := r.Bytes()
	if err := format.CheckSignature(b, signature); err != nil {
		return nil, types.New(types.KindWrongSignature, path, err)
	}
	snap, err := parseSnapshot(b[len(signature):])
	if err != nil {
		return nil, types.New(types.KindUnexpected, path, err)
	}
	snap.Size = r.Len()
	return snap, nil
}

// parseSnapshot decodes the store occupying all of b, which starts at the
// header. Offsets in b are relative to its start.
func parseSnapshot(b []byte) (*Snapshot, error) {
	h, err := format.ParseHeader(b)
	if err != nil {
		return nil, err
	}
	if _, err := buf.CheckListBounds(int64(len(b)), int64(h.IndexOffset), int64(h.Count), format.EntrySize); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	snap := &Snapshot{
		Version:     h.Version,
		Locked:      h.Locked,
		IndexOffset: h.IndexOffset,
		Size:        int64(len(b)),
		Records:     make([]SnapshotItem, 0, h.Count),
	}
	for i := range int(h.Count) {
		e, err := format.ParseEntry(b[int(h.IndexOffset)+i*format.EntrySize:])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		end, err := buf.CheckListBounds(int64(h.IndexOffset), int64(e.Offset), 1, format.LengthPrefixSize)
		if err != nil {
			return nil, fmt.Errorf("record %d prefix: %w", i, err)
		}
		n := format.ReadU32(b, int(e.Offset))
		if _, err := buf.CheckListBounds(int64(h.IndexOffset), end, int64(n), 1); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		item := SnapshotItem{Offset: e.Offset, ID: e.ID, Kind: e.Kind.String(), Len: n}
		if e.Kind == format.KindEmbedded && n > 0 {
			if item.Embedded, err = parseSnapshot(b[end : end+int64(n)]); err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
		}
		snap.Records = append(snap.Records, item)
	}
	return snap, nil
}
