package arrayfile

import (
	"context"
	_ "crypto/sha256" // registers digest.SHA256
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	"github.com/opencontainers/go-digest"
	"github.com/spaolacci/murmur3"

	"github.com/joshuapare/arraykit/filearray"
	"github.com/joshuapare/arraykit/filearray/index"
)

// Report describes a verified store tree.
type Report struct {
	Path        string `json:"path"`
	Stores      int    `json:"stores"`   // the base store plus every embedded store
	Records     int    `json:"records"`  // across all stores
	Embedded    int    `json:"embedded"` // records holding an embedded store
	Bytes       int64  `json:"bytes"`    // size of the base file
	Version     uint32 `json:"version"`
	Fingerprint string `json:"fingerprint"` // murmur3 over IDs, kinds and contents in order

	// Digest covers the raw bytes of the base file after it was closed, so it
	// changes with layout as well as content.
	Digest digest.Digest `json:"digest,omitempty"`
}

// VerifyFile opens path with cfg, checks the structure of the store and of
// every store embedded in it, and closes it again.
func VerifyFile(ctx context.Context, path string, cfg *Config, logger *slog.Logger) (*Report, error) {
	s, err := Open(ctx, path, cfg, logger)
	if err != nil {
		return nil, err
	}
	rep, err := Verify(s)
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	rep.Path = path
	if rep.Digest, err = fileDigest(path); err != nil {
		return nil, err
	}
	return rep, nil
}

func fileDigest(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return digest.Canonical.FromReader(f)
}

// Verify checks s and every store embedded in it. No embedded store of s may
// be open.
func Verify(s *filearray.Store) (*Report, error) {
	rep := &Report{Path: s.Path(), Version: s.Version()}
	h := murmur3.New128()
	if err := verifyTree(s, rep, h); err != nil {
		return nil, err
	}
	rep.Bytes = s.Size()
	hi, lo := h.Sum128()
	rep.Fingerprint = fmt.Sprintf("%016x%016x", hi, lo)
	return rep, nil
}

func verifyTree(s *filearray.Store, rep *Report, h murmur3.Hash128) error {
	if err := s.Verify(); err != nil {
		return err
	}
	rep.Stores++
	rep.Records += s.Len()

	var embedded []uint32
	var hdr [9]byte
	err := s.ForEach(func(_ int, e index.Entry, data []byte) error {
		binary.LittleEndian.PutUint32(hdr[0:], e.ID)
		hdr[4] = byte(e.Kind)
		if e.Kind == index.KindEmbedded {
			rep.Embedded++
			_, _ = h.Write(hdr[:5])
			if len(data) == 0 {
				rep.Stores++ // never opened, so empty
				return nil
			}
			// Hashed through the embedded store's own records below.
			embedded = append(embedded, e.ID)
			return nil
		}
		binary.LittleEndian.PutUint32(hdr[5:], uint32(len(data)))
		_, _ = h.Write(hdr[:])
		_, _ = h.Write(data)
		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range embedded {
		child, err := filearray.CreateEmbedded(s, id, nil)
		if err != nil {
			return fmt.Errorf("embedded record %d: %w", id, err)
		}
		err = verifyTree(child, rep, h)
		if cerr := child.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}
