package arrayfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/arraykit/filearray"
)

// ManifestFormat is the version of the export manifest layout.
const ManifestFormat = 1

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// ErrNotEmpty is returned by Import when the target store already has records.
var ErrNotEmpty = errors.New("arrayfile: import target is not empty")

// Manifest is the portable form of a store and everything embedded in it.
// Record data that is not valid UTF-8 is written as a !!binary scalar.
type Manifest struct {
	Format    int      `yaml:"format"`
	Signature string   `yaml:"signature,omitempty"`
	Version   uint32   `yaml:"version"`
	Records   []Record `yaml:"records"`
}

// Record is one exported record. Exactly one of Data or Embedded is meaningful.
type Record struct {
	ID       uint32    `yaml:"id"`
	Data     string    `yaml:"data,omitempty"`
	Embedded *Manifest `yaml:"embedded,omitempty"`
}

// ExportOptions controls Export.
type ExportOptions struct {
	// Compress wraps the manifest in a zstd stream.
	Compress bool
}

// BuildManifest walks s and every store embedded in it. Embedded records must
// not be open.
func BuildManifest(s *filearray.Store) (*Manifest, error) {
	m := &Manifest{
		Format:    ManifestFormat,
		Signature: string(s.Signature()),
		Version:   s.Version(),
		Records:   make([]Record, 0, s.Len()),
	}
	for pos := range s.Len() {
		rec := Record{ID: s.ID(pos)}
		if s.IsEmbedded(pos) {
			sub, err := buildEmbedded(s, pos)
			if err != nil {
				return nil, err
			}
			rec.Embedded = sub
		} else {
			b, err := s.GetRecord(pos)
			if err != nil {
				return nil, err
			}
			rec.Data = string(b)
		}
		m.Records = append(m.Records, rec)
	}
	return m, nil
}

func buildEmbedded(parent *filearray.Store, pos int) (*Manifest, error) {
	n, err := parent.RecordLen(pos)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Never opened; opening it here would write a header into the source.
		return &Manifest{Format: ManifestFormat, Records: []Record{}}, nil
	}
	id := parent.ID(pos)
	child, err := filearray.CreateEmbedded(parent, id, nil)
	if err != nil {
		return nil, fmt.Errorf("embedded record %d: %w", id, err)
	}
	m, err := BuildManifest(child)
	if cerr := child.Close(); err == nil {
		err = cerr
	}
	if m != nil {
		m.Signature = ""
	}
	return m, err
}

// Export writes the manifest of s to w.
func Export(s *filearray.Store, w io.Writer, opts ExportOptions) error {
	m, err := BuildManifest(s)
	if err != nil {
		return err
	}

	out := w
	var enc *zstd.Encoder
	if opts.Compress {
		enc, err = zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		out = enc
	}

	ye := yaml.NewEncoder(out)
	ye.SetIndent(2)
	if err := ye.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := ye.Close(); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
	}
	return nil
}

// ReadManifest decodes a manifest written by Export, compressed or not.
func ReadManifest(r io.Reader) (*Manifest, error) {
	br := bufio.NewReader(r)
	var in io.Reader = br
	if magic, _ := br.Peek(len(zstdMagic)); bytes.Equal(magic, zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		in = dec
	}

	var m Manifest
	if err := yaml.NewDecoder(in).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Format != ManifestFormat {
		return nil, fmt.Errorf("unsupported manifest format %d", m.Format)
	}
	return &m, nil
}

// Import creates the store at path from a manifest read from r, keeping every
// record ID. The file must be missing or hold an empty store with the
// manifest's signature.
func Import(ctx context.Context, r io.Reader, path string, opts *filearray.Options) (*filearray.Store, error) {
	m, err := ReadManifest(r)
	if err != nil {
		return nil, err
	}
	s, err := filearray.CreateBase(ctx, path, []byte(m.Signature), filearray.FailIfOpen, opts)
	if err != nil {
		return nil, err
	}
	if s.Len() != 0 {
		_ = s.Close()
		return nil, ErrNotEmpty
	}
	if err := s.Batch(func() error { return fill(s, m) }); err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Logger().Info("imported manifest", slog.Int("records", s.Len()))
	return s, nil
}

// fill appends the records of m to the empty store s.
func fill(s *filearray.Store, m *Manifest) error {
	if err := s.SetVersion(m.Version); err != nil {
		return err
	}
	for _, rec := range m.Records {
		if rec.ID == 0 {
			return errors.New("manifest record without ID")
		}
		pos := s.Len()
		if rec.Embedded != nil {
			if _, err := s.InsertEmbeddedAt(pos); err != nil {
				return err
			}
		} else if _, err := s.Append([]byte(rec.Data)); err != nil {
			return err
		}
		if err := s.SetID(pos, rec.ID); err != nil {
			return fmt.Errorf("record %d: %w", rec.ID, err)
		}
		if rec.Embedded == nil || (len(rec.Embedded.Records) == 0 && rec.Embedded.Version == 0) {
			continue
		}

		child, err := filearray.CreateEmbedded(s, rec.ID, nil)
		if err != nil {
			return err
		}
		err = child.Batch(func() error { return fill(child, rec.Embedded) })
		if cerr := child.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("embedded record %d: %w", rec.ID, err)
		}
	}
	return nil
}
