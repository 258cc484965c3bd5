package arrayfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arraykit/filearray"
	"github.com/joshuapare/arraykit/pkg/types"
)

func TestVerifyFileReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.arr")
	buildTree(t, path)
	cfg := &Config{Signature: "EXP"}

	rep, err := VerifyFile(context.Background(), path, cfg, nil)
	require.NoError(t, err)
	require.Equal(t, path, rep.Path)
	require.Equal(t, 3, rep.Stores)
	require.Equal(t, 4+2+1, rep.Records)
	require.Equal(t, 2, rep.Embedded)
	require.Equal(t, uint32(5), rep.Version)
	require.Len(t, rep.Fingerprint, 32)
	require.NoError(t, rep.Digest.Validate())
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, digest.FromBytes(raw), rep.Digest)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, fi.Size(), rep.Bytes)

	again, err := VerifyFile(context.Background(), path, cfg, nil)
	require.NoError(t, err)
	require.Equal(t, rep.Fingerprint, again.Fingerprint, "verification leaves the file unchanged")
	require.Equal(t, rep.Digest, again.Digest)

	s, err := Open(context.Background(), path, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetRecord(0, []byte("changed")))
	require.NoError(t, s.Close())

	changed, err := VerifyFile(context.Background(), path, cfg, nil)
	require.NoError(t, err)
	require.NotEqual(t, rep.Fingerprint, changed.Fingerprint)
	require.NotEqual(t, rep.Digest, changed.Digest)
}

func TestVerifyFileDetectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.arr")
	buildTree(t, path)

	// Overwrite the first record's length prefix so the records no longer
	// tile the data section.
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{1, 0, 0, 0}, int64(len("EXP")+12))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = VerifyFile(context.Background(), path, &Config{Signature: "EXP"}, nil)
	require.True(t, errors.Is(err, filearray.ErrCorrupt))
}

func TestVerifyFileOpenErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.arr")
	buildTree(t, path)

	_, err := VerifyFile(context.Background(), path, &Config{Signature: "NOPE"}, nil)
	require.ErrorIs(t, err, types.ErrWrongSignature)
}
