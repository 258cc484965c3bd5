package filearray

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arraykit/internal/format"
)

var testSig = []byte("sig")

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "data.arr")
}

func openStore(t *testing.T, path string, opts *Options) *Store {
	t.Helper()
	s, err := CreateBase(context.Background(), path, testSig, FailIfOpen, opts)
	require.NoError(t, err)
	return s
}

// newStoreWith creates a store at a fresh path holding recs in order.
func newStoreWith(t *testing.T, opts *Options, recs ...string) (*Store, string) {
	t.Helper()
	path := tempPath(t)
	s := openStore(t, path, opts)
	for _, r := range recs {
		_, err := s.Append([]byte(r))
		require.NoError(t, err)
	}
	return s, path
}

func records(t *testing.T, s *Store) []string {
	t.Helper()
	out := make([]string, 0, s.Len())
	for pos := range s.Len() {
		b, err := s.GetRecord(pos)
		require.NoError(t, err)
		out = append(out, string(b))
	}
	return out
}

// rawHeader reads the header of the base store at path straight from disk.
func rawHeader(t *testing.T, path string) format.Header {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b), len(testSig)+format.HeaderSize)
	h, err := format.ParseHeader(b[len(testSig):])
	require.NoError(t, err)
	return h
}

// setLockBit rewrites the lock bit of the closed file at path, simulating
// another instance holding it open or one that crashed.
func setLockBit(t *testing.T, path string, locked bool) {
	t.Helper()
	require.NoError(t, writeLockBit(path, locked))
}

func writeLockBit(path string, locked bool) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	var b [4]byte
	if _, err := f.ReadAt(b[:], int64(len(testSig))+format.CountOffset); err != nil {
		return err
	}
	v := format.ReadU32(b[:], 0) &^ format.LockBit
	if locked {
		v |= format.LockBit
	}
	format.PutU32(b[:], 0, v)
	_, err = f.WriteAt(b[:], int64(len(testSig))+format.CountOffset)
	return err
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	fi, err := os.Stat(path)
	require.NoError(t, err)
	return fi.Size()
}
