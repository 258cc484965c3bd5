package fsync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileAllModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("payload"))
	require.NoError(t, err)

	for _, mode := range []FlushMode{FlushAuto, FlushDataOnly, FlushFull} {
		t.Run(mode.String(), func(t *testing.T) {
			require.NoError(t, File(f, mode))
		})
	}
}

func TestFileNil(t *testing.T) {
	require.ErrorIs(t, File(nil, FlushAuto), os.ErrInvalid)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want FlushMode
	}{
		{"", FlushAuto},
		{"auto", FlushAuto},
		{"data-only", FlushDataOnly},
		{"data", FlushDataOnly},
		{"full", FlushFull},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseMode("sometimes")
	require.Error(t, err)
	require.Equal(t, "FlushMode(9)", FlushMode(9).String())
}
