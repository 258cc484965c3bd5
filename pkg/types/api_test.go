package types

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyNilIsNoError(t *testing.T) {
	e := Classify(nil)
	require.NotNil(t, e)
	require.Equal(t, KindNone, e.Kind)
	require.True(t, e.OK())
	require.Equal(t, "no error", e.Error())
	require.Equal(t, KindNone, KindOf(nil))
}

func TestClassifyPassthrough(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrKind
		code int
	}{
		{"not exist", &fs.PathError{Op: "open", Path: "/x", Err: syscall.ENOENT}, KindNotFound, int(syscall.ENOENT)},
		{"permission", &fs.PathError{Op: "open", Path: "/x", Err: syscall.EACCES}, KindPermission, int(syscall.EACCES)},
		{"disk full", fmt.Errorf("write: %w", syscall.ENOSPC), KindDiskFull, int(syscall.ENOSPC)},
		{"read-only fs", &fs.PathError{Op: "open", Path: "/x", Err: syscall.EROFS}, KindFileNotWritable, int(syscall.EROFS)},
		{"other", errors.New("boom"), KindUnknown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Classify(tt.err)
			assert.Equal(t, tt.want, e.Kind)
			assert.Equal(t, tt.code, e.Code)
			assert.ErrorIs(t, e, tt.err)
			assert.False(t, e.OK())
		})
	}
}

func TestClassifyKeepsTypedErrors(t *testing.T) {
	orig := New(KindWrongSignature, "a.bin", nil)
	wrapped := fmt.Errorf("open store: %w", orig)
	require.Same(t, orig, Classify(wrapped))
	require.True(t, errors.Is(wrapped, ErrWrongSignature))
	require.False(t, errors.Is(wrapped, ErrFileAlreadyOpen))
}

func TestErrorMessage(t *testing.T) {
	e := New(KindFileAlreadyOpen, "data.fa", nil)
	require.Equal(t, "data.fa: file is already open", e.Error())

	e = &Error{Kind: KindUnexpected, Msg: "index runs past end of file", Err: os.ErrClosed}
	require.Equal(t, "index runs past end of file: "+os.ErrClosed.Error(), e.Error())

	var nilErr *Error
	require.Equal(t, "<nil>", nilErr.Error())
	require.True(t, nilErr.OK())
}

func TestSetMessages(t *testing.T) {
	t.Cleanup(func() { SetMessages(nil) })

	SetMessages(map[ErrKind]string{KindFileAlreadyOpen: "Datei ist bereits geöffnet"})
	require.Equal(t, "Datei ist bereits geöffnet", Message(KindFileAlreadyOpen))
	require.Equal(t, "file has the wrong signature", Message(KindWrongSignature))

	SetMessages(nil)
	require.Equal(t, "file is already open", Message(KindFileAlreadyOpen))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "not-embedded-file", KindNotEmbeddedFile.String())
	require.Equal(t, "ErrKind(99)", ErrKind(99).String())
	require.Equal(t, "ErrKind(99)", Message(ErrKind(99)))
}
