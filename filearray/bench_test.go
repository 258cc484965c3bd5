package filearray

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

var benchSizes = []int{64, 4 << 10, 64 << 10}

func benchStore(b *testing.B, deferFlush bool, n, size int) *Store {
	b.Helper()
	opts := DefaultOptions()
	opts.DeferFlush = deferFlush
	s, err := CreateBase(context.Background(), filepath.Join(b.TempDir(), "bench.arr"), testSig, FailIfOpen, &opts)
	if err != nil {
		b.Fatal(err)
	}
	rec := make([]byte, size)
	for range n {
		if _, err := s.Append(rec); err != nil {
			b.Fatal(err)
		}
	}
	b.Cleanup(func() { _ = s.Close() })
	return s
}

func BenchmarkAppend(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			s := benchStore(b, true, 0, 0)
			rec := make([]byte, size)
			b.SetBytes(int64(size))
			b.ReportAllocs()
			for b.Loop() {
				if _, err := s.Append(rec); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkAppendFlushed pays for a header+index write and fsync per append.
func BenchmarkAppendFlushed(b *testing.B) {
	s := benchStore(b, false, 0, 0)
	rec := make([]byte, 64)
	b.ReportAllocs()
	for b.Loop() {
		if _, err := s.Append(rec); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkInsertRemoveFront shifts the whole data section twice per op.
func BenchmarkInsertRemoveFront(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			s := benchStore(b, true, 256, size)
			rec := make([]byte, size)
			b.SetBytes(int64(size))
			b.ReportAllocs()
			for b.Loop() {
				if _, err := s.InsertAt(0, rec); err != nil {
					b.Fatal(err)
				}
				if err := s.Remove(0); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkGetRecord(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			s := benchStore(b, true, 256, size)
			b.SetBytes(int64(size))
			b.ReportAllocs()
			i := 0
			for b.Loop() {
				if _, err := s.GetRecord(i % 256); err != nil {
					b.Fatal(err)
				}
				i++
			}
		})
	}
}

// BenchmarkSetRecordResize alternates a middle record between two sizes.
func BenchmarkSetRecordResize(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			s := benchStore(b, true, 256, size)
			small, large := make([]byte, size/2), make([]byte, size*2)
			b.ReportAllocs()
			i := 0
			for b.Loop() {
				rec := small
				if i%2 == 1 {
					rec = large
				}
				if err := s.SetRecord(128, rec); err != nil {
					b.Fatal(err)
				}
				i++
			}
		})
	}
}

func BenchmarkMoveTo(b *testing.B) {
	s := benchStore(b, true, 1024, 16)
	b.ReportAllocs()
	i := 0
	for b.Loop() {
		if err := s.MoveTo(i%1024, (i*7)%1024); err != nil {
			b.Fatal(err)
		}
		i++
	}
}
