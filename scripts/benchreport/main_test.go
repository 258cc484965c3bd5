package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `goos: linux
goarch: amd64
pkg: github.com/joshuapare/arraykit/filearray
BenchmarkAppend/64B-8         	 1000000	      1200 ns/op	  53.33 MB/s	      96 B/op	       2 allocs/op
BenchmarkAppendFlushed-8      	    2000	    600000 ns/op	     300 B/op	       6 allocs/op
{"Action":"output","Output":"BenchmarkMoveTo-8   \t  500000\t      2400 ns/op\n"}
PASS
`

func TestParse(t *testing.T) {
	got := parse(strings.NewReader(sample))
	require.Len(t, got, 3)
	assert.Equal(t, Result{
		Name: "BenchmarkAppend/64B", Operation: "Append", Variant: "64B",
		Iterations: 1000000, NsPerOp: 1200, MBPerSec: 53.33, BytesPerOp: 96, AllocsPerOp: 2,
	}, got[0])
	assert.Equal(t, "AppendFlushed", got[1].Operation)
	assert.Empty(t, got[1].Variant)
	assert.Equal(t, "BenchmarkMoveTo", got[2].Name)
	assert.InDelta(t, 2400, got[2].NsPerOp, 0)
}

func TestParseLineRejects(t *testing.T) {
	for _, line := range []string{
		"",
		"PASS",
		"BenchmarkX-8 notanumber 12 ns/op",
		"BenchmarkX-8 10 12 MB/s",
	} {
		_, ok := parseLine(line)
		assert.False(t, ok, line)
	}
}

func TestCompareAndReport(t *testing.T) {
	cur := parse(strings.NewReader(sample))
	base := []Result{
		{Name: "BenchmarkAppend/64B", Operation: "Append", Variant: "64B", NsPerOp: 2400},
		{Name: "BenchmarkGone", NsPerOp: 1},
	}
	rows := compare(cur, base)
	require.Len(t, rows, 3)
	assert.Equal(t, "BenchmarkAppend/64B", rows[0].Cur.Name)
	assert.InDelta(t, 2.0, rows[0].Speedup, 1e-9)
	assert.Nil(t, rows[1].Base)

	out := markdown(rows, true, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Contains(t, out, "Generated: 2026-01-02 03:04:05")
	assert.Contains(t, out, "- **Benchmarks**: 3 (1 with a baseline)")
	assert.Contains(t, out, "| Append | 64B | 1.2K | 2.4K | 2.00x ✓ | 53.3 | 96B | 2 |")
	assert.Contains(t, out, "| AppendFlushed | - | 600.0K | *new* | - | - | 300B | 6 |")

	plain := markdown(rows, false, time.Now())
	assert.NotContains(t, plain, "baseline")
	assert.Contains(t, plain, "| MoveTo | - | 2.4K | - | 0B | 0 |")
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1.50M", formatNumber(1.5e6))
	assert.Equal(t, "2.0KB", formatBytes(2048))
	assert.Equal(t, "3.00MB", formatBytes(3<<20))
}
