package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertGetList(t *testing.T) {
	path := tempFile(t, "data.arr")

	assert.Equal(t, "1\n", mustRun(t, "insert", path, "end", "hello"))
	assert.Equal(t, "2\n", mustRun(t, "insert", path, "end", "world"))
	assert.Equal(t, "3\n", mustRun(t, "insert", path, "0", "first"))

	assert.Equal(t, "first", mustRun(t, "get", path, "0"))
	assert.Equal(t, "world", mustRun(t, "get", path, "#2"))

	out := mustRun(t, "list", path)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "#3")
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[2], "world")

	out = mustRun(t, "list", path, "--json")
	var entries []listEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, listEntry{Pos: 1, ID: 1, Kind: "data", Len: 5, Preview: "hello"}, entries[1])

	assert.Contains(t, mustRun(t, "get", path, "1", "--hex"), "68 65 6c 6c 6f")
}

func TestGetErrors(t *testing.T) {
	path := tempFile(t, "data.arr")
	mustRun(t, "insert", path, "end", "x")

	for _, ref := range []string{"1", "#9", "#0", "-1", "abc"} {
		_, err := run(t, "get", path, ref)
		assert.Error(t, err, ref)
	}
}

func TestGetToFile(t *testing.T) {
	path := tempFile(t, "data.arr")
	mustRun(t, "insert", path, "end", "payload")

	out := filepath.Join(t.TempDir(), "rec.bin")
	assert.Empty(t, mustRun(t, "get", path, "0", "-o", out))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestGetCopy(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("no clipboard utility available")
	}
	path := tempFile(t, "data.arr")
	mustRun(t, "insert", path, "end", "to the clipboard")

	out, err := run(t, "get", path, "0", "--copy")
	if err != nil {
		t.Skipf("clipboard not usable here: %v", err)
	}
	assert.Empty(t, out)
	got, err := clipboard.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "to the clipboard", got)
}

func TestInfo(t *testing.T) {
	path := tempFile(t, "data.arr")
	mustRun(t, "insert", path, "end", "abc")
	mustRun(t, "insert", path, "end", "--embedded")

	out := mustRun(t, "info", path, "--json")
	var res infoResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Records)
	assert.Equal(t, 1, res.EmbeddedRecs)
	assert.False(t, res.Embedded)
	assert.Equal(t, int64(24), res.IndexBytes)

	out = mustRun(t, "info", path)
	assert.Contains(t, out, "Records: 2 (1 embedded)")
}

func TestEditCommands(t *testing.T) {
	path := tempFile(t, "data.arr")
	for _, s := range []string{"a", "b", "c", "d"} {
		mustRun(t, "insert", path, "end", s)
	}

	mustRun(t, "put", path, "#2", "BEE")
	assert.Equal(t, "BEE", mustRun(t, "get", path, "1"))

	mustRun(t, "swap", path, "0", "3")
	assert.Equal(t, "d", mustRun(t, "get", path, "0"))
	assert.Equal(t, "a", mustRun(t, "get", path, "3"))

	mustRun(t, "mv", path, "#4", "2")
	assert.Equal(t, "BEE", mustRun(t, "get", path, "0"))
	assert.Equal(t, "d", mustRun(t, "get", path, "2"))

	// Positions are resolved before anything is removed.
	mustRun(t, "rm", path, "0", "1", "#2")
	out := mustRun(t, "list", path, "--json")
	var entries []listEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "d", entries[0].Preview)
	assert.Equal(t, "a", entries[1].Preview)
}

func TestInsertFromFile(t *testing.T) {
	path := tempFile(t, "data.arr")
	src := filepath.Join(t.TempDir(), "blob.bin")
	blob := []byte{0, 1, 2, 0xff}
	require.NoError(t, os.WriteFile(src, blob, 0o644))

	mustRun(t, "insert", path, "end", "--file", src)
	assert.Equal(t, string(blob), mustRun(t, "get", path, "0"))
}

func TestEncoding(t *testing.T) {
	path := tempFile(t, "data.arr")
	mustRun(t, "insert", path, "end", "café", "--encoding", "windows-1252")

	assert.Equal(t, "caf\xe9", mustRun(t, "get", path, "0"))
	assert.Equal(t, "café", mustRun(t, "get", path, "0", "--encoding", "cp1252"))

	_, err := run(t, "get", path, "0", "--encoding", "ebcdic")
	assert.ErrorContains(t, err, "unknown encoding")
}

func TestEmbeddedPath(t *testing.T) {
	path := tempFile(t, "data.arr")
	mustRun(t, "insert", path, "end", "outer")
	assert.Equal(t, "2\n", mustRun(t, "insert", path, "end", "--embedded"))
	assert.Equal(t, "1\n", mustRun(t, "insert", path, "end", "inner", "--in", "2"))
	assert.Equal(t, "2\n", mustRun(t, "insert", path, "end", "--embedded", "--in", "#2"))
	mustRun(t, "insert", path, "end", "deep", "--in", "2/2")

	assert.Equal(t, "inner", mustRun(t, "get", path, "0", "--in", "2"))
	assert.Equal(t, "deep", mustRun(t, "get", path, "0", "--in", "2/2"))
	assert.Contains(t, mustRun(t, "info", path, "--in", "2"), "Embedded store: 2")

	_, err := run(t, "put", path, "#2", "x")
	assert.ErrorContains(t, err, "embedded store")
	_, err = run(t, "list", path, "--in", "1")
	assert.Error(t, err)
	_, err = run(t, "list", path, "--in", "2/x")
	assert.Error(t, err)

	out := mustRun(t, "verify", path, "--json")
	var res []struct {
		Stores  int    `json:"stores"`
		Records int    `json:"records"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 1)
	assert.Empty(t, res[0].Error)
	assert.Equal(t, 3, res[0].Stores)
	assert.Equal(t, 5, res[0].Records)
}

func TestVerifyMany(t *testing.T) {
	good := tempFile(t, "good.arr")
	mustRun(t, "insert", good, "end", "ok")
	bad := tempFile(t, "bad.arr")
	require.NoError(t, os.WriteFile(bad, []byte{1, 2, 3}, 0o644))

	out, err := run(t, "verify", good, bad)
	assert.ErrorContains(t, err, "1 of 2 files failed")
	assert.Contains(t, out, "✓ "+good)
	assert.Contains(t, out, "✗ "+bad)
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.arr")
	mustRun(t, "insert", path, "end", "one")
	mustRun(t, "insert", path, "end", "--embedded")
	mustRun(t, "insert", path, "end", "nested", "--in", "2")
	mustRun(t, "rm", path, "0")

	fingerprint := func(p string) string {
		var res []struct {
			Fingerprint string `json:"fingerprint"`
		}
		require.NoError(t, json.Unmarshal([]byte(mustRun(t, "verify", p, "--json")), &res))
		require.Len(t, res, 1)
		return res[0].Fingerprint
	}
	want := fingerprint(path)

	for _, zstd := range []bool{false, true} {
		manifest := filepath.Join(dir, "m.yaml")
		restored := filepath.Join(dir, "restored.arr")
		args := []string{"export", path, "-o", manifest}
		if zstd {
			args = append(args, "--zstd")
		}
		mustRun(t, args...)
		mustRun(t, "import", manifest, restored)
		assert.Equal(t, want, fingerprint(restored), "zstd=%v", zstd)

		_, err := run(t, "import", manifest, restored)
		assert.Error(t, err, "import into a non-empty file")
		require.NoError(t, os.Remove(restored))
	}

	out := mustRun(t, "export", path)
	assert.Contains(t, out, "nested")
}

func TestUnlock(t *testing.T) {
	path := tempFile(t, "data.arr")
	mustRun(t, "insert", path, "end", "x")
	markOpen(t, path)

	_, err := run(t, "info", path)
	assert.Error(t, err)

	mustRun(t, "info", path, "--policy", "ignore")
	markOpen(t, path)

	assert.Contains(t, mustRun(t, "unlock", path), "Unlocked")
	mustRun(t, "info", path)

	_, err = run(t, "info", path, "--policy", "bogus")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "arrayctl.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("signature: CFG1\nversion: 7\n"), 0o644))
	path := filepath.Join(dir, "data.arr")

	mustRun(t, "insert", path, "end", "x", "--config", conf)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "CFG1", string(raw[:4]))

	out := mustRun(t, "info", path, "--config", conf, "--json")
	var res infoResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "CFG1", res.Signature)
	assert.Equal(t, uint32(7), res.Version)

	// The flag overrides the config.
	_, err = run(t, "info", path, "--config", conf, "--signature", "CFG2")
	assert.Error(t, err)
	mustRun(t, "info", path, "--signature", "CFG1")
}

func TestParseHelpers(t *testing.T) {
	ids, err := parseIDPath("/3/#7/")
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 7}, ids)

	ids, err = parseIDPath("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = parseIDPath("3/0")
	assert.Error(t, err)

	assert.Equal(t, "abc", preview([]byte("abc"), 8))
	assert.Equal(t, `"\x00\x01"`, preview([]byte{0, 1}, 8))
	assert.Equal(t, "ab...", preview([]byte("abcdef"), 2))
}

func TestPeek(t *testing.T) {
	path := tempFile(t, "data.arr")
	mustRun(t, "insert", path, "end", "abc")
	mustRun(t, "insert", path, "end", "--embedded")
	mustRun(t, "insert", path, "end", "inner", "--in", "2")
	markOpen(t, path)

	out := mustRun(t, "peek", path)
	assert.Contains(t, out, "Locked: true")
	assert.Contains(t, out, "version 0, 2 records, index at")

	out = mustRun(t, "peek", path, "--json")
	var snap struct {
		Locked  bool `json:"locked"`
		Records []struct {
			ID       uint32 `json:"id"`
			Embedded *struct {
				Records []struct {
					Len uint32 `json:"len"`
				} `json:"records"`
			} `json:"embedded"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.True(t, snap.Locked)
	require.Len(t, snap.Records, 2)
	require.NotNil(t, snap.Records[1].Embedded)
	assert.Equal(t, uint32(5), snap.Records[1].Embedded.Records[0].Len)

	// Peeking did not clear the mark.
	_, err := run(t, "info", path)
	assert.Error(t, err)
}

func TestWatchCount(t *testing.T) {
	path := tempFile(t, "data.arr")
	mustRun(t, "insert", path, "end", "abc")

	out := mustRun(t, "watch", path, "-n", "1")
	assert.Contains(t, out, "locked=false version=0 records=1")

	out = mustRun(t, "watch", path, "-n", "1", "--json")
	var snap struct {
		Records []json.RawMessage `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Len(t, snap.Records, 1)
}

func TestSchemaCommand(t *testing.T) {
	out := mustRun(t, "schema", "config")
	assertJSON(t, out)
	assert.Contains(t, out, "flush_mode")

	_, err := run(t, "schema", "nope")
	assert.Error(t, err)
}
