package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Single-byte encodings legacy text records may be stored in.
var charmaps = map[string]*charmap.Charmap{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"windows-1251": charmap.Windows1251,
	"windows-1250": charmap.Windows1250,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"koi8-r":       charmap.KOI8R,
	"macintosh":    charmap.Macintosh,
}

func encodingNames() string {
	names := []string{"raw"}
	for name := range charmaps {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

// lookupCharmap returns nil for raw bytes.
func lookupCharmap(name string) (*charmap.Charmap, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "raw", "utf-8", "utf8":
		return nil, nil
	}
	cm, ok := charmaps[name]
	if !ok {
		return nil, fmt.Errorf("unknown encoding %q (supported: %s)", name, encodingNames())
	}
	return cm, nil
}

// decodeText converts a record stored in the named encoding to UTF-8.
func decodeText(b []byte, name string) ([]byte, error) {
	cm, err := lookupCharmap(name)
	if err != nil || cm == nil {
		return b, err
	}
	out, err := cm.NewDecoder().Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}

// encodeText converts UTF-8 input to the named encoding for storage.
func encodeText(b []byte, name string) ([]byte, error) {
	cm, err := lookupCharmap(name)
	if err != nil || cm == nil {
		return b, err
	}
	out, err := cm.NewEncoder().Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return out, nil
}

// readInput returns the record payload given on the command line: the
// literal argument, or the contents of a file ("-" for stdin).
func readInput(args []string, fromFile string) ([]byte, error) {
	switch {
	case fromFile == "-":
		return io.ReadAll(os.Stdin)
	case fromFile != "":
		return os.ReadFile(fromFile) //nolint:gosec // User-specified input path
	case len(args) > 0:
		return []byte(args[0]), nil
	default:
		return nil, fmt.Errorf("no data given: pass it as an argument or use --file")
	}
}
