package main

import (
	"strconv"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arraykit/filearray/index"
)

var listPreview int

func init() {
	cmd := newListCmd()
	cmd.Flags().IntVar(&listPreview, "preview", 32, "Bytes of each record to show (0 to hide)")
	rootCmd.AddCommand(cmd)
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <file>",
		Short: "List records in position order",
		Long: `The list command prints one line per record: position, ID, kind, length
and a short preview of the contents.

Example:
  arrayctl list data.arr
  arrayctl list data.arr --in 3/7 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args)
		},
	}
	return cmd
}

type listEntry struct {
	Pos     int    `json:"pos"`
	ID      uint32 `json:"id"`
	Kind    string `json:"kind"`
	Len     int    `json:"len"`
	Preview string `json:"preview,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	t, err := openTarget(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	entries := make([]listEntry, 0, t.Len())
	err = t.ForEach(func(pos int, e index.Entry, data []byte) error {
		le := listEntry{Pos: pos, ID: e.ID, Kind: e.Kind.String(), Len: len(data)}
		if e.Kind == index.KindData && listPreview > 0 {
			le.Preview = preview(data, listPreview)
		}
		entries = append(entries, le)
		return nil
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(entries)
	}
	for _, le := range entries {
		printInfo("%4d  #%-6d %-8s %8d  %s\n", le.Pos, le.ID, le.Kind, le.Len, le.Preview)
	}
	printVerbose("%d records\n", len(entries))
	return nil
}

// preview renders up to n bytes of b, quoted when not printable UTF-8.
func preview(b []byte, n int) string {
	cut := b
	if len(cut) > n {
		cut = cut[:n]
	}
	s := string(cut)
	if !utf8.ValidString(s) || strconv.Quote(s) != `"`+s+`"` {
		s = strconv.Quote(s)
	}
	if len(b) > n {
		s += "..."
	}
	return s
}
