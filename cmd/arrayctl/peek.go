package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arraykit/pkg/arrayfile"
)

func init() {
	rootCmd.AddCommand(newPeekCmd())
}

func newPeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "peek <file>",
		Short: "Show the on-disk layout without opening the file",
		Long: `The peek command maps the file read-only and prints its header and index,
including those of embedded stores. Unlike the other commands it does not set
the lock bit, so it works on files another process has open and tells whether
the lock bit is set.

Example:
  arrayctl peek data.arr
  arrayctl peek data.arr --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := arrayfile.Peek(args[0], []byte(cfg.Signature))
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(snap)
			}
			printInfo("File: %s (%d bytes)\n", args[0], snap.Size)
			printInfo("Locked: %t\n", snap.Locked)
			printSnapshot(snap, 0)
			return nil
		},
	}
}

func printSnapshot(s *arrayfile.Snapshot, depth int) {
	indent := strings.Repeat("    ", depth)
	printInfo("%sversion %d, %d records, index at %d\n", indent, s.Version, len(s.Records), s.IndexOffset)
	for pos, r := range s.Records {
		printInfo("%s%4d  #%-6d %-8s %8d @%d\n", indent, pos, r.ID, r.Kind, r.Len, r.Offset)
		if r.Embedded != nil {
			printSnapshot(r.Embedded, depth+1)
		}
	}
}
