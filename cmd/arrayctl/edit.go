package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	editEncoding string
	editFile     string
	insertEmbed  bool
)

func init() {
	put := newPutCmd()
	put.Flags().StringVar(&editEncoding, "encoding", "", "Encode UTF-8 input to this single-byte encoding before storing")
	put.Flags().StringVarP(&editFile, "file", "f", "", "Read the record from a file ('-' for stdin)")

	insert := newInsertCmd()
	insert.Flags().StringVar(&editEncoding, "encoding", "", "Encode UTF-8 input to this single-byte encoding before storing")
	insert.Flags().StringVarP(&editFile, "file", "f", "", "Read the record from a file ('-' for stdin)")
	insert.Flags().BoolVar(&insertEmbed, "embedded", false, "Insert an empty embedded store instead of data")

	rootCmd.AddCommand(put, insert, newRmCmd(), newMvCmd(), newSwapCmd())
}

func newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <file> <pos|#id> [data]",
		Short: "Replace the contents of a record",
		Long: `The put command overwrites one record, keeping its ID.

Example:
  arrayctl put data.arr 0 "new contents"
  arrayctl put data.arr '#12' --file blob.bin`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTarget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer t.Close()

			pos, err := resolveRecord(t.Store, args[1])
			if err != nil {
				return err
			}
			if t.IsEmbedded(pos) {
				return fmt.Errorf("record #%d holds an embedded store; use --in to edit it", t.ID(pos))
			}
			data, err := recordInput(args[2:])
			if err != nil {
				return err
			}
			if err := t.SetRecord(pos, data); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
			printVerbose("Record #%d now holds %d bytes\n", t.ID(pos), len(data))
			return nil
		},
	}
}

func newInsertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <file> <pos|end> [data]",
		Short: "Insert a new record",
		Long: `The insert command adds a record at the given position (or at the end) and
prints its ID. The file is created when missing.

Example:
  arrayctl insert data.arr end "hello"
  arrayctl insert data.arr 0 --file blob.bin
  arrayctl insert data.arr end --embedded`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTarget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer t.Close()

			pos := t.Len()
			if !strings.EqualFold(args[1], "end") {
				if pos, err = parsePos(args[1]); err != nil {
					return err
				}
			}

			var id uint32
			if insertEmbed {
				id, err = t.InsertEmbeddedAt(pos)
			} else {
				var data []byte
				if data, err = recordInput(args[2:]); err != nil {
					return err
				}
				id, err = t.InsertAt(pos, data)
			}
			if err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}
			if jsonOut {
				return printJSON(map[string]uint32{"id": id})
			}
			printInfo("%d\n", id)
			return nil
		},
	}
}

func recordInput(args []string) ([]byte, error) {
	data, err := readInput(args, editFile)
	if err != nil {
		return nil, err
	}
	return encodeText(data, editEncoding)
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file> <pos|#id>...",
		Short: "Remove records",
		Long: `The rm command removes one or more records. All records are resolved
before any is removed, so positions refer to the file as it was.

Example:
  arrayctl rm data.arr 0 '#12'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTarget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer t.Close()

			ids := make([]uint32, 0, len(args)-1)
			for _, ref := range args[1:] {
				pos, err := resolveRecord(t.Store, ref)
				if err != nil {
					return err
				}
				ids = append(ids, t.ID(pos))
			}
			return t.Batch(func() error {
				for _, id := range ids {
					if _, ok := t.PositionOf(id); !ok {
						continue // named twice
					}
					if err := t.RemoveByID(id); err != nil {
						return fmt.Errorf("failed to remove record #%d: %w", id, err)
					}
					printVerbose("Removed record #%d\n", id)
				}
				return nil
			})
		},
	}
}

func newMvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <file> <pos|#id> <to>",
		Short: "Move a record to another position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTarget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer t.Close()

			from, err := resolveRecord(t.Store, args[1])
			if err != nil {
				return err
			}
			to, err := resolveRecord(t.Store, args[2])
			if err != nil {
				return err
			}
			return t.MoveTo(from, to)
		},
	}
}

func newSwapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "swap <file> <pos|#id> <pos|#id>",
		Short: "Exchange the positions of two records",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTarget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer t.Close()

			a, err := resolveRecord(t.Store, args[1])
			if err != nil {
				return err
			}
			b, err := resolveRecord(t.Store, args[2])
			if err != nil {
				return err
			}
			return t.Swap(a, b)
		},
	}
}
