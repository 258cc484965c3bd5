package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var (
	getEncoding string
	getHex      bool
	getOutput   string
	getCopy     bool
)

func init() {
	cmd := newGetCmd()
	cmd.Flags().StringVar(&getEncoding, "encoding", "", "Decode the record from this single-byte encoding to UTF-8")
	cmd.Flags().BoolVar(&getHex, "hex", false, "Print a hex dump instead of the raw bytes")
	cmd.Flags().StringVarP(&getOutput, "output", "o", "", "Write the record to a file instead of stdout")
	cmd.Flags().BoolVar(&getCopy, "copy", false, "Copy the record to the clipboard instead of printing it")
	rootCmd.AddCommand(cmd)
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <file> <pos|#id>",
		Short: "Print the contents of one record",
		Long: `The get command writes the bytes of one record to stdout. Records are
addressed by position, or by ID when prefixed with '#'.

Example:
  arrayctl get data.arr 0
  arrayctl get data.arr '#12' --encoding windows-1252
  arrayctl get data.arr 3 --hex
  arrayctl get data.arr '#12' --copy`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args)
		},
	}
	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	t, err := openTarget(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	pos, err := resolveRecord(t.Store, args[1])
	if err != nil {
		return err
	}
	data, err := t.GetRecord(pos)
	if err != nil {
		return fmt.Errorf("failed to read record: %w", err)
	}
	if data, err = decodeText(data, getEncoding); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(struct {
			Pos  int    `json:"pos"`
			ID   uint32 `json:"id"`
			Kind string `json:"kind"`
			Data []byte `json:"data"`
		}{pos, t.ID(pos), t.Kind(pos).String(), data})
	}
	if getCopy {
		if err := clipboard.WriteAll(string(data)); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		printVerbose("Copied %d bytes\n", len(data))
		return nil
	}
	if getOutput != "" {
		return os.WriteFile(getOutput, data, 0o644)
	}
	if getHex {
		_, err = fmt.Fprint(os.Stdout, hex.Dump(data))
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
