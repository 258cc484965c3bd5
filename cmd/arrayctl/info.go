package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Report header and layout information",
		Long: `The info command opens an array file and reports its signature, version,
record counts and section sizes.

Example:
  arrayctl info data.arr
  arrayctl info data.arr --in 3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args)
		},
	}
	return cmd
}

type infoResult struct {
	Path         string `json:"path"`
	Embedded     bool   `json:"embedded"`
	Signature    string `json:"signature"`
	Version      uint32 `json:"version"`
	Records      int    `json:"records"`
	EmbeddedRecs int    `json:"embedded_records"`
	DataBytes    int64  `json:"data_bytes"`
	IndexBytes   int64  `json:"index_bytes"`
	Size         int64  `json:"size"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	t, err := openTarget(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	st := t.Stats()
	res := infoResult{
		Path:         args[0],
		Embedded:     t.Embedded(),
		Signature:    string(t.Signature()),
		Version:      t.Version(),
		Records:      st.Records,
		EmbeddedRecs: st.Embedded,
		DataBytes:    st.DataBytes,
		IndexBytes:   st.IndexBytes,
		Size:         st.Size,
	}
	if jsonOut {
		return printJSON(res)
	}

	printInfo("\nArray File Information:\n")
	printInfo("  File: %s\n", res.Path)
	if res.Embedded {
		printInfo("  Embedded store: %s\n", within)
	} else {
		printInfo("  Signature: %q\n", res.Signature)
	}
	printInfo("  Version: %d\n", res.Version)
	printInfo("  Records: %d (%d embedded)\n", res.Records, res.EmbeddedRecs)
	printInfo("  Data: %d bytes\n", res.DataBytes)
	printInfo("  Index: %d bytes\n", res.IndexBytes)
	printInfo("  Size: %d bytes\n", res.Size)
	return nil
}
