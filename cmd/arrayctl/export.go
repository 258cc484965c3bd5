package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arraykit/filearray"
	"github.com/joshuapare/arraykit/pkg/arrayfile"
)

var (
	exportOutput string
	exportZstd   bool
)

func init() {
	export := newExportCmd()
	export.Flags().StringVarP(&exportOutput, "output", "o", "", "Write the manifest to a file instead of stdout")
	export.Flags().BoolVar(&exportZstd, "zstd", false, "Compress the manifest with zstd")
	rootCmd.AddCommand(export, newImportCmd(), newUnlockCmd())
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export a store and its embedded stores as a YAML manifest",
		Long: `The export command writes every record, with its ID, and every embedded
store to a YAML manifest that import can turn back into an identical file.

Example:
  arrayctl export data.arr > data.yaml
  arrayctl export data.arr --zstd -o data.yaml.zst`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTarget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer t.Close()

			var w io.Writer = os.Stdout
			if exportOutput != "" {
				f, err := os.Create(exportOutput)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := arrayfile.Export(t.Store, w, arrayfile.ExportOptions{Compress: exportZstd}); err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}
			printVerbose("Exported %d records\n", t.Len())
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <manifest> <file>",
		Short: "Create an array file from an exported manifest",
		Long: `The import command rebuilds an array file from a manifest written by export,
keeping record IDs and embedded stores. Compressed manifests are detected
automatically. Use '-' to read the manifest from stdin.

Example:
  arrayctl import data.yaml restored.arr`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			s, err := arrayfile.Import(cmd.Context(), r, args[1], cfg.Options(logger))
			if err != nil {
				return fmt.Errorf("failed to import: %w", err)
			}
			printVerbose("Imported %d records into %s\n", s.Len(), args[1])
			return s.Close()
		},
	}
}

func newUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <file>",
		Short: "Clear a lock bit left behind by a crashed process",
		Long: `The unlock command opens the file even if it is marked open and closes it
again, which clears the mark. Only use it when no other process has the file
open.

Example:
  arrayctl unlock data.arr`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := filearray.CreateBase(cmd.Context(), args[0], []byte(cfg.Signature),
				filearray.IgnoreIfOpen, cfg.Options(logger))
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			if err := s.Close(); err != nil {
				return err
			}
			printInfo("Unlocked %s\n", args[0])
			return nil
		},
	}
}
