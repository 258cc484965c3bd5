package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/arraykit/pkg/arrayfile"
)

var verifyJobs int

func init() {
	cmd := newVerifyCmd()
	cmd.Flags().IntVarP(&verifyJobs, "jobs", "j", runtime.NumCPU(), "Files to verify concurrently")
	rootCmd.AddCommand(cmd)
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file>...",
		Short: "Check the structure of one or more array files",
		Long: `The verify command opens each file, checks that records tile the data
section, that the index and header agree with the file size, and does the same
for every embedded store. It prints a fingerprint of the contents that stays
the same across export and import.

Example:
  arrayctl verify data.arr
  arrayctl verify *.arr --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args)
		},
	}
	return cmd
}

type verifyResult struct {
	*arrayfile.Report
	Path  string `json:"path"`
	Error string `json:"error,omitempty"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	results := make([]verifyResult, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(verifyJobs, 1))
	for i, path := range args {
		g.Go(func() error {
			// One store per goroutine; stores are not shared.
			rep, err := arrayfile.VerifyFile(ctx, path, cfg, logger.With("file", path))
			results[i] = verifyResult{Report: rep, Path: path}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Error != "" {
				printInfo("✗ %s: %s\n", r.Path, r.Error)
				continue
			}
			printInfo("✓ %s: %d stores, %d records, %d bytes, fingerprint %s\n",
				r.Path, r.Stores, r.Records, r.Bytes, r.Fingerprint)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed verification", failed, len(results))
	}
	return nil
}
