package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/joshuapare/arraykit/filearray"
	"github.com/joshuapare/arraykit/pkg/arrayfile"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	noColor    bool
	configPath string
	signature  string
	policyName string
	within     string

	// Set up by the root command before any subcommand runs.
	logger *slog.Logger
	cfg    *arrayfile.Config
)

var rootCmd = &cobra.Command{
	Use:   "arrayctl",
	Short: "Inspect and edit array files",
	Long: `arrayctl inspects and edits array files: single files holding an ordered
list of byte records, each with a permanent ID, possibly with whole array files
embedded in records.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored log output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&signature, "signature", "", "File signature (overrides config)")
	rootCmd.PersistentFlags().
		StringVar(&policyName, "policy", "", "What to do when the file is marked open: fail, ignore, delete, wait-fail, wait-delete")
	rootCmd.PersistentFlags().
		StringVar(&within, "in", "", "Operate on an embedded store, given as a path of record IDs (e.g. 3/7)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	logger = newLogger(os.Stderr, verbose, noColor)

	var err error
	if configPath != "" {
		if cfg, err = arrayfile.LoadConfig(configPath); err != nil {
			return err
		}
	} else {
		cfg = arrayfile.DefaultConfig()
	}
	if cmd.Flags().Changed("signature") {
		cfg.Signature = signature
	}
	if policyName != "" {
		if _, err := arrayfile.ParsePolicy(policyName); err != nil {
			return err
		}
		cfg.Policy = policyName
	}
	return nil
}

// target is an opened store plus the chain of stores enclosing it.
type target struct {
	*filearray.Store
	chain []*filearray.Store // outermost first, excluding Store
}

// Close closes the store and then every enclosing store, innermost first.
func (t *target) Close() error {
	err := t.Store.Close()
	for i := len(t.chain) - 1; i >= 0; i-- {
		if cerr := t.chain[i].Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// openTarget opens the file at path and walks down the --in path.
func openTarget(ctx context.Context, path string) (*target, error) {
	ids, err := parseIDPath(within)
	if err != nil {
		return nil, err
	}
	printVerbose("Opening array file: %s\n", path)
	s, err := arrayfile.Open(ctx, path, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	t := &target{Store: s}
	for _, id := range ids {
		child, err := filearray.CreateEmbedded(t.Store, id, nil)
		if err != nil {
			_ = t.Close()
			return nil, fmt.Errorf("failed to open embedded record %d: %w", id, err)
		}
		t.chain = append(t.chain, t.Store)
		t.Store = child
	}
	return t, nil
}

func parseIDPath(s string) ([]uint32, error) {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "/")
	ids := make([]uint32, 0, len(parts))
	for _, p := range parts {
		id, err := parseID(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid record ID %q", s)
	}
	return uint32(v), nil
}

func parsePos(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return v, nil
}

// resolveRecord maps "#ID" to a position and a plain number to itself.
func resolveRecord(s *filearray.Store, ref string) (int, error) {
	if strings.HasPrefix(ref, "#") {
		id, err := parseID(ref)
		if err != nil {
			return 0, err
		}
		pos, ok := s.PositionOf(id)
		if !ok {
			return 0, fmt.Errorf("no record with ID %d", id)
		}
		return pos, nil
	}
	pos, err := parsePos(ref)
	if err != nil {
		return 0, err
	}
	if pos >= s.Len() {
		return 0, fmt.Errorf("position %d out of range, store has %d records", pos, s.Len())
	}
	return pos, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as indented JSON, coloured on a terminal
func printJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = pretty.Pretty(b)
	if !noColor && isatty.IsTerminal(os.Stdout.Fd()) {
		b = pretty.Color(b, nil)
	}
	_, err = os.Stdout.Write(b)
	return err
}
