// Package arrayfile is the high-level API over filearray: opening stores from
// a YAML config, exporting a store tree to a portable manifest and importing
// it back, and verifying files.
//
// Peek and Watch read a file without opening it as a store, so they work on
// files another process holds open.
//
// Example (export a store with its embedded stores):
//
//	cfg, err := arrayfile.LoadConfig("arrayctl.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s, err := arrayfile.Open(ctx, "data.arr", cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//	err = arrayfile.Export(s, os.Stdout, arrayfile.ExportOptions{Compress: true})
package arrayfile

import (
	"context"
	"log/slog"

	"github.com/joshuapare/arraykit/filearray"
)

// Open opens the base store at path as described by cfg. A nil cfg means
// DefaultConfig.
func Open(ctx context.Context, path string, cfg *Config, logger *slog.Logger) (*filearray.Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return filearray.CreateBase(ctx, path, []byte(cfg.Signature), cfg.OpenPolicy(), cfg.Options(logger))
}
