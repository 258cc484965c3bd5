package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arraykit/pkg/arrayfile"
)

var (
	watchInterval time.Duration
	watchCount    int
)

func init() {
	cmd := newWatchCmd()
	cmd.Flags().DurationVar(&watchInterval, "interval", arrayfile.DefaultWatchInterval, "Minimum time between two reports")
	cmd.Flags().IntVarP(&watchCount, "count", "n", 0, "Stop after this many reports (0 for no limit)")
	rootCmd.AddCommand(cmd)
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Report the layout of a file every time it changes",
		Long: `The watch command peeks at the file (see peek) and prints one line each time
another process writes to it, until interrupted. With --json each report is a
JSON object on its own line.

Example:
  arrayctl watch data.arr
  arrayctl watch data.arr --json --interval 1s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			reports := 0
			enc := json.NewEncoder(os.Stdout)
			opts := arrayfile.WatchOptions{
				Signature: []byte(cfg.Signature),
				Interval:  watchInterval,
				Logger:    logger,
			}
			return arrayfile.Watch(ctx, args[0], opts, func(snap *arrayfile.Snapshot, err error) {
				if err != nil {
					// Usually a write caught half way; the next one will settle it.
					logger.Debug("snapshot failed", "error", err)
					return
				}
				if jsonOut {
					_ = enc.Encode(snap)
				} else {
					printInfo("%s  locked=%t version=%d records=%d size=%d\n",
						time.Now().Format("15:04:05.000"), snap.Locked, snap.Version, len(snap.Records), snap.Size)
				}
				if reports++; watchCount > 0 && reports >= watchCount {
					cancel()
				}
			})
		},
	}
}
