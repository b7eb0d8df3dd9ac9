package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"casectl/internal/ingest"
	"casectl/internal/logging"
)

var watchFlags struct {
	jobs   int
	bulk   bool
	settle time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and ingest files as they appear",
	Long: "Watch uploads every file dropped into the directory once it has\n" +
		"settled. Files whose sha256 is already in the local ingest history are\n" +
		"skipped. With --bulk, existing files are swept first.",
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.IntVar(&watchFlags.jobs, "jobs", 2, "Concurrent uploads during the bulk sweep")
	f.BoolVar(&watchFlags.bulk, "bulk", false, "Sweep existing files before watching")
	f.DurationVar(&watchFlags.settle, "settle", ingest.DefaultSettle, "Quiet period before a new file is uploaded")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	logger := logging.New("watch")

	client, err := newClient()
	if err != nil {
		return err
	}
	tracker, closeStore, err := openTracker()
	if err != nil {
		return err
	}
	defer closeStore()

	bulk := &ingest.Bulk{Client: client, Tracker: tracker, Jobs: watchFlags.jobs, Logger: logger}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if watchFlags.bulk {
		report, err := bulk.Dir(ctx, dir)
		if err != nil {
			return fmt.Errorf("bulk sweep: %w", err)
		}
		fmt.Fprintf(out, "Sweep: %d uploaded, %d skipped, %d failed\n",
			report.Count(ingest.Uploaded), report.Count(ingest.Skipped), report.Count(ingest.Failed))
		for _, f := range report.Files {
			if f.Outcome == ingest.Failed {
				fmt.Fprintf(out, "  failed: %s: %v\n", f.Path, f.Err)
			}
		}
	}

	w := &ingest.Watcher{Bulk: bulk, Settle: watchFlags.settle, Logger: logger}
	err = w.Run(ctx, dir)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
