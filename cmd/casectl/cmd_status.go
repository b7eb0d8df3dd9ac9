package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"casectl/internal/render"
)

var statusFlags struct {
	limit int
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session and recent ingest history",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusFlags.limit, "limit", 10, "Number of history entries to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	tracker, closeStore, err := openTracker()
	if err != nil {
		return err
	}
	defer closeStore()

	sess, err := tracker.Current()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if sess.CurrentCase == "" {
		fmt.Fprintln(out, "No current case.")
	} else {
		fmt.Fprintf(out, "Case: %s (set %s)\n", sess.CurrentCase, sess.CaseSetAt)
		if s := sess.SummaryFor(sess.CurrentCase); s != "" {
			fmt.Fprintf(out, "Summary: %s\n", render.Truncate(s, 120))
		}
	}

	history, err := tracker.History(statusFlags.limit)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return nil
	}

	t := render.NewTable(tableMode())
	t.Header("WHEN", "CASE", "KIND", "FILE")
	for _, rec := range history {
		t.Row(rec.CreatedAt, rec.CaseID, rec.Kind, rec.Filename)
	}
	fmt.Fprintln(out, t.String())
	return nil
}
