package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"casectl/internal/export"
)

var exportFlags struct {
	caseID    string
	out       string
	clipboard bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current case report as Markdown",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.caseID, "case-id", "", "Case to export (default: current session case)")
	f.StringVarP(&exportFlags.out, "out", "o", "", "Output file (default: case-<id>-report.md)")
	f.BoolVar(&exportFlags.clipboard, "clipboard", false, "Copy the report to the clipboard instead of writing a file")
}

func runExport(cmd *cobra.Command, args []string) error {
	tracker, closeStore, err := openTracker()
	if err != nil {
		return err
	}
	defer closeStore()

	caseID, err := tracker.ResolveCase(exportFlags.caseID)
	if err != nil {
		return err
	}
	summary, err := tracker.ResolveSummary(caseID, "")
	if err != nil {
		return err
	}

	report := export.Report{CaseID: caseID, Summary: summary}
	out := cmd.OutOrStdout()

	client, err := newClient()
	if err != nil {
		return err
	}
	if res, err := client.MitreTags(cmd.Context(), caseID, summary); err == nil {
		report.Tags = res.TagList()
	} else {
		// The report is still useful without the technique section.
		fmt.Fprintf(out, "Tags unavailable: %v\n", err)
	}
	if exportFlags.clipboard {
		if err := report.Clipboard(); err != nil {
			// Clipboard access fails on headless hosts; fall back to stdout.
			fmt.Fprintf(out, "Clipboard unavailable (%v), printing report:\n\n", err)
			fmt.Fprintln(out, report.Markdown())
			return nil
		}
		fmt.Fprintln(out, "Report copied to clipboard.")
		return nil
	}

	path, err := report.WriteFile(exportFlags.out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Report written to %s\n", path)
	return nil
}
