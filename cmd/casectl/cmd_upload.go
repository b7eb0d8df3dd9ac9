package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"casectl/internal/ingest"
)

var uploadFlags struct {
	force bool
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a file (e.g. a forensic bundle) for extraction and indexing",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadFlags.force, "force", false, "Upload even if this file was already ingested")
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]

	sha, err := ingest.FileSHA256(path)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	tracker, closeStore, err := openTracker()
	if err != nil {
		return err
	}
	defer closeStore()

	if !uploadFlags.force {
		seen, err := tracker.SeenFile(sha)
		if err != nil {
			return err
		}
		if seen {
			fmt.Fprintf(cmd.OutOrStdout(), "Skipped: %s was already ingested (sha256 match); use --force to re-upload\n", filepath.Base(path))
			return nil
		}
	}

	res, err := client.IngestFilePath(cmd.Context(), path)
	if err != nil {
		return err
	}
	if err := tracker.CaseIngested(res.CaseID, "file", filepath.Base(path), sha); err != nil {
		return fmt.Errorf("record ingest: %w", err)
	}

	out := cmd.OutOrStdout()
	if rootFlags.jsonOut {
		fmt.Fprintln(out, res.Raw.Pretty())
		return nil
	}
	fmt.Fprintf(out, "Case: %s\n", res.CaseID)
	if res.SHA256 != "" {
		fmt.Fprintf(out, "SHA256: %s\n", res.SHA256)
	}
	fmt.Fprintln(out, "Extraction runs in the background; use 'casectl search' once indexing completes.")
	return nil
}
