package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"casectl/internal/console"
)

var ingestFlags struct {
	meta   string
	caseID string
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [text]",
	Short: "Ingest a text snippet into a case",
	Long: "Ingest indexes a text snippet into a case. Reads from stdin when no\n" +
		"argument (or \"-\") is given. The returned case ID becomes the current\n" +
		"case for later search/explain/tags calls.",
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVarP(&ingestFlags.meta, "meta", "m", "", "Metadata as a JSON object (default {\"source\":\"cli\"})")
	f.StringVar(&ingestFlags.caseID, "case-id", "", "Append to this case instead of opening a new one")
}

func runIngest(cmd *cobra.Command, args []string) error {
	text := ""
	if len(args) == 1 {
		text = args[0]
	}
	if text == "" || text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("ingest: %w", console.ErrEmptyText)
	}

	// Metadata must parse before anything goes on the wire.
	var meta map[string]any
	if strings.TrimSpace(ingestFlags.meta) != "" {
		if err := json.Unmarshal([]byte(ingestFlags.meta), &meta); err != nil {
			return fmt.Errorf("ingest: metadata is not valid JSON: %w", err)
		}
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

	res, err := client.IngestText(cmd.Context(), console.IngestRequest{
		Text:     text,
		CaseID:   ingestFlags.caseID,
		Metadata: meta,
	})
	if err != nil {
		return err
	}
	if err := tracker.CaseIngested(res.CaseID, "text", "", ""); err != nil {
		return fmt.Errorf("record ingest: %w", err)
	}

	out := cmd.OutOrStdout()
	if rootFlags.jsonOut {
		fmt.Fprintln(out, res.Raw.Pretty())
		return nil
	}
	fmt.Fprintf(out, "Case: %s\n", res.CaseID)
	if res.Ingested > 0 {
		fmt.Fprintf(out, "Ingested: %d snippet(s)\n", res.Ingested)
	}
	return nil
}
