package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"casectl/internal/console"
	"casectl/internal/render"
)

var searchFlags struct {
	caseID          string
	topK            string
	includeMetadata bool
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search snippets within the current case",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchFlags.caseID, "case-id", "", "Case to search (default: current session case)")
	f.StringVar(&searchFlags.topK, "top-k", "", "Number of hits to return")
	f.BoolVar(&searchFlags.includeMetadata, "include-metadata", true, "Include snippet metadata in results")
}

// parseTopK tolerates empty and non-numeric input, falling back to the
// configured default rather than erroring out.
func parseTopK(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func runSearch(cmd *cobra.Command, args []string) error {
	tracker, closeStore, err := openTracker()
	if err != nil {
		return err
	}
	defer closeStore()

	caseID, err := tracker.ResolveCase(searchFlags.caseID)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	res, err := client.Search(cmd.Context(), console.SearchRequest{
		CaseID:          caseID,
		Query:           args[0],
		TopK:            parseTopK(searchFlags.topK, cfg.TopK),
		IncludeMetadata: searchFlags.includeMetadata,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rootFlags.jsonOut {
		fmt.Fprintln(out, res.Raw.Pretty())
		return nil
	}
	fmt.Fprintln(out, render.Hits(res, tableMode()))
	return nil
}
