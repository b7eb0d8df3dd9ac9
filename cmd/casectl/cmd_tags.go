package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"casectl/internal/render"
)

var tagsFlags struct {
	caseID  string
	summary string
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Map the case summary to MITRE ATT&CK techniques",
	Long: "Tags sends the case summary to the backend and prints the MITRE\n" +
		"ATT&CK techniques it maps to. Run explain first, or pass --summary.",
	Args: cobra.NoArgs,
	RunE: runTags,
}

func init() {
	f := tagsCmd.Flags()
	f.StringVar(&tagsFlags.caseID, "case-id", "", "Case to tag (default: current session case)")
	f.StringVar(&tagsFlags.summary, "summary", "", "Summary text (default: summary from the last explain)")
}

func runTags(cmd *cobra.Command, args []string) error {
	tracker, closeStore, err := openTracker()
	if err != nil {
		return err
	}
	defer closeStore()

	caseID, err := tracker.ResolveCase(tagsFlags.caseID)
	if err != nil {
		return err
	}
	summary, err := tracker.ResolveSummary(caseID, tagsFlags.summary)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	res, err := client.MitreTags(cmd.Context(), caseID, summary)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rootFlags.jsonOut {
		fmt.Fprintln(out, res.Raw.Pretty())
		return nil
	}
	fmt.Fprintln(out, render.Tags(res))
	return nil
}
