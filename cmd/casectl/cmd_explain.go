package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var explainFlags struct {
	caseID string
}

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Generate an analyst summary for the current case",
	Args:  cobra.NoArgs,
	RunE:  runExplain,
}

func init() {
	explainCmd.Flags().StringVar(&explainFlags.caseID, "case-id", "", "Case to explain (default: current session case)")
}

func runExplain(cmd *cobra.Command, args []string) error {
	tracker, closeStore, err := openTracker()
	if err != nil {
		return err
	}
	defer closeStore()

	caseID, err := tracker.ResolveCase(explainFlags.caseID)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	res, err := client.Explain(cmd.Context(), caseID)
	if err != nil {
		return err
	}

	if res.Summary != "" {
		if err := tracker.SummaryProduced(caseID, res.Summary); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if rootFlags.jsonOut || res.Summary == "" {
		fmt.Fprintln(out, res.Raw.Pretty())
		return nil
	}
	fmt.Fprintf(out, "Case: %s\n\n%s\n", res.CaseID, res.Summary)
	return nil
}
