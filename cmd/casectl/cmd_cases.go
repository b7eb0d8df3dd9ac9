package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"casectl/internal/render"
)

var casesCmd = &cobra.Command{
	Use:   "cases [case-id]",
	Short: "List known cases, or show one case",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCases,
}

func runCases(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		res, err := client.GetCase(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.Pretty())
		return nil
	}

	list, err := client.ListCases(cmd.Context())
	if err != nil {
		return err
	}
	if rootFlags.jsonOut {
		fmt.Fprintln(out, list.Raw.Pretty())
		return nil
	}
	fmt.Fprintln(out, render.Cases(list, tableMode()))
	return nil
}
