// casectl is the console client for the pre-investigation DFIR backend:
// ingest evidence, search within a case, list cases, generate summaries,
// extract MITRE tags, and export reports.
//
// Usage:
//
//	casectl ingest "suspicious service installed" --meta '{"source":"triage"}'
//	casectl upload bundle.zip
//	casectl watch ./dropbox --bulk --jobs 4
//	casectl search "persistence mechanism" --top-k 10
//	casectl cases [case-id]
//	casectl explain && casectl tags
//	casectl export --out report.md
//	casectl serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
