// Package export assembles the case report and delivers it to a file or
// the system clipboard.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"casectl/internal/render"
)

// Report is the exportable view of an investigated case.
type Report struct {
	CaseID  string
	Summary string
	Tags    []string // ATT&CK technique codes, may be empty
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var b strings.Builder

	id := r.CaseID
	if id == "" {
		id = "unknown"
	}
	fmt.Fprintf(&b, "# Case Report: %s\n\n", id)

	b.WriteString("## Summary\n\n")
	if r.Summary != "" {
		b.WriteString(strings.TrimSpace(r.Summary))
		b.WriteString("\n")
	} else {
		b.WriteString("_No summary generated._\n")
	}

	if len(r.Tags) > 0 {
		b.WriteString("\n## MITRE ATT&CK Techniques\n\n")
		for _, code := range r.Tags {
			fmt.Fprintf(&b, "- %s\n", render.TechniqueWithCode(code))
		}
	}
	return b.String()
}

// Filename names the report file after the case, with a placeholder when no
// case is current. Path-hostile characters in the ID are replaced.
func Filename(caseID string) string {
	if caseID == "" {
		caseID = "unknown"
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, caseID)
	return "case-" + safe + "-report.md"
}

// WriteFile writes the report to path (Filename(caseID) when path is empty)
// and returns the path written.
func (r *Report) WriteFile(path string) (string, error) {
	if path == "" {
		path = Filename(r.CaseID)
	}
	if err := os.WriteFile(path, []byte(r.Markdown()), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// clipboardWrite is swapped in tests; clipboard access needs a display.
var clipboardWrite = clipboard.WriteAll

// Clipboard copies the report to the system clipboard. Callers fall back to
// printing the report when this fails; the failure is a status, not a crash.
func (r *Report) Clipboard() error {
	if err := clipboardWrite(r.Markdown()); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
