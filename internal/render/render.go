package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"casectl/internal/console"
)

// Truncate shortens s to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// Cases renders a case listing as a table.
func Cases(list *console.CaseList, mode Mode) string {
	if len(list.Cases) == 0 {
		return "No cases."
	}
	tb := NewTable(mode)
	tb.Header("CASE ID", "FILENAME", "CREATED")
	for _, c := range list.Cases {
		tb.Row(c.CaseID, c.Filename, c.CreatedAt)
	}
	return tb.String()
}

// Hits renders search results as a table, one row per hit. Distance is
// cosine distance, lower is closer.
func Hits(res *console.SearchResult, mode Mode) string {
	if len(res.Results) == 0 {
		return "No results."
	}
	tb := NewTable(mode)
	tb.Header("#", "DISTANCE", "TEXT", "SOURCE")
	tb.Columns(
		ColumnConfig{Number: 2, Align: AlignRight},
		ColumnConfig{Number: 3, MaxWidth: 80},
	)
	for i, h := range res.Results {
		tb.Row(i+1, fmt.Sprintf("%.3f", h.Distance), oneLine(h.Text), hitSource(h))
	}
	return tb.String()
}

// Tags renders a tag extraction response. A plain technique list gets one
// named technique per line; any other shape is pretty-printed JSON.
func Tags(res *console.TagResult) string {
	if tags := res.TagList(); tags != nil {
		lines := make([]string, len(tags))
		for i, code := range tags {
			lines[i] = "- " + TechniqueWithCode(code)
		}
		return strings.Join(lines, "\n")
	}
	if len(res.Tags) > 0 {
		var v any
		if json.Unmarshal(res.Tags, &v) == nil {
			if out, err := json.MarshalIndent(v, "", "  "); err == nil {
				return string(out)
			}
		}
	}
	return res.Raw.Pretty()
}

func hitSource(h console.SearchHit) string {
	if h.Metadata == nil {
		return ""
	}
	if s, ok := h.Metadata["source"].(string); ok {
		return s
	}
	return ""
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
