package console

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Explain asks the backend for a natural-language summary of a case via
// POST /explain_case.
func (c *Client) Explain(ctx context.Context, caseID string) (*ExplainResult, error) {
	if caseID == "" {
		return nil, fmt.Errorf("explain case: %w", ErrMissingCaseID)
	}

	body := struct {
		CaseID string `json:"case_id"`
	}{CaseID: caseID}

	res, err := c.postJSON(ctx, "/explain_case", "explain case", body)
	if err != nil {
		return nil, err
	}
	out := &ExplainResult{Raw: res}
	_ = json.Unmarshal(res.Body, out)
	return out, nil
}

// MitreTags extracts MITRE ATT&CK technique tags from a case summary via
// POST /mitre_tags. Both the case ID and a prior summary are required
// locally before any request is made.
func (c *Client) MitreTags(ctx context.Context, caseID, summary string) (*TagResult, error) {
	if caseID == "" {
		return nil, fmt.Errorf("mitre tags: %w", ErrMissingCaseID)
	}
	if strings.TrimSpace(summary) == "" {
		return nil, fmt.Errorf("mitre tags: %w", ErrMissingSummary)
	}

	body := struct {
		CaseID  string `json:"case_id"`
		Summary string `json:"summary"`
	}{CaseID: caseID, Summary: summary}

	res, err := c.postJSON(ctx, "/mitre_tags", "mitre tags", body)
	if err != nil {
		return nil, err
	}
	out := &TagResult{Raw: res}
	_ = json.Unmarshal(res.Body, out)
	return out, nil
}
