package console

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ListCases returns the case listing from GET /cases.
func (c *Client) ListCases(ctx context.Context) (*CaseList, error) {
	res, err := c.do(ctx, http.MethodGet, "/cases", "list cases", "", nil)
	if err != nil {
		return nil, err
	}
	out := &CaseList{Raw: res}
	_ = json.Unmarshal(res.Body, out)
	return out, nil
}

// GetCase returns the detail for one case from GET /cases/{id}. The detail
// shape is opaque; callers render the Result directly.
func (c *Client) GetCase(ctx context.Context, caseID string) (*Result, error) {
	if caseID == "" {
		return nil, fmt.Errorf("get case: %w", ErrMissingCaseID)
	}
	return c.do(ctx, http.MethodGet, "/cases/"+url.PathEscape(caseID), "get case", "", nil)
}
