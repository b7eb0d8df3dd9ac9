package console

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Search runs a semantic search within a case via POST /search. A case ID
// and a non-empty query are required locally; TopK values below 1 are
// replaced with DefaultTopK before the request goes out.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if req.CaseID == "" {
		return nil, fmt.Errorf("search: %w", ErrMissingCaseID)
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("search: %w", ErrEmptyQuery)
	}
	if req.TopK < 1 {
		req.TopK = DefaultTopK
	}

	res, err := c.postJSON(ctx, "/search", "search", req)
	if err != nil {
		return nil, err
	}
	out := &SearchResult{Raw: res}
	_ = json.Unmarshal(res.Body, out)
	return out, nil
}
