package console

import "encoding/json"

// DefaultTopK is the number of search hits requested when the caller does
// not say otherwise.
const DefaultTopK = 5

// IngestRequest is the body of POST /ingest. Metadata defaults to
// {"source": "cli"} when nil; CaseID, when set, appends to an existing case
// instead of opening a new one.
type IngestRequest struct {
	Text     string         `json:"text"`
	CaseID   string         `json:"case_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IngestResult is the response of /ingest and /ingest_file. Filename and
// SHA256 are only present for file ingests.
type IngestResult struct {
	Status   string `json:"status,omitempty"`
	CaseID   string `json:"case_id"`
	Ingested int    `json:"ingested,omitempty"`
	Filename string `json:"filename,omitempty"`
	SHA256   string `json:"sha256,omitempty"`

	Raw *Result `json:"-"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	CaseID          string `json:"case_id"`
	Query           string `json:"query"`
	TopK            int    `json:"top_k"`
	IncludeMetadata bool   `json:"include_metadata"`
}

// SearchHit is one semantic-search result. Distance is cosine distance
// (0 = identical).
type SearchHit struct {
	ID       string         `json:"id"`
	Distance float64        `json:"distance"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SearchResult is the response of POST /search.
type SearchResult struct {
	Results []SearchHit `json:"results"`

	Raw *Result `json:"-"`
}

// CaseInfo is one entry in the case listing. Only CaseID is guaranteed;
// the rest is whatever the backend chooses to include.
type CaseInfo struct {
	CaseID    string `json:"case_id"`
	Filename  string `json:"filename,omitempty"`
	SHA256    string `json:"sha256,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CaseList is the response of GET /cases.
type CaseList struct {
	Cases []CaseInfo `json:"cases"`

	Raw *Result `json:"-"`
}

// ExplainResult is the response of POST /explain_case.
type ExplainResult struct {
	CaseID  string `json:"case_id,omitempty"`
	Summary string `json:"summary"`

	Raw *Result `json:"-"`
}

// TagResult is the response of POST /mitre_tags. Tags stays raw: the
// backend may return a list, a mapping, or prose.
type TagResult struct {
	Tags json.RawMessage `json:"tags"`

	Raw *Result `json:"-"`
}

// TagList decodes Tags as a list of technique IDs. Returns nil when the
// tags are not a plain string list.
func (t *TagResult) TagList() []string {
	var tags []string
	if err := json.Unmarshal(t.Tags, &tags); err != nil {
		return nil
	}
	return tags
}
