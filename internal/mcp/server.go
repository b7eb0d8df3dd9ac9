// Package mcp exposes the console operations as MCP tools over stdio, so an
// agent can drive ingest, search, and explain flows against the backend. The
// server shares the CLI's session semantics: ingest sets the current case,
// and operations missing a case or summary fail before any request.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"casectl/internal/console"
	"casectl/internal/session"
)

// Server wraps the MCP SDK server around one console client and session.
type Server struct {
	MCPServer *sdkmcp.Server
	// InstanceID identifies this server process; clients use it to notice
	// restarts (and therefore possible session resets).
	InstanceID string

	client  *console.Client
	tracker *session.Tracker
}

// NewServer creates an MCP server exposing the console tools.
func NewServer(client *console.Client, tracker *session.Tracker, version string) *Server {
	s := &Server{
		InstanceID: uuid.NewString(),
		client:     client,
		tracker:    tracker,
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "casectl", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP over stdio until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "ingest_text",
		Description: "Ingest a text snippet into a case. Returns the case ID, which becomes the current case.",
	}, s.handleIngestText)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "ingest_file",
		Description: "Upload a local file (e.g. a forensic bundle) for extraction and indexing. Returns the case ID, which becomes the current case.",
	}, s.handleIngestFile)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "search_case",
		Description: "Semantic search within a case. Uses the current case when case_id is omitted.",
	}, s.handleSearch)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_cases",
		Description: "List all cases known to the backend.",
	}, s.handleListCases)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_case",
		Description: "Fetch the detail record for one case.",
	}, s.handleGetCase)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "explain_case",
		Description: "Generate a natural-language summary of a case. The summary is remembered for mitre_tags.",
	}, s.handleExplain)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "mitre_tags",
		Description: "Extract MITRE ATT&CK technique tags from a case summary. Requires a prior explain_case or an explicit summary.",
	}, s.handleMitreTags)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "session_status",
		Description: "Show the current case, stored summary state, and recent ingest history.",
	}, s.handleStatus)
}

// --- Tool input/output types ---

type ingestTextInput struct {
	Text     string         `json:"text" jsonschema:"text snippet to index"`
	CaseID   string         `json:"case_id,omitempty" jsonschema:"append to this case instead of opening a new one"`
	Metadata map[string]any `json:"metadata,omitempty" jsonschema:"optional metadata stored with the snippet"`
}

type ingestTextOutput struct {
	CaseID   string `json:"case_id"`
	Ingested int    `json:"ingested"`
}

type ingestFileInput struct {
	Path string `json:"path" jsonschema:"local path of the file to upload"`
}

type ingestFileOutput struct {
	CaseID   string `json:"case_id"`
	Filename string `json:"filename,omitempty"`
	SHA256   string `json:"sha256,omitempty"`
}

type searchInput struct {
	Query           string `json:"query" jsonschema:"natural-language search query"`
	CaseID          string `json:"case_id,omitempty" jsonschema:"case to search; defaults to the current case"`
	TopK            int    `json:"top_k,omitempty" jsonschema:"number of results (default 5)"`
	IncludeMetadata bool   `json:"include_metadata,omitempty" jsonschema:"include per-hit metadata"`
}

type searchOutput struct {
	CaseID  string              `json:"case_id"`
	Results []console.SearchHit `json:"results"`
}

type listCasesInput struct{}

type listCasesOutput struct {
	Cases []console.CaseInfo `json:"cases"`
}

type getCaseInput struct {
	CaseID string `json:"case_id,omitempty" jsonschema:"case to fetch; defaults to the current case"`
}

type getCaseOutput struct {
	Detail json.RawMessage `json:"detail"`
}

type explainInput struct {
	CaseID string `json:"case_id,omitempty" jsonschema:"case to summarize; defaults to the current case"`
}

type explainOutput struct {
	CaseID  string `json:"case_id"`
	Summary string `json:"summary"`
}

type mitreTagsInput struct {
	CaseID  string `json:"case_id,omitempty" jsonschema:"case to tag; defaults to the current case"`
	Summary string `json:"summary,omitempty" jsonschema:"summary to extract from; defaults to the stored one"`
}

type mitreTagsOutput struct {
	CaseID string          `json:"case_id"`
	Tags   json.RawMessage `json:"tags"`
}

type statusInput struct{}

type statusOutput struct {
	InstanceID  string         `json:"instance_id"`
	BaseURL     string         `json:"base_url"`
	CurrentCase string         `json:"current_case,omitempty"`
	HasSummary  bool           `json:"has_summary"`
	History     []statusIngest `json:"history,omitempty"`
}

type statusIngest struct {
	CaseID    string `json:"case_id"`
	Kind      string `json:"kind"`
	Filename  string `json:"filename,omitempty"`
	CreatedAt string `json:"created_at"`
}

// --- Tool handlers ---

func (s *Server) handleIngestText(ctx context.Context, _ *sdkmcp.CallToolRequest, input ingestTextInput) (*sdkmcp.CallToolResult, ingestTextOutput, error) {
	res, err := s.client.IngestText(ctx, console.IngestRequest{
		Text:     input.Text,
		CaseID:   input.CaseID,
		Metadata: input.Metadata,
	})
	if err != nil {
		return nil, ingestTextOutput{}, err
	}
	if err := s.tracker.CaseIngested(res.CaseID, "text", "", ""); err != nil {
		return nil, ingestTextOutput{}, fmt.Errorf("record ingest: %w", err)
	}
	return nil, ingestTextOutput{CaseID: res.CaseID, Ingested: res.Ingested}, nil
}

func (s *Server) handleIngestFile(ctx context.Context, _ *sdkmcp.CallToolRequest, input ingestFileInput) (*sdkmcp.CallToolResult, ingestFileOutput, error) {
	if input.Path == "" {
		return nil, ingestFileOutput{}, errors.New("path is required")
	}
	res, err := s.client.IngestFilePath(ctx, input.Path)
	if err != nil {
		return nil, ingestFileOutput{}, err
	}
	if err := s.tracker.CaseIngested(res.CaseID, "file", res.Filename, res.SHA256); err != nil {
		return nil, ingestFileOutput{}, fmt.Errorf("record ingest: %w", err)
	}
	return nil, ingestFileOutput{CaseID: res.CaseID, Filename: res.Filename, SHA256: res.SHA256}, nil
}

func (s *Server) handleSearch(ctx context.Context, _ *sdkmcp.CallToolRequest, input searchInput) (*sdkmcp.CallToolResult, searchOutput, error) {
	caseID, err := s.tracker.ResolveCase(input.CaseID)
	if err != nil {
		return nil, searchOutput{}, err
	}
	res, err := s.client.Search(ctx, console.SearchRequest{
		CaseID:          caseID,
		Query:           input.Query,
		TopK:            input.TopK,
		IncludeMetadata: input.IncludeMetadata,
	})
	if err != nil {
		return nil, searchOutput{}, err
	}
	return nil, searchOutput{CaseID: caseID, Results: res.Results}, nil
}

func (s *Server) handleListCases(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listCasesInput) (*sdkmcp.CallToolResult, listCasesOutput, error) {
	list, err := s.client.ListCases(ctx)
	if err != nil {
		return nil, listCasesOutput{}, err
	}
	return nil, listCasesOutput{Cases: list.Cases}, nil
}

func (s *Server) handleGetCase(ctx context.Context, _ *sdkmcp.CallToolRequest, input getCaseInput) (*sdkmcp.CallToolResult, getCaseOutput, error) {
	caseID, err := s.tracker.ResolveCase(input.CaseID)
	if err != nil {
		return nil, getCaseOutput{}, err
	}
	res, err := s.client.GetCase(ctx, caseID)
	if err != nil {
		return nil, getCaseOutput{}, err
	}
	detail := json.RawMessage(res.Body)
	if !json.Valid(detail) {
		detail, _ = json.Marshal(string(res.Body))
	}
	return nil, getCaseOutput{Detail: detail}, nil
}

func (s *Server) handleExplain(ctx context.Context, _ *sdkmcp.CallToolRequest, input explainInput) (*sdkmcp.CallToolResult, explainOutput, error) {
	caseID, err := s.tracker.ResolveCase(input.CaseID)
	if err != nil {
		return nil, explainOutput{}, err
	}
	res, err := s.client.Explain(ctx, caseID)
	if err != nil {
		return nil, explainOutput{}, err
	}
	if err := s.tracker.SummaryProduced(caseID, res.Summary); err != nil {
		return nil, explainOutput{}, fmt.Errorf("record summary: %w", err)
	}
	summary := res.Summary
	if summary == "" {
		summary = res.Raw.Pretty()
	}
	return nil, explainOutput{CaseID: caseID, Summary: summary}, nil
}

func (s *Server) handleMitreTags(ctx context.Context, _ *sdkmcp.CallToolRequest, input mitreTagsInput) (*sdkmcp.CallToolResult, mitreTagsOutput, error) {
	caseID, err := s.tracker.ResolveCase(input.CaseID)
	if err != nil {
		return nil, mitreTagsOutput{}, err
	}
	summary, err := s.tracker.ResolveSummary(caseID, input.Summary)
	if err != nil {
		return nil, mitreTagsOutput{}, err
	}
	res, err := s.client.MitreTags(ctx, caseID, summary)
	if err != nil {
		return nil, mitreTagsOutput{}, err
	}
	return nil, mitreTagsOutput{CaseID: caseID, Tags: res.Tags}, nil
}

func (s *Server) handleStatus(_ context.Context, _ *sdkmcp.CallToolRequest, _ statusInput) (*sdkmcp.CallToolResult, statusOutput, error) {
	sess, err := s.tracker.Current()
	if err != nil {
		return nil, statusOutput{}, err
	}
	out := statusOutput{
		InstanceID:  s.InstanceID,
		BaseURL:     s.client.BaseURL(),
		CurrentCase: sess.CurrentCase,
		HasSummary:  sess.SummaryFor(sess.CurrentCase) != "",
	}
	recs, err := s.tracker.History(10)
	if err != nil {
		return nil, statusOutput{}, err
	}
	for _, r := range recs {
		out.History = append(out.History, statusIngest{
			CaseID:    r.CaseID,
			Kind:      r.Kind,
			Filename:  r.Filename,
			CreatedAt: r.CreatedAt,
		})
	}
	return nil, out, nil
}
