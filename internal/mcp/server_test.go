package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"casectl/internal/console"
	"casectl/internal/session"
	"casectl/internal/store"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Server {
	t.Helper()
	backend := httptest.NewServer(handler)
	t.Cleanup(backend.Close)
	client, err := console.New(backend.URL, console.WithHTTPClient(backend.Client()))
	if err != nil {
		t.Fatal(err)
	}
	return NewServer(client, session.NewTracker(store.NewMemStore()), "test")
}

func TestIngestThenSearchCarriesCase(t *testing.T) {
	var searched console.SearchRequest
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ingest":
			json.NewEncoder(w).Encode(map[string]any{"case_id": "c-42", "ingested": 1})
		case "/search":
			_ = json.NewDecoder(r.Body).Decode(&searched)
			json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()
	_, out, err := srv.handleIngestText(ctx, nil, ingestTextInput{Text: "evidence log"})
	if err != nil {
		t.Fatalf("ingest_text: %v", err)
	}
	if out.CaseID != "c-42" {
		t.Fatalf("case id = %q", out.CaseID)
	}

	// No explicit case_id: the session's current case is used.
	_, sout, err := srv.handleSearch(ctx, nil, searchInput{Query: "persistence"})
	if err != nil {
		t.Fatalf("search_case: %v", err)
	}
	if sout.CaseID != "c-42" || searched.CaseID != "c-42" {
		t.Errorf("search did not reuse ingested case: %+v / %+v", sout, searched)
	}
	if searched.TopK != console.DefaultTopK {
		t.Errorf("top_k = %d, want %d", searched.TopK, console.DefaultTopK)
	}
}

func TestSearchWithoutCaseFailsLocally(t *testing.T) {
	calls := 0
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	_, _, err := srv.handleSearch(context.Background(), nil, searchInput{Query: "x"})
	if !errors.Is(err, session.ErrNoCase) {
		t.Fatalf("expected ErrNoCase, got: %v", err)
	}
	if calls != 0 {
		t.Errorf("expected zero backend calls, got %d", calls)
	}
}

func TestIngestFileTool(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ingest_file" {
			http.NotFound(w, r)
			return
		}
		_, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"case_id": "c-f", "filename": hdr.Filename, "sha256": "abc"})
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.zip")
	if err := os.WriteFile(path, []byte("zipbytes"), 0644); err != nil {
		t.Fatal(err)
	}

	_, out, err := srv.handleIngestFile(context.Background(), nil, ingestFileInput{Path: path})
	if err != nil {
		t.Fatalf("ingest_file: %v", err)
	}
	if out.CaseID != "c-f" || out.Filename != "bundle.zip" {
		t.Errorf("unexpected output: %+v", out)
	}

	_, st, err := srv.handleStatus(context.Background(), nil, statusInput{})
	if err != nil {
		t.Fatal(err)
	}
	if st.CurrentCase != "c-f" || len(st.History) != 1 {
		t.Errorf("status = %+v", st)
	}
}

func TestExplainFeedsMitreTags(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ingest":
			json.NewEncoder(w).Encode(map[string]any{"case_id": "c-1"})
		case "/explain_case":
			json.NewEncoder(w).Encode(map[string]any{"summary": "mimikatz on host A"})
		case "/mitre_tags":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["summary"] != "mimikatz on host A" {
				t.Errorf("summary not carried: %q", body["summary"])
			}
			json.NewEncoder(w).Encode(map[string]any{"tags": []string{"T1003"}})
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()
	if _, _, err := srv.handleIngestText(ctx, nil, ingestTextInput{Text: "x"}); err != nil {
		t.Fatal(err)
	}

	// Tags before explain: local failure.
	_, _, err := srv.handleMitreTags(ctx, nil, mitreTagsInput{})
	if !errors.Is(err, session.ErrNoSummary) {
		t.Fatalf("expected ErrNoSummary, got: %v", err)
	}

	if _, _, err := srv.handleExplain(ctx, nil, explainInput{}); err != nil {
		t.Fatal(err)
	}

	_, out, err := srv.handleMitreTags(ctx, nil, mitreTagsInput{})
	if err != nil {
		t.Fatalf("mitre_tags: %v", err)
	}
	if !strings.Contains(string(out.Tags), "T1003") {
		t.Errorf("tags = %s", out.Tags)
	}
}

func TestGetCaseWrapsNonJSONDetail(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, out, err := srv.handleGetCase(context.Background(), nil, getCaseInput{CaseID: "c-1"})
	if err != nil {
		t.Fatal(err)
	}
	if string(out.Detail) != `"not json"` {
		t.Errorf("detail = %s", out.Detail)
	}
}

func TestToolErrorsCarryStatus(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusBadGateway)
	})

	_, _, err := srv.handleListCases(context.Background(), nil, listCasesInput{})
	if !console.HasStatusCode(err, http.StatusBadGateway) {
		t.Errorf("expected 502 API error, got: %v", err)
	}
}
