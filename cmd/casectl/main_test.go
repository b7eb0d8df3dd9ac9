package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"casectl/internal/store"
)

// backend is a recording fake of the case API.
type backend struct {
	mu       sync.Mutex
	calls    int
	lastPath string
	lastBody map[string]any
	srv      *httptest.Server
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ingest", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		fmt.Fprint(w, `{"status":"ok","case_id":"case-7","ingested":1}`)
	})
	mux.HandleFunc("POST /ingest_file", func(w http.ResponseWriter, r *http.Request) {
		b.recordRaw(r)
		fmt.Fprint(w, `{"case_id":"case-7","filename":"bundle.zip","sha256":"abc"}`)
	})
	mux.HandleFunc("POST /search", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		fmt.Fprint(w, `{"results":[{"id":"s1","distance":0.12,"text":"mimikatz run","metadata":{"source":"cli"}}]}`)
	})
	mux.HandleFunc("POST /explain_case", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		fmt.Fprint(w, `{"case_id":"case-7","summary":"Credential dumping followed by lateral movement."}`)
	})
	mux.HandleFunc("POST /mitre_tags", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		fmt.Fprint(w, `{"tags":["T1003","T1021"]}`)
	})
	mux.HandleFunc("GET /cases", func(w http.ResponseWriter, r *http.Request) {
		b.recordRaw(r)
		fmt.Fprint(w, `{"cases":[{"case_id":"case-7","filename":"bundle.zip"}]}`)
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) record(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.lastPath = r.URL.Path
	b.lastBody = nil
	_ = json.NewDecoder(r.Body).Decode(&b.lastBody)
}

func (b *backend) recordRaw(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.lastPath = r.URL.Path
	b.lastBody = nil
}

// newFailingBackend answers every request with HTTP 500.
func newFailingBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.recordRaw(r)
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *backend) body() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastBody
}

// runCLI executes the root command in-process against the given backend,
// with the session DB in dir.
func runCLI(t *testing.T, b *backend, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	full := append([]string{
		"--base-url", b.srv.URL,
		"--db", filepath.Join(dir, "session.db"),
	}, args...)
	var out strings.Builder
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags clears package-level flag state so runs do not bleed into each
// other.
func resetFlags() {
	rootFlags.baseURL = ""
	rootFlags.dbPath = ""
	rootFlags.jsonOut = false
	rootFlags.markdown = false
	ingestFlags.meta = ""
	ingestFlags.caseID = ""
	uploadFlags.force = false
	searchFlags.caseID = ""
	searchFlags.topK = ""
	searchFlags.includeMetadata = true
	explainFlags.caseID = ""
	tagsFlags.caseID = ""
	tagsFlags.summary = ""
	exportFlags.caseID = ""
	exportFlags.out = ""
	exportFlags.clipboard = false
}

func TestIngestThenSearch_CaseCarriesOver(t *testing.T) {
	t.Chdir(t.TempDir())
	b := newBackend(t)
	dir := t.TempDir()

	out, err := runCLI(t, b, dir, "ingest", "suspicious scheduled task")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !strings.Contains(out, "Case: case-7") {
		t.Fatalf("ingest output missing case id:\n%s", out)
	}

	if _, err := runCLI(t, b, dir, "search", "scheduled task"); err != nil {
		t.Fatalf("search: %v", err)
	}
	body := b.body()
	if got := body["case_id"]; got != "case-7" {
		t.Fatalf("search used case %v, want case-7", got)
	}
}

func TestIngest_BadMetadata_NoRequest(t *testing.T) {
	t.Chdir(t.TempDir())
	b := newBackend(t)

	_, err := runCLI(t, b, t.TempDir(), "ingest", "text", "--meta", "{not json")
	if err == nil || !strings.Contains(err.Error(), "not valid JSON") {
		t.Fatalf("want metadata error, got %v", err)
	}
	if n := b.callCount(); n != 0 {
		t.Fatalf("backend received %d calls, want 0", n)
	}
}

func TestSearch_NonNumericTopKDefaultsToFive(t *testing.T) {
	t.Chdir(t.TempDir())
	b := newBackend(t)

	_, err := runCLI(t, b, t.TempDir(), "search", "query", "--case-id", "case-1", "--top-k", "lots")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := b.body()["top_k"]; got != float64(5) {
		t.Fatalf("top_k = %v, want 5", got)
	}
}

func TestSearch_NoCase_NoRequest(t *testing.T) {
	t.Chdir(t.TempDir())
	b := newBackend(t)

	_, err := runCLI(t, b, t.TempDir(), "search", "query")
	if err == nil || !strings.Contains(err.Error(), "no case selected") {
		t.Fatalf("want no-case error, got %v", err)
	}
	if n := b.callCount(); n != 0 {
		t.Fatalf("backend received %d calls, want 0", n)
	}
}

func TestUpload_SkipsDuplicate(t *testing.T) {
	t.Chdir(t.TempDir())
	b := newBackend(t)
	dir := t.TempDir()
	file := writeTestFile(t, dir, "bundle.zip", "evidence bytes")

	if _, err := runCLI(t, b, dir, "upload", file); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	before := b.callCount()

	out, err := runCLI(t, b, dir, "upload", file)
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if !strings.Contains(out, "Skipped") {
		t.Fatalf("want skip notice, got:\n%s", out)
	}
	if n := b.callCount(); n != before {
		t.Fatalf("duplicate upload hit the backend (%d -> %d calls)", before, n)
	}

	if _, err := runCLI(t, b, dir, "upload", file, "--force"); err != nil {
		t.Fatalf("forced upload: %v", err)
	}
	if n := b.callCount(); n != before+1 {
		t.Fatalf("--force did not re-upload (%d -> %d calls)", before, n)
	}
}

func TestExplainThenTags_SummaryCarriesOver(t *testing.T) {
	t.Chdir(t.TempDir())
	b := newBackend(t)
	dir := t.TempDir()

	if _, err := runCLI(t, b, dir, "ingest", "dump of lsass observed"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	out, err := runCLI(t, b, dir, "explain")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if !strings.Contains(out, "Credential dumping") {
		t.Fatalf("explain output missing summary:\n%s", out)
	}

	out, err = runCLI(t, b, dir, "tags")
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	if b.body()["summary"] != "Credential dumping followed by lateral movement." {
		t.Fatalf("tags sent summary %v", b.body()["summary"])
	}
	if !strings.Contains(out, "OS Credential Dumping") {
		t.Fatalf("tags output missing technique name:\n%s", out)
	}
}

func TestTags_NoSummary_NoRequest(t *testing.T) {
	t.Chdir(t.TempDir())
	b := newBackend(t)
	dir := t.TempDir()

	if _, err := runCLI(t, b, dir, "ingest", "something"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	calls := b.callCount()

	_, err := runCLI(t, b, dir, "tags")
	if err == nil || !strings.Contains(err.Error(), "no summary") {
		t.Fatalf("want no-summary error, got %v", err)
	}
	if n := b.callCount(); n != calls {
		t.Fatalf("backend received %d extra calls", n-calls)
	}
}

func TestStatus_ShowsSessionAndHistory(t *testing.T) {
	t.Chdir(t.TempDir())
	b := newBackend(t)
	dir := t.TempDir()

	out, err := runCLI(t, b, dir, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "No current case.") {
		t.Fatalf("empty session not reported:\n%s", out)
	}

	if _, err := runCLI(t, b, dir, "ingest", "first snippet"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	out, err = runCLI(t, b, dir, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Case: case-7") || !strings.Contains(out, "text") {
		t.Fatalf("status missing session or history:\n%s", out)
	}
}

func TestFailedCallLeavesSessionUntouched(t *testing.T) {
	t.Chdir(t.TempDir())
	good := newBackend(t)
	bad := newFailingBackend(t)
	dir := t.TempDir()

	if _, err := runCLI(t, good, dir, "ingest", "first snippet"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := runCLI(t, good, dir, "explain"); err != nil {
		t.Fatalf("explain: %v", err)
	}

	// Backend failures must not touch the session: same current case, same
	// summary, no new history rows.
	if _, err := runCLI(t, bad, dir, "ingest", "second snippet"); err == nil {
		t.Fatal("ingest against failing backend should error")
	} else if !strings.Contains(err.Error(), "HTTP 500") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should render status and body, got: %v", err)
	}
	if _, err := runCLI(t, bad, dir, "explain"); err == nil {
		t.Fatal("explain against failing backend should error")
	}

	st, err := store.Open(filepath.Join(dir, "session.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	sess, err := st.Session()
	if err != nil {
		t.Fatal(err)
	}
	if sess.CurrentCase != "case-7" {
		t.Errorf("current case = %q, want case-7", sess.CurrentCase)
	}
	if sess.SummaryFor("case-7") != "Credential dumping followed by lateral movement." {
		t.Errorf("summary changed: %q", sess.Summary)
	}
	recs, err := st.ListIngests(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Errorf("history = %d records, want 1", len(recs))
	}

	out, err := runCLI(t, good, dir, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Case: case-7") {
		t.Errorf("status lost the case:\n%s", out)
	}
}

func TestExport_TagsFailureIsNonFatal(t *testing.T) {
	t.Chdir(t.TempDir())
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ingest", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		fmt.Fprint(w, `{"case_id":"case-7","ingested":1}`)
	})
	mux.HandleFunc("POST /explain_case", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		fmt.Fprint(w, `{"case_id":"case-7","summary":"Lateral movement via SMB."}`)
	})
	mux.HandleFunc("POST /mitre_tags", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		http.Error(w, `{"error":"model down"}`, http.StatusServiceUnavailable)
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	dir := t.TempDir()

	if _, err := runCLI(t, b, dir, "ingest", "snippet"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := runCLI(t, b, dir, "explain"); err != nil {
		t.Fatalf("explain: %v", err)
	}

	path := filepath.Join(dir, "report.md")
	out, err := runCLI(t, b, dir, "export", "--out", path)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "Tags unavailable") {
		t.Errorf("tag failure not surfaced:\n%s", out)
	}
	data := readTestFile(t, path)
	if !strings.Contains(data, "# Case Report: case-7") || !strings.Contains(data, "Lateral movement") {
		t.Errorf("report incomplete:\n%s", data)
	}
	if strings.Contains(data, "MITRE") {
		t.Errorf("empty technique section should be omitted:\n%s", data)
	}
}

func TestExport_WritesReport(t *testing.T) {
	t.Chdir(t.TempDir())
	b := newBackend(t)
	dir := t.TempDir()

	if _, err := runCLI(t, b, dir, "ingest", "snippet"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := runCLI(t, b, dir, "explain"); err != nil {
		t.Fatalf("explain: %v", err)
	}

	path := filepath.Join(dir, "report.md")
	out, err := runCLI(t, b, dir, "export", "--out", path)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "Report written to "+path) {
		t.Fatalf("export output:\n%s", out)
	}
	data := readTestFile(t, path)
	if !strings.Contains(data, "# Case Report: case-7") || !strings.Contains(data, "OS Credential Dumping") {
		t.Fatalf("report content:\n%s", data)
	}
}
