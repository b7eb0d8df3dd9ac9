package store

// DefaultDBPath is the default relative path for the SQLite DB
// (per-workspace). Open() creates the parent dir (e.g. .casectl).
const DefaultDBPath = ".casectl/casectl.db"

// Session is the persisted console session: the current case identifier and
// the last summary the backend produced. At most one current case exists at
// a time; each successful ingest overwrites it. SummaryCase records which
// case the summary belongs to, so a stale summary never feeds tag
// extraction for a different case.
type Session struct {
	CurrentCase  string
	CaseSetAt    string
	Summary      string
	SummaryCase  string
	SummarySetAt string
}

// SummaryFor returns the stored summary if it belongs to caseID, else "".
func (s *Session) SummaryFor(caseID string) string {
	if s.SummaryCase == caseID {
		return s.Summary
	}
	return ""
}

// IngestRecord is one successful ingest, kept for history display and
// client-side dedup of re-uploaded files.
type IngestRecord struct {
	ID        int64
	CaseID    string
	Kind      string // "text" or "file"
	Filename  string
	SHA256    string
	CreatedAt string
}

// Store is the persistence facade for session state and ingest history.
// CLI and MCP server use only this interface; implementation is SQLite or
// in-memory.
type Store interface {
	Session() (*Session, error)
	SetCurrentCase(caseID string) error
	SetSummary(caseID, summary string) error

	RecordIngest(rec *IngestRecord) (int64, error)
	ListIngests(limit int) ([]*IngestRecord, error)
	HasFileSHA256(sha string) (bool, error)

	Close() error
}
