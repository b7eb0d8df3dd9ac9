package store

import "sync"

// MemStore is an in-memory Store for tests and ephemeral sessions.
type MemStore struct {
	mu      sync.Mutex
	session Session
	ingests []*IngestRecord
	nextID  int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{nextID: 1}
}

func (m *MemStore) Session() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.session
	return &sess, nil
}

func (m *MemStore) SetCurrentCase(caseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.CurrentCase = caseID
	m.session.CaseSetAt = nowUTC()
	return nil
}

func (m *MemStore) SetSummary(caseID, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Summary = summary
	m.session.SummaryCase = caseID
	m.session.SummarySetAt = nowUTC()
	return nil
}

func (m *MemStore) RecordIngest(rec *IngestRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.CreatedAt == "" {
		rec.CreatedAt = nowUTC()
	}
	rec.ID = m.nextID
	m.nextID++
	cp := *rec
	m.ingests = append(m.ingests, &cp)
	return rec.ID, nil
}

func (m *MemStore) ListIngests(limit int) ([]*IngestRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*IngestRecord, 0, len(m.ingests))
	for i := len(m.ingests) - 1; i >= 0; i-- {
		cp := *m.ingests[i]
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemStore) HasFileSHA256(sha string) (bool, error) {
	if sha == "" {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.ingests {
		if r.SHA256 == sha {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemStore) Close() error { return nil }
