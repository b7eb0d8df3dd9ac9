// Package session tracks the console session: which case is current and
// what the backend last said about it. The state is an explicit value passed
// to commands, never a package global, and precondition failures are typed
// errors raised before any network call.
package session

import (
	"errors"
	"fmt"
	"strings"

	"casectl/internal/store"
)

var (
	// ErrNoCase means no case is selected: nothing was ingested yet and the
	// caller did not name a case explicitly.
	ErrNoCase = errors.New("no case selected: ingest something first or pass --case-id")
	// ErrNoSummary means tag extraction was requested before a summary
	// exists for the current case.
	ErrNoSummary = errors.New("no summary for this case: run explain first or pass --summary")
)

// Tracker resolves and mutates session state on top of a Store.
type Tracker struct {
	store store.Store
}

// NewTracker returns a Tracker over st.
func NewTracker(st store.Store) *Tracker {
	return &Tracker{store: st}
}

// ResolveCase returns the case to operate on: an explicit value wins, else
// the session's current case, else ErrNoCase.
func (t *Tracker) ResolveCase(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	sess, err := t.store.Session()
	if err != nil {
		return "", fmt.Errorf("resolve case: %w", err)
	}
	if sess.CurrentCase == "" {
		return "", ErrNoCase
	}
	return sess.CurrentCase, nil
}

// ResolveSummary returns the summary to feed tag extraction for caseID: an
// explicit value wins, else the stored summary belonging to that case, else
// ErrNoSummary.
func (t *Tracker) ResolveSummary(caseID, explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}
	sess, err := t.store.Session()
	if err != nil {
		return "", fmt.Errorf("resolve summary: %w", err)
	}
	if s := sess.SummaryFor(caseID); s != "" {
		return s, nil
	}
	return "", ErrNoSummary
}

// CaseIngested records a successful ingest and makes caseID the current
// case. An empty caseID (backend chose not to return one) leaves the
// session untouched.
func (t *Tracker) CaseIngested(caseID, kind, filename, sha string) error {
	if caseID == "" {
		return nil
	}
	if _, err := t.store.RecordIngest(&store.IngestRecord{
		CaseID:   caseID,
		Kind:     kind,
		Filename: filename,
		SHA256:   sha,
	}); err != nil {
		return err
	}
	return t.store.SetCurrentCase(caseID)
}

// SummaryProduced stores the summary the backend generated for caseID.
func (t *Tracker) SummaryProduced(caseID, summary string) error {
	if summary == "" {
		return nil
	}
	return t.store.SetSummary(caseID, summary)
}

// Current returns the session snapshot.
func (t *Tracker) Current() (*store.Session, error) {
	return t.store.Session()
}

// History returns the most recent ingests, newest first.
func (t *Tracker) History(limit int) ([]*store.IngestRecord, error) {
	return t.store.ListIngests(limit)
}

// SeenFile reports whether a file with this digest was already ingested.
func (t *Tracker) SeenFile(sha string) (bool, error) {
	return t.store.HasFileSHA256(sha)
}
