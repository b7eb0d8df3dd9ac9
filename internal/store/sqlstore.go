package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .casectl) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		// Fresh database.
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersionV1); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != schemaVersionV1 {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Close closes the underlying database.
func (s *SqlStore) Close() error { return s.db.Close() }

// Session returns the singleton session row.
func (s *SqlStore) Session() (*Session, error) {
	var sess Session
	err := s.db.QueryRow(
		"SELECT current_case, case_set_at, summary, summary_case, summary_set_at FROM session WHERE id = 1",
	).Scan(&sess.CurrentCase, &sess.CaseSetAt, &sess.Summary, &sess.SummaryCase, &sess.SummarySetAt)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return &sess, nil
}

// SetCurrentCase overwrites the current case identifier.
func (s *SqlStore) SetCurrentCase(caseID string) error {
	_, err := s.db.Exec(
		"UPDATE session SET current_case = ?, case_set_at = ? WHERE id = 1",
		caseID, nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("set current case: %w", err)
	}
	return nil
}

// SetSummary stores the latest summary together with the case it belongs to.
func (s *SqlStore) SetSummary(caseID, summary string) error {
	_, err := s.db.Exec(
		"UPDATE session SET summary = ?, summary_case = ?, summary_set_at = ? WHERE id = 1",
		summary, caseID, nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("set summary: %w", err)
	}
	return nil
}

// RecordIngest appends one successful ingest to the history.
func (s *SqlStore) RecordIngest(rec *IngestRecord) (int64, error) {
	if rec.CreatedAt == "" {
		rec.CreatedAt = nowUTC()
	}
	res, err := s.db.Exec(
		"INSERT INTO ingests (case_id, kind, filename, sha256, created_at) VALUES (?, ?, ?, ?, ?)",
		rec.CaseID, rec.Kind, rec.Filename, rec.SHA256, rec.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("record ingest: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record ingest id: %w", err)
	}
	rec.ID = id
	return id, nil
}

// ListIngests returns the most recent ingests, newest first. limit <= 0
// means no limit.
func (s *SqlStore) ListIngests(limit int) ([]*IngestRecord, error) {
	q := "SELECT id, case_id, kind, filename, sha256, created_at FROM ingests ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list ingests: %w", err)
	}
	defer rows.Close()

	var out []*IngestRecord
	for rows.Next() {
		var rec IngestRecord
		if err := rows.Scan(&rec.ID, &rec.CaseID, &rec.Kind, &rec.Filename, &rec.SHA256, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ingest: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// HasFileSHA256 reports whether a file with this digest was already ingested.
func (s *SqlStore) HasFileSHA256(sha string) (bool, error) {
	if sha == "" {
		return false, nil
	}
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM ingests WHERE sha256 = ?", sha).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup sha256: %w", err)
	}
	return n > 0, nil
}
