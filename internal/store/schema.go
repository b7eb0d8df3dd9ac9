package store

// schemaVersionV1 is the first and current schema generation.
const schemaVersionV1 = 1

const schemaV1 = `
CREATE TABLE schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE session (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	current_case TEXT NOT NULL DEFAULT '',
	case_set_at TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	summary_case TEXT NOT NULL DEFAULT '',
	summary_set_at TEXT NOT NULL DEFAULT ''
);

INSERT INTO session (id) VALUES (1);

CREATE TABLE ingests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	case_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	filename TEXT NOT NULL DEFAULT '',
	sha256 TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE INDEX idx_ingests_sha256 ON ingests (sha256);
CREATE INDEX idx_ingests_case ON ingests (case_id);
`
