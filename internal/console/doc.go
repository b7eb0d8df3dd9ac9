// Package console is the typed HTTP client for the DFIR case console API:
// text and file ingest, per-case semantic search, case listing, summary
// generation, and MITRE tag extraction.
//
// Responses are decoded as JSON when possible and carried as raw text when
// not; shapes are never validated. Error statuses surface as *APIError with
// the status code and response body. Preconditions (empty text or query,
// missing case ID or summary) fail locally before any request is issued.
package console
