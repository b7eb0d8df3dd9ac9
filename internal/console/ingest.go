package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// IngestText submits a plain text snippet for indexing via POST /ingest.
// Empty text fails locally with ErrEmptyText; no request is made. A nil
// metadata map is sent as {"source": "cli"}.
func (c *Client) IngestText(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("ingest text: %w", ErrEmptyText)
	}
	if req.Metadata == nil {
		req.Metadata = map[string]any{"source": "cli"}
	}

	res, err := c.postJSON(ctx, "/ingest", "ingest text", req)
	if err != nil {
		return nil, err
	}
	out := &IngestResult{Raw: res}
	// Typed fields are best-effort; the response shape is not validated.
	_ = json.Unmarshal(res.Body, out)
	return out, nil
}

// IngestFile uploads a file via POST /ingest_file as a multipart body with
// the file under field name "file". The multipart writer supplies the
// Content-Type so the boundary is preserved.
func (c *Client) IngestFile(ctx context.Context, filename string, r io.Reader) (*IngestResult, error) {
	if filename == "" {
		return nil, fmt.Errorf("ingest file: filename is required")
	}

	var buf strings.Builder
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("ingest file: build multipart: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("ingest file: read %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("ingest file: finalize multipart: %w", err)
	}

	res, err := c.do(ctx, http.MethodPost, "/ingest_file", "ingest file", w.FormDataContentType(), strings.NewReader(buf.String()))
	if err != nil {
		return nil, err
	}
	out := &IngestResult{Raw: res}
	_ = json.Unmarshal(res.Body, out)
	return out, nil
}

// IngestFilePath uploads the file at path via IngestFile.
func (c *Client) IngestFilePath(ctx context.Context, path string) (*IngestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest file: %w", err)
	}
	defer f.Close()
	return c.IngestFile(ctx, filepath.Base(path), f)
}
