package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client is a high-level client for the DFIR case console API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
	apiKey     string
}

// New creates a new Client for the given console backend.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("console: baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	cfg := &clientConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.apiKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithTimeout sets a timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		cfg.timeout = d
		return nil
	}
}

// WithAPIKey sets a bearer token sent as an Authorization header on every request.
func WithAPIKey(key string) Option {
	return func(cfg *clientConfig) error {
		cfg.apiKey = key
		return nil
	}
}

// BaseURL returns the normalized backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Result is the outcome of one API call. Body is the full response body;
// Value is the JSON-decoded body, or the raw body text when the body does
// not decode. The response shape is never validated beyond that.
type Result struct {
	Status int
	Body   []byte
	Value  any
}

// Pretty renders the result for a human: indented JSON for structured
// values, the raw text otherwise.
func (r *Result) Pretty() string {
	if s, ok := r.Value.(string); ok {
		return s
	}
	out, err := json.MarshalIndent(r.Value, "", "  ")
	if err != nil {
		return string(r.Body)
	}
	return string(out)
}

// decodeValue sets r.Value from r.Body: decoded JSON, or the raw text.
func (r *Result) decodeValue() {
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		r.Value = string(r.Body)
		return
	}
	r.Value = v
}

// do executes one HTTP request against the backend. contentType is set
// verbatim when non-empty; multipart callers pass the writer's own content
// type so the boundary survives. Error statuses return an *APIError carrying
// the status code and the decoded-or-raw body.
func (c *Client) do(ctx context.Context, method, path, operation, contentType string, body io.Reader) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", operation, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.InfoContext(ctx, "API request", "operation", operation, "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", operation, err)
	}

	c.logger.DebugContext(ctx, "API response", "operation", operation, "status", resp.StatusCode, "bytes", len(raw))

	res := &Result{Status: resp.StatusCode, Body: raw}
	res.decodeValue()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := strings.TrimSpace(string(raw))
		if body == "" {
			body = resp.Status
		}
		return nil, newAPIError(operation, resp.StatusCode, body, res.Value)
	}
	return res, nil
}

// postJSON marshals v and POSTs it to path.
func (c *Client) postJSON(ctx context.Context, path, operation string, v any) (*Result, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", operation, err)
	}
	return c.do(ctx, http.MethodPost, path, operation, "application/json", bytes.NewReader(payload))
}

// ReadAPIKey reads the first line of a key file (e.g. .casectl/api-key) and
// returns it trimmed.
func ReadAPIKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(strings.Split(string(data), "\n")[0])
	return line, nil
}
