package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"casectl/internal/console"
	"casectl/internal/session"
)

// Outcome classifies what happened to one file during a sweep.
type Outcome string

const (
	Uploaded Outcome = "uploaded"
	Skipped  Outcome = "skipped" // digest already in the local history
	Failed   Outcome = "failed"
)

// FileResult is the per-file record of a bulk sweep.
type FileResult struct {
	Path    string
	Outcome Outcome
	CaseID  string
	SHA256  string
	Err     error
}

// Report aggregates a bulk sweep.
type Report struct {
	mu    sync.Mutex
	Files []FileResult
}

func (r *Report) add(fr FileResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Files = append(r.Files, fr)
}

// Count returns how many files ended in the given outcome.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, f := range r.Files {
		if f.Outcome == o {
			n++
		}
	}
	return n
}

// Bulk uploads every regular file under a directory.
type Bulk struct {
	Client  *console.Client
	Tracker *session.Tracker
	Jobs    int // concurrent uploads; values below 1 mean serial
	Logger  *slog.Logger
}

// Dir sweeps dir recursively and uploads each regular file, bounded by Jobs
// concurrent requests. Hidden files and directories (dot-prefixed) are
// ignored. Individual failures are recorded, not fatal; the error return is
// reserved for walking dir itself or context cancellation.
func (b *Bulk) Dir(ctx context.Context, dir string) (*Report, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	report := &Report{}
	g, gctx := errgroup.WithContext(ctx)
	jobs := b.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for _, path := range paths {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			report.add(b.one(gctx, logger, path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

// one uploads a single file, honoring the dedup history.
func (b *Bulk) one(ctx context.Context, logger *slog.Logger, path string) FileResult {
	sha, err := FileSHA256(path)
	if err != nil {
		return FileResult{Path: path, Outcome: Failed, Err: err}
	}

	seen, err := b.Tracker.SeenFile(sha)
	if err != nil {
		return FileResult{Path: path, Outcome: Failed, SHA256: sha, Err: err}
	}
	if seen {
		logger.Debug("skipping duplicate", "path", path, "sha256", sha)
		return FileResult{Path: path, Outcome: Skipped, SHA256: sha}
	}

	res, err := b.Client.IngestFilePath(ctx, path)
	if err != nil {
		return FileResult{Path: path, Outcome: Failed, SHA256: sha, Err: err}
	}
	if err := b.Tracker.CaseIngested(res.CaseID, "file", filepath.Base(path), sha); err != nil {
		return FileResult{Path: path, Outcome: Failed, CaseID: res.CaseID, SHA256: sha, Err: err}
	}
	logger.Info("ingested file", "path", path, "case_id", res.CaseID)
	return FileResult{Path: path, Outcome: Uploaded, CaseID: res.CaseID, SHA256: sha}
}
