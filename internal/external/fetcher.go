// Package external provides narrow interfaces for getting source video in
// and finished clips out, with minimal concrete implementations for local
// files, plain HTTP, and Google Cloud Storage.
package external

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/clipforge/engine/internal/clipperr"
)

// Fetcher retrieves a source video to a local path the rest of the
// pipeline can operate on with ffmpeg/ffprobe.
type Fetcher interface {
	// Fetch retrieves source and returns the local filesystem path of the
	// downloaded (or already-local) file.
	Fetch(ctx context.Context, source string) (string, error)
}

// LocalFileFetcher passes through a path that already exists on disk.
type LocalFileFetcher struct{}

// NewLocalFileFetcher returns a LocalFileFetcher.
func NewLocalFileFetcher() *LocalFileFetcher { return &LocalFileFetcher{} }

// Fetch validates that source exists locally and returns it unchanged.
func (f *LocalFileFetcher) Fetch(ctx context.Context, source string) (string, error) {
	if _, err := os.Stat(source); err != nil {
		return "", &clipperr.SourceUnavailable{Source: source, Cause: err}
	}
	return source, nil
}

// HTTPFetcher downloads a remote URL to a local temp directory.
type HTTPFetcher struct {
	client  *http.Client
	tempDir string
}

// NewHTTPFetcher returns an HTTPFetcher that writes downloads under tempDir.
func NewHTTPFetcher(tempDir string) *HTTPFetcher {
	return &HTTPFetcher{
		client:  &http.Client{Timeout: 10 * time.Minute},
		tempDir: tempDir,
	}
}

// Fetch downloads source (an http:// or https:// URL) to tempDir and
// returns the local path.
func (f *HTTPFetcher) Fetch(ctx context.Context, source string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", &clipperr.SourceUnavailable{Source: source, Cause: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &clipperr.SourceUnavailable{Source: source, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &clipperr.SourceUnavailable{Source: source, Cause: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if err := os.MkdirAll(f.tempDir, 0o755); err != nil {
		return "", &clipperr.SourceUnavailable{Source: source, Cause: err}
	}

	destPath := filepath.Join(f.tempDir, filepath.Base(source))
	out, err := os.Create(destPath)
	if err != nil {
		return "", &clipperr.SourceUnavailable{Source: source, Cause: err}
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", &clipperr.SourceUnavailable{Source: source, Cause: err}
	}

	return destPath, nil
}
