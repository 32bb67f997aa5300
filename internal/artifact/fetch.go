package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// InsufficientSpaceError reports that the artifact would not fit at the
// destination. Raised before any transfer starts.
type InsufficientSpaceError struct {
	Available uint64
	Required  uint64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("not enough disk space: %s available, %s required",
		humanize.Bytes(e.Available), humanize.Bytes(e.Required))
}

// DownloadError reports a failed or incomplete transfer. The partial
// file is left on disk so a later attempt can resume; cleanup is the
// caller's decision.
type DownloadError struct {
	Artifact string
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download of %s failed: %v", e.Artifact, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ProgressFunc receives streaming transfer progress. total is the
// expected final size; done includes bytes resumed from a partial file.
type ProgressFunc func(done, total uint64)

// Fetcher downloads catalog artifacts with resume support.
type Fetcher struct {
	client   *http.Client
	diskFree func(path string) (uint64, error)
}

// NewFetcher returns a Fetcher using the given HTTP client, or
// http.DefaultClient when nil.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, diskFree: FreeSpace}
}

// Fetch downloads art into destDir. The transfer goes to
// <Filename>.partial and is renamed into place only after the size
// sanity check passes. An existing partial file is resumed with a Range
// request. progress may be nil.
func (f *Fetcher) Fetch(ctx context.Context, art ModelArtifact, destDir string, progress ProgressFunc) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	free, err := f.diskFree(destDir)
	if err != nil {
		return "", fmt.Errorf("failed to check free space: %w", err)
	}

	final := filepath.Join(destDir, art.Filename)
	partial := final + ".partial"

	var resumeFrom uint64
	if info, err := os.Stat(partial); err == nil {
		resumeFrom = uint64(info.Size())
	}

	// A partial file that already holds the whole artifact means a prior
	// run crashed between transfer and rename. Asking the server for
	// bytes=<size>- would only earn a 416, so go straight to the rename.
	if resumeFrom < art.Size {
		// Budget only what remains to be transferred; a mostly-complete
		// partial file should not fail the space check for its own size.
		remaining := art.Size - resumeFrom
		if free < remaining {
			return "", &InsufficientSpaceError{Available: free, Required: remaining}
		}

		if err := f.transfer(ctx, art, partial, resumeFrom, progress); err != nil {
			return "", &DownloadError{Artifact: art.ID, Err: err}
		}
	} else if progress != nil {
		progress(resumeFrom, art.Size)
	}

	info, err := os.Stat(partial)
	if err != nil || info.Size() == 0 {
		return "", &DownloadError{Artifact: art.ID, Err: fmt.Errorf("transfer produced no data")}
	}

	if err := os.Rename(partial, final); err != nil {
		return "", &DownloadError{Artifact: art.ID, Err: err}
	}
	return final, nil
}

// transfer streams the artifact body into the partial file, appending
// when resuming.
func (f *Fetcher) transfer(ctx context.Context, art ModelArtifact, partial string, resumeFrom uint64, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, art.URL, nil)
	if err != nil {
		return err
	}
	if resumeFrom > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeFrom))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	flags := os.O_CREATE | os.O_WRONLY
	switch resp.StatusCode {
	case http.StatusPartialContent:
		flags |= os.O_APPEND
	case http.StatusOK:
		// Server ignored the Range header; start over.
		flags |= os.O_TRUNC
		resumeFrom = 0
	default:
		return fmt.Errorf("unexpected HTTP status %s", resp.Status)
	}

	out, err := os.OpenFile(partial, flags, 0o644) // #nosec G304
	if err != nil {
		return err
	}

	done := resumeFrom
	buf := make([]byte, 1<<20)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				_ = out.Close()
				return writeErr
			}
			done += uint64(n)
			if progress != nil {
				progress(done, art.Size)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = out.Close()
			return readErr
		}
	}
	return out.Close()
}
