package artifact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectValidatesBounds(t *testing.T) {
	catalog := DefaultCatalog()

	for _, index := range []int{-1, len(catalog), 99} {
		_, err := Select(catalog, index)

		var selErr *InvalidSelectionError
		require.ErrorAs(t, err, &selErr, "index %d must be rejected", index)
		assert.Equal(t, index, selErr.Choice)
	}

	art, err := Select(catalog, 0)
	require.NoError(t, err)
	assert.Equal(t, catalog[0].ID, art.ID)
}

func TestByID(t *testing.T) {
	catalog := DefaultCatalog()

	art, err := ByID(catalog, "tinyllama-1.1b-q4")
	require.NoError(t, err)
	assert.Equal(t, "tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf", art.Filename)

	_, err = ByID(catalog, "gpt-5")
	require.Error(t, err)
}

func TestFetchInsufficientSpaceStartsNoTransfer(t *testing.T) {
	requested := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	f.diskFree = func(string) (uint64, error) { return 100, nil }

	art := ModelArtifact{ID: "m", URL: srv.URL, Size: 1000, Filename: "m.gguf"}
	dest := t.TempDir()

	_, err := f.Fetch(context.Background(), art, dest, nil)

	var spaceErr *InsufficientSpaceError
	require.ErrorAs(t, err, &spaceErr)
	assert.Equal(t, uint64(100), spaceErr.Available)
	assert.Equal(t, uint64(1000), spaceErr.Required)
	assert.False(t, requested, "no transfer may start when the artifact does not fit")

	entries, readErr := os.ReadDir(dest)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "no partial file may be created")
}

func TestFetchSuccess(t *testing.T) {
	body := []byte("model-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	f.diskFree = func(string) (uint64, error) { return 1 << 30, nil }

	art := ModelArtifact{ID: "m", URL: srv.URL, Size: uint64(len(body)), Filename: "m.gguf"}
	dest := t.TempDir()

	var lastDone, lastTotal uint64
	path, err := f.Fetch(context.Background(), art, dest, func(done, total uint64) {
		lastDone, lastTotal = done, total
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, "m.gguf"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, data)

	assert.Equal(t, uint64(len(body)), lastDone)
	assert.Equal(t, uint64(len(body)), lastTotal)

	_, err = os.Stat(path + ".partial")
	assert.True(t, os.IsNotExist(err), "partial file must be renamed away on success")
}

func TestFetchZeroByteResultIsDownloadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	f.diskFree = func(string) (uint64, error) { return 1 << 30, nil }

	art := ModelArtifact{ID: "m", URL: srv.URL, Size: 10, Filename: "m.gguf"}

	_, err := f.Fetch(context.Background(), art, t.TempDir(), nil)

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
}

func TestFetchResumesPartialFile(t *testing.T) {
	full := []byte("0123456789")
	var gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(full[5:])
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	f.diskFree = func(string) (uint64, error) { return 1 << 30, nil }

	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "m.gguf.partial"), full[:5], 0o644))

	art := ModelArtifact{ID: "m", URL: srv.URL, Size: uint64(len(full)), Filename: "m.gguf"}

	path, err := f.Fetch(context.Background(), art, dest, nil)
	require.NoError(t, err)

	assert.Equal(t, "bytes=5-", gotRange)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, full, data)
}

func TestFetchCompletePartialFinalizesWithoutTransfer(t *testing.T) {
	full := []byte("0123456789")
	requested := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
		http.Error(w, "range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	// Zero free space: nothing remains to download, so the budget check
	// must not demand room for the artifact again.
	f.diskFree = func(string) (uint64, error) { return 0, nil }

	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "m.gguf.partial"), full, 0o644))

	art := ModelArtifact{ID: "m", URL: srv.URL, Size: uint64(len(full)), Filename: "m.gguf"}

	var lastDone, lastTotal uint64
	path, err := f.Fetch(context.Background(), art, dest, func(done, total uint64) {
		lastDone, lastTotal = done, total
	})
	require.NoError(t, err)

	assert.False(t, requested, "a complete partial file needs no transfer")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, full, data)
	assert.Equal(t, uint64(len(full)), lastDone)
	assert.Equal(t, uint64(len(full)), lastTotal)

	_, err = os.Stat(path + ".partial")
	assert.True(t, os.IsNotExist(err))
}

func TestFetchHTTPErrorKeepsPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	f.diskFree = func(string) (uint64, error) { return 1 << 30, nil }

	dest := t.TempDir()
	partial := filepath.Join(dest, "m.gguf.partial")
	require.NoError(t, os.WriteFile(partial, []byte("half"), 0o644))

	art := ModelArtifact{ID: "m", URL: srv.URL, Size: 100, Filename: "m.gguf"}

	_, err := f.Fetch(context.Background(), art, dest, nil)

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)

	data, readErr := os.ReadFile(partial)
	require.NoError(t, readErr, "partial data must be kept for resume")
	assert.Equal(t, "half", string(data))
}
