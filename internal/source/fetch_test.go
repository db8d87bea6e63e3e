package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/g5becks/apidoc/internal/config"
	"github.com/g5becks/apidoc/internal/lockfile"
	"github.com/g5becks/apidoc/internal/source"
)

const pageContent = "# class: Page\n\n- since: v1.0\n"

func newRemoteServer(t *testing.T, etag string, hits *atomic.Int64) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("ETag", etag)
		_, _ = w.Write([]byte(pageContent))
	}))
	t.Cleanup(server.Close)

	return server
}

func fetchConfig(t *testing.T, url string) *config.Config {
	t.Helper()

	return &config.Config{
		Docs:      "docs",
		ConfigDir: t.TempDir(),
		Remotes: map[string]config.Remote{
			"page": {URL: url + "/api/page.md"},
		},
	}
}

func TestFetchRemotesDownloadsAndRecordsLock(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	server := newRemoteServer(t, `"v1"`, &hits)
	cfg := fetchConfig(t, server.URL)

	var results []source.FetchResult
	err := source.FetchRemotes(context.Background(), cfg, source.FetchOptions{
		OnResult: func(r source.FetchResult) { results = append(results, r) },
	})
	if err != nil {
		t.Fatalf("FetchRemotes() error = %v", err)
	}

	if len(results) != 1 || !results[0].Updated {
		t.Fatalf("results = %+v, want one updated fetch", results)
	}

	// Filename falls back to the URL path basename.
	content, err := os.ReadFile(filepath.Join(cfg.DocsDir(), "page.md"))
	if err != nil {
		t.Fatalf("reading fetched file: %v", err)
	}
	if string(content) != pageContent {
		t.Errorf("fetched content = %q", content)
	}

	lock, err := lockfile.Load(cfg.DocsDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	entry := lock.GetEntry("page")
	if entry == nil {
		t.Fatal("lock entry not recorded")
	}
	if entry.ETag != `"v1"` {
		t.Errorf("ETag = %q, want %q", entry.ETag, `"v1"`)
	}
}

func TestFetchRemotesUsesConditionalRequests(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	server := newRemoteServer(t, `"v1"`, &hits)
	cfg := fetchConfig(t, server.URL)

	if err := source.FetchRemotes(context.Background(), cfg, source.FetchOptions{}); err != nil {
		t.Fatalf("first fetch error = %v", err)
	}

	var second source.FetchResult
	err := source.FetchRemotes(context.Background(), cfg, source.FetchOptions{
		OnResult: func(r source.FetchResult) { second = r },
	})
	if err != nil {
		t.Fatalf("second fetch error = %v", err)
	}

	if !second.NotModified {
		t.Errorf("second fetch = %+v, want not-modified", second)
	}

	// The not-modified entry keeps the previous validators.
	lock, err := lockfile.Load(cfg.DocsDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if entry := lock.GetEntry("page"); entry == nil || entry.ETag != `"v1"` {
		t.Errorf("lock entry = %+v, want preserved etag", entry)
	}
}

func TestFetchRemotesForceRefetches(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	server := newRemoteServer(t, `"v1"`, &hits)
	cfg := fetchConfig(t, server.URL)

	if err := source.FetchRemotes(context.Background(), cfg, source.FetchOptions{}); err != nil {
		t.Fatalf("first fetch error = %v", err)
	}

	var second source.FetchResult
	err := source.FetchRemotes(context.Background(), cfg, source.FetchOptions{
		Force:    true,
		OnResult: func(r source.FetchResult) { second = r },
	})
	if err != nil {
		t.Fatalf("forced fetch error = %v", err)
	}

	if !second.Updated {
		t.Errorf("forced fetch = %+v, want updated", second)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
}

func TestFetchRemotesServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	cfg := fetchConfig(t, server.URL)

	if err := source.FetchRemotes(context.Background(), cfg, source.FetchOptions{}); err == nil {
		t.Fatal("FetchRemotes() error = nil, want non-success status failure")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "page.md")

	if err := source.WriteFileAtomic(path, []byte("first")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if err := source.WriteFileAtomic(path, []byte("second")); err != nil {
		t.Fatalf("WriteFileAtomic() overwrite error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(content) != "second" {
		t.Errorf("content = %q, want %q", content, "second")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dir entries = %d, want only the destination file", len(entries))
	}
}

func TestFetchRemotesNoRemotesIsNoop(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Docs: "docs", ConfigDir: t.TempDir()}

	if err := source.FetchRemotes(context.Background(), cfg, source.FetchOptions{}); err != nil {
		t.Fatalf("FetchRemotes() error = %v", err)
	}
	if _, err := os.Stat(cfg.DocsDir()); !os.IsNotExist(err) {
		t.Errorf("docs dir should not be created when no remotes configured")
	}
}
