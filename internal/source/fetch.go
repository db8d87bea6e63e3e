package source

import (
	"context"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	stdsync "sync"
	"time"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"

	"github.com/g5becks/apidoc/internal/config"
	"github.com/g5becks/apidoc/internal/lockfile"
)

// FetchResult reports the outcome of one remote fetch.
type FetchResult struct {
	Name        string
	Path        string
	Updated     bool
	NotModified bool
}

// FetchOptions tunes FetchRemotes.
type FetchOptions struct {
	Force       bool // skip conditional headers and refetch everything
	MaxParallel int
	OnResult    func(FetchResult) // called as each remote completes; may be nil
}

// FetchRemotes downloads every configured remote grammar file into the docs
// directory, using ETag/Last-Modified state from the lock file to avoid
// refetching unchanged sources.
func FetchRemotes(ctx context.Context, cfg *config.Config, opts FetchOptions) error {
	if len(cfg.Remotes) == 0 {
		return nil
	}

	docsDir := cfg.DocsDir()

	lock, err := lockfile.Load(docsDir)
	if err != nil {
		return err
	}

	maxParallel := opts.MaxParallel
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallel
	}

	names := make([]string, 0, len(cfg.Remotes))
	for name := range cfg.Remotes {
		names = append(names, name)
	}
	slices.Sort(names)

	client := resty.New()
	defer func() {
		_ = client.Close()
	}()

	var lockMu stdsync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallel)

	for _, name := range names {
		remote := cfg.Remotes[name]

		group.Go(func() error {
			result, entry, fetchErr := fetchOne(groupCtx, client, name, remote, docsDir, lock.GetEntry(name), opts.Force)
			if fetchErr != nil {
				return fetchErr
			}

			lockMu.Lock()
			lock.SetEntry(name, entry)
			lockMu.Unlock()

			if opts.OnResult != nil {
				opts.OnResult(result)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	return lock.Save(docsDir)
}

func fetchOne(
	ctx context.Context,
	client *resty.Client,
	name string,
	remote config.Remote,
	docsDir string,
	prev *lockfile.LockEntry,
	force bool,
) (FetchResult, *lockfile.LockEntry, error) {
	filename := remote.Filename
	if filename == "" {
		filename = filenameFromURL(name, remote.URL)
	}
	filePath := filepath.Join(docsDir, filename)

	request := client.R().SetContext(ctx)
	if !force && prev != nil {
		if prev.ETag != "" {
			request.SetHeader("If-None-Match", prev.ETag)
		}
		if prev.LastMod != "" {
			request.SetHeader("If-Modified-Since", prev.LastMod)
		}
	}

	response, err := request.Get(remote.URL)
	if err != nil {
		return FetchResult{}, nil, oops.
			Code("DOWNLOAD_FAILED").
			With("remote", name).
			With("url", remote.URL).
			Wrapf(err, "downloading remote grammar source")
	}

	if response.StatusCode() == http.StatusNotModified {
		entry := &lockfile.LockEntry{
			Filename:  filename,
			FetchedAt: time.Now().UTC(),
		}
		if prev != nil {
			entry.ETag = prev.ETag
			entry.LastMod = prev.LastMod
		}
		return FetchResult{Name: name, Path: filePath, NotModified: true}, entry, nil
	}

	if response.StatusCode() < http.StatusOK || response.StatusCode() >= http.StatusMultipleChoices {
		return FetchResult{}, nil, oops.
			Code("DOWNLOAD_FAILED").
			With("remote", name).
			With("url", remote.URL).
			With("status", response.StatusCode()).
			Errorf("remote source returned non-success status %d", response.StatusCode())
	}

	content, err := io.ReadAll(response.Body)
	if err != nil {
		return FetchResult{}, nil, oops.
			Code("DOWNLOAD_FAILED").
			With("remote", name).
			With("url", remote.URL).
			Wrapf(err, "reading response body")
	}

	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return FetchResult{}, nil, oops.
			Code("WRITE_FAILED").
			With("path", docsDir).
			Wrapf(err, "creating docs directory")
	}

	if err := WriteFileAtomic(filePath, content); err != nil {
		return FetchResult{}, nil, err
	}

	entry := &lockfile.LockEntry{
		ETag:      response.Header().Get("ETag"),
		LastMod:   response.Header().Get("Last-Modified"),
		Filename:  filename,
		FetchedAt: time.Now().UTC(),
	}

	return FetchResult{Name: name, Path: filePath, Updated: true}, entry, nil
}

func filenameFromURL(name, rawURL string) string {
	parsed, err := neturl.Parse(rawURL)
	if err == nil {
		baseName := path.Base(parsed.Path)
		if baseName != "" && baseName != "." && baseName != "/" {
			return baseName
		}
	}

	return name + ".md"
}

// WriteFileAtomic writes content via a temp file and rename so readers never
// observe a partially written file.
func WriteFileAtomic(filePath string, content []byte) error {
	dir := filepath.Dir(filePath)
	tempFile, err := os.CreateTemp(dir, ".apidoc-*.tmp")
	if err != nil {
		return oops.
			Code("WRITE_FAILED").
			With("path", filePath).
			Wrapf(err, "creating temporary file")
	}

	tempPath := tempFile.Name()
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, err := tempFile.Write(content); err != nil {
		_ = tempFile.Close()
		return oops.
			Code("WRITE_FAILED").
			With("path", filePath).
			Wrapf(err, "writing temporary file")
	}

	if err := tempFile.Close(); err != nil {
		return oops.
			Code("WRITE_FAILED").
			With("path", filePath).
			Wrapf(err, "closing temporary file")
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		return oops.
			Code("WRITE_FAILED").
			With("path", filePath).
			Wrapf(err, "replacing destination file")
	}

	return nil
}
