// Package source loads the grammar-bearing input files: local directory
// scanning with glob patterns, and remote files fetched over HTTP.
package source

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/g5becks/apidoc/internal/md"
)

const defaultMaxParallel = 4

// LoadOptions selects the grammar files inside the docs directory.
type LoadOptions struct {
	Patterns    []string // doublestar include patterns, relative to the dir
	Exclude     []string // doublestar exclude patterns
	ParamsFile  string   // template fragments file; absolute or dir-relative
	MaxParallel int      // concurrent file reads; parsing stays sequential
}

// Corpus is the loaded input: the concatenated body trees of every grammar
// file in traversal order, plus the params tree when configured.
type Corpus struct {
	Body   []*md.Node
	Params []*md.Node
	Files  []string // body file paths relative to the docs dir
}

// LoadDir scans dir for grammar files, reads them in parallel and parses
// them in traversal order. The params file is never part of the body corpus.
func LoadDir(ctx context.Context, dir string, opts LoadOptions) (*Corpus, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, oops.
			Code("READ_FAILED").
			With("dir", dir).
			Hint("Point the docs setting at the grammar directory").
			Wrapf(err, "opening docs directory %q", dir)
	}

	paramsPath := resolveParamsPath(dir, opts.ParamsFile)

	files, err := matchFiles(dir, opts, paramsPath)
	if err != nil {
		return nil, err
	}

	contents, err := readAll(ctx, dir, files, opts.MaxParallel)
	if err != nil {
		return nil, err
	}

	corpus := &Corpus{Files: files}
	for _, content := range contents {
		corpus.Body = append(corpus.Body, md.Parse(content)...)
	}

	if paramsPath != "" {
		paramsContent, readErr := os.ReadFile(paramsPath)
		if readErr != nil {
			return nil, oops.
				Code("READ_FAILED").
				With("path", paramsPath).
				Wrapf(readErr, "reading params file")
		}
		corpus.Params = md.Parse(paramsContent)
	}

	return corpus, nil
}

func resolveParamsPath(dir, paramsFile string) string {
	if paramsFile == "" {
		return ""
	}
	if filepath.IsAbs(paramsFile) {
		return filepath.Clean(paramsFile)
	}
	return filepath.Join(dir, paramsFile)
}

func matchFiles(dir string, opts LoadOptions, paramsPath string) ([]string, error) {
	fsys := os.DirFS(dir)

	var files []string
	for _, pattern := range opts.Patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, oops.
				Code("CONFIG_INVALID").
				With("pattern", pattern).
				Wrapf(err, "invalid include pattern %q", pattern)
		}

		for _, match := range matches {
			if !slices.Contains(files, match) {
				files = append(files, match)
			}
		}
	}

	slices.Sort(files)

	filtered := files[:0]
	for _, file := range files {
		excluded, err := isExcluded(file, opts.Exclude)
		if err != nil {
			return nil, err
		}
		if excluded || filepath.Join(dir, file) == paramsPath {
			continue
		}
		filtered = append(filtered, file)
	}

	return filtered, nil
}

func isExcluded(file string, exclude []string) (bool, error) {
	for _, pattern := range exclude {
		matched, err := doublestar.Match(pattern, file)
		if err != nil {
			return false, oops.
				Code("CONFIG_INVALID").
				With("pattern", pattern).
				Wrapf(err, "invalid exclude pattern %q", pattern)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// readAll reads the matched files with bounded parallelism, preserving the
// traversal order of the results.
func readAll(ctx context.Context, dir string, files []string, maxParallel int) ([][]byte, error) {
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallel
	}

	contents := make([][]byte, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallel)

	for i, file := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			content, err := os.ReadFile(filepath.Join(dir, file))
			if err != nil {
				return oops.
					Code("READ_FAILED").
					With("path", file).
					Wrapf(err, "reading grammar file %q", file)
			}

			contents[i] = content
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return contents, nil
}
