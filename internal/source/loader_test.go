package source_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/g5becks/apidoc/internal/source"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadDirMatchesAndParses(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"browser.md":   "# class: Browser\n\n- since: v1.0\n",
		"page.md":      "# class: Page\n\n- since: v1.0\n",
		"sub/frame.md": "# class: Frame\n\n- since: v1.0\n",
		"notes.txt":    "not a grammar file\n",
	})

	corpus, err := source.LoadDir(context.Background(), dir, source.LoadOptions{
		Patterns: []string{"**/*.md"},
	})
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	wantFiles := []string{"browser.md", "page.md", "sub/frame.md"}
	if !slices.Equal(corpus.Files, wantFiles) {
		t.Errorf("Files = %v, want %v", corpus.Files, wantFiles)
	}

	if len(corpus.Body) != 3 {
		t.Fatalf("body nodes = %d, want 3", len(corpus.Body))
	}

	// Body order follows the sorted file order.
	wantTexts := []string{"class: Browser", "class: Page", "class: Frame"}
	for i, want := range wantTexts {
		if corpus.Body[i].Text != want {
			t.Errorf("Body[%d].Text = %q, want %q", i, corpus.Body[i].Text, want)
		}
	}
}

func TestLoadDirExcludesAndSkipsParams(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"page.md":         "# class: Page\n\n- since: v1.0\n",
		"params.md":       "## wait-until\n\n- `waitUntil` <[string]>\n",
		"drafts/draft.md": "# class: Draft\n\n- since: v1.0\n",
	})

	corpus, err := source.LoadDir(context.Background(), dir, source.LoadOptions{
		Patterns:   []string{"**/*.md"},
		Exclude:    []string{"drafts/**"},
		ParamsFile: "params.md",
	})
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	if !slices.Equal(corpus.Files, []string{"page.md"}) {
		t.Errorf("Files = %v, want [page.md]", corpus.Files)
	}

	if len(corpus.Params) != 1 || corpus.Params[0].Text != "wait-until" {
		t.Errorf("Params = %+v, want the wait-until entry", corpus.Params)
	}
}

func TestLoadDirMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := source.LoadDir(context.Background(), filepath.Join(t.TempDir(), "missing"), source.LoadOptions{
		Patterns: []string{"**/*.md"},
	})
	if err == nil {
		t.Fatal("LoadDir() error = nil, want failure")
	}
}

func TestLoadDirMissingParamsFile(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"page.md": "# class: Page\n\n- since: v1.0\n",
	})

	_, err := source.LoadDir(context.Background(), dir, source.LoadOptions{
		Patterns:   []string{"**/*.md"},
		ParamsFile: "params.md",
	})
	if err == nil {
		t.Fatal("LoadDir() error = nil, want read failure")
	}
}
