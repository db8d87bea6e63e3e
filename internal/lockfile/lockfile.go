// Package lockfile persists HTTP caching state for remote grammar sources so
// repeated fetches can use conditional requests.
package lockfile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/oops"
)

const (
	fileName       = ".apidoc.lock"
	currentVersion = 1
)

type LockFile struct {
	Version int                   `json:"version"`
	Remotes map[string]*LockEntry `json:"remotes"`
}

type LockEntry struct {
	ETag      string    `json:"etag,omitempty"`
	LastMod   string    `json:"last_modified,omitempty"`
	Filename  string    `json:"filename"`
	FetchedAt time.Time `json:"fetched_at"`
}

func New() *LockFile {
	return &LockFile{
		Version: currentVersion,
		Remotes: map[string]*LockEntry{},
	}
}

// Load reads the lock file from docsDir, returning an empty lock when none
// exists yet.
func Load(docsDir string) (*LockFile, error) {
	lockPath := filepath.Join(docsDir, fileName)
	data, err := os.ReadFile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}

		return nil, oops.
			Code("LOCK_ERROR").
			With("path", lockPath).
			Wrapf(err, "reading lock file")
	}

	lock := &LockFile{}
	if unmarshalErr := json.Unmarshal(data, lock); unmarshalErr != nil {
		return nil, oops.
			Code("LOCK_ERROR").
			With("path", lockPath).
			Hint("Delete the lock file and run 'apidoc fetch' to regenerate it").
			Wrapf(unmarshalErr, "parsing lock file")
	}

	if lock.Version == 0 {
		lock.Version = currentVersion
	}
	if lock.Remotes == nil {
		lock.Remotes = map[string]*LockEntry{}
	}

	return lock, nil
}

// Save writes the lock file atomically via a temp file and rename.
func (l *LockFile) Save(docsDir string) error {
	if l == nil {
		return oops.
			Code("LOCK_ERROR").
			Errorf("cannot save nil lock file")
	}

	if err := os.MkdirAll(docsDir, 0o750); err != nil {
		return oops.
			Code("LOCK_ERROR").
			With("path", docsDir).
			Wrapf(err, "creating lock directory")
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return oops.
			Code("LOCK_ERROR").
			Wrapf(err, "encoding lock file")
	}

	data = append(data, '\n')
	lockPath := filepath.Join(docsDir, fileName)

	tempFile, err := os.CreateTemp(docsDir, fileName+".*.tmp")
	if err != nil {
		return oops.
			Code("LOCK_ERROR").
			With("path", docsDir).
			Wrapf(err, "creating temporary lock file")
	}

	tempPath := tempFile.Name()
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, writeErr := tempFile.Write(data); writeErr != nil {
		_ = tempFile.Close()
		return oops.
			Code("LOCK_ERROR").
			With("path", tempPath).
			Wrapf(writeErr, "writing temporary lock file")
	}

	if closeErr := tempFile.Close(); closeErr != nil {
		return oops.
			Code("LOCK_ERROR").
			With("path", tempPath).
			Wrapf(closeErr, "closing temporary lock file")
	}

	if renameErr := os.Rename(tempPath, lockPath); renameErr != nil {
		return oops.
			Code("LOCK_ERROR").
			With("from", tempPath).
			With("to", lockPath).
			Wrapf(renameErr, "replacing lock file")
	}

	return nil
}

func (l *LockFile) GetEntry(name string) *LockEntry {
	if l == nil {
		return nil
	}
	return l.Remotes[name]
}

func (l *LockFile) SetEntry(name string, entry *LockEntry) {
	if l == nil {
		return
	}
	if l.Remotes == nil {
		l.Remotes = map[string]*LockEntry{}
	}
	l.Remotes[name] = entry
}
