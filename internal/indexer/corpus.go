package indexer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gofrs/flock"

	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/errors"
)

// Source is one corpus file. Name is the file name recorded in the index
// and written to result files.
type Source struct {
	Path string
	Name string
}

// ListCorpus returns the regular, non-hidden files directly under dir sorted
// by name. The order fixes document ids across runs.
func ListCorpus(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: corpus directory %s", apperrors.ErrSourceNotFound, dir)
		}
		return nil, fmt.Errorf("reading corpus directory %s: %w", dir, err)
	}
	sources := make([]Source, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		sources = append(sources, Source{Path: filepath.Join(dir, entry.Name()), Name: entry.Name()})
	}
	slices.SortFunc(sources, func(a, b Source) int { return strings.Compare(a.Name, b.Name) })
	return sources, nil
}

// RunLock guards an index directory against concurrent index or erase runs
// from other processes.
type RunLock struct {
	fl *flock.Flock
}

// AcquireRunLock takes the lock file in dir without blocking. It returns
// ErrIndexLocked when another process holds it.
func AcquireRunLock(dir string) (*RunLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory %s: %w", dir, err)
	}
	fl := flock.New(filepath.Join(dir, "index.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrIndexLocked, fl.Path())
	}
	return &RunLock{fl: fl}, nil
}

func (l *RunLock) Release() error {
	return l.fl.Unlock()
}
