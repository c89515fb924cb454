package executor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/errors"
)

// MaxQueryLineBytes bounds one line of a query file. A longer line stops the
// batch with an error.
const MaxQueryLineBytes = 16 << 20

// BatchStats summarises a batch run.
type BatchStats struct {
	Queries int
	Failed  int
}

// ResultFileName is the file holding the ranking of the 1-based query i.
func ResultFileName(i int) string {
	return fmt.Sprintf("qrelQ%d.txt", i)
}

// RunBatch runs every line of queryFile as a query and writes the ranked
// document names of line i to ResultFileName(i) under resultsDir. A failed
// query yields an empty result file. The results directory is created if
// needed; when that fails no query runs.
func (e *Executor) RunBatch(ctx context.Context, queryFile, resultsDir string) (BatchStats, error) {
	var stats BatchStats
	f, err := os.Open(queryFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, fmt.Errorf("%w: query file %s", apperrors.ErrSourceNotFound, queryFile)
		}
		return stats, fmt.Errorf("opening query file %s: %w", queryFile, err)
	}
	defer f.Close()

	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return stats, fmt.Errorf("%w: %s: %v", apperrors.ErrOutputUnavailable, resultsDir, err)
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), MaxQueryLineBytes)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Queries++
		query := sc.Text()
		path := filepath.Join(resultsDir, ResultFileName(stats.Queries))

		var docs []ranker.RelevantDocument
		result, err := e.Search(ctx, query)
		if err != nil {
			stats.Failed++
			e.logger.Error("batch query failed", "line", stats.Queries, "query", query, "error", err)
		} else {
			docs = result.Results
		}
		if err := writeResults(path, docs); err != nil {
			e.logger.Error("writing results failed", "path", path, "error", err)
		}
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("reading query file %s: %w", queryFile, err)
	}
	e.logger.Info("batch completed", "queries", stats.Queries, "failed", stats.Failed, "results_dir", resultsDir)
	return stats, nil
}

func writeResults(path string, docs []ranker.RelevantDocument) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, d := range docs {
		w.WriteString(d.DocumentName)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
