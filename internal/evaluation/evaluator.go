package evaluation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/errors"
)

// Evaluator pairs judgment files with result files by sorted name.
type Evaluator struct {
	qrelsDir   string
	resultsDir string
	logger     *slog.Logger
}

func New(qrelsDir, resultsDir string) *Evaluator {
	return &Evaluator{
		qrelsDir:   qrelsDir,
		resultsDir: resultsDir,
		logger:     slog.Default().With("component", "evaluator"),
	}
}

// Evaluate scores every result file against its paired judgment file. When
// the directories hold different numbers of files only the shorter prefix
// is evaluated.
func (e *Evaluator) Evaluate(ctx context.Context) (*Report, error) {
	qrels, err := listFiles(e.qrelsDir)
	if err != nil {
		return nil, err
	}
	results, err := listFiles(e.resultsDir)
	if err != nil {
		return nil, err
	}
	if len(qrels) != len(results) {
		e.logger.Warn("judgment and result file counts differ",
			"qrels", len(qrels),
			"results", len(results),
		)
	}

	n := min(len(qrels), len(results))
	report := &Report{Evaluations: make([]Evaluation, 0, n)}
	for i := range n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		relevant, err := readRelevant(qrels[i])
		if err != nil {
			e.logger.Error("failed to read judgments", "file", qrels[i], "error", err)
		}
		ranked, err := readRanking(results[i])
		if err != nil {
			e.logger.Error("failed to read results", "file", results[i], "error", err)
		}
		eval := Score(relevant, ranked)
		e.logger.Debug("query evaluated",
			"qrels", filepath.Base(qrels[i]),
			"results", filepath.Base(results[i]),
			"p5", eval.P5,
			"p10", eval.P10,
			"p25", eval.P25,
		)
		report.Evaluations = append(report.Evaluations, eval)
	}

	avg := report.Average()
	e.logger.Info("evaluation complete",
		"queries", n,
		"p5", avg.P5,
		"p10", avg.P10,
		"p25", avg.P25,
		"recall", avg.Recall,
	)
	return report, nil
}

// ParseQrels reads "documentName score" lines and returns the names whose
// score is positive. Scores may use a comma as decimal separator. Malformed
// lines are skipped.
func ParseQrels(r io.Reader) (map[string]struct{}, error) {
	relevant := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		score, err := strconv.ParseFloat(strings.Replace(fields[1], ",", ".", 1), 64)
		if err != nil {
			continue
		}
		if score > 0 {
			relevant[fields[0]] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return relevant, fmt.Errorf("reading judgments: %w", err)
	}
	return relevant, nil
}

// ParseRanking reads one document name per line, ignoring blank lines, up
// to MaxScan names.
func ParseRanking(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() && len(names) < MaxScan {
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if err := sc.Err(); err != nil {
		return names, fmt.Errorf("reading ranking: %w", err)
	}
	return names, nil
}

func readRelevant(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseQrels(f)
}

func readRanking(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseRanking(f)
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("directory %s: %w", dir, apperrors.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
