package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/errors"
)

type workspace struct {
	dir    string
	config string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	corpus := filepath.Join(dir, "corpus")
	require.NoError(t, os.MkdirAll(corpus, 0o755))

	docs := map[string]string{
		"D1.html": "<html><body><p>Le chat dort sur le canapé.</p></body></html>",
		"D2.html": "<html><body><p>Le chien et le chat jouent. Le chat gagne.</p></body></html>",
		"D3.html": "<html><body><p>La voiture roule vite.</p></body></html>",
		"D4.html": "<html><body><p>Il pleut sur la ville.</p></body></html>",
		"D5.html": "<html><body><p>Un oiseau chante.</p></body></html>",
	}
	for name, body := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(corpus, name), []byte(body), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stopwords.txt"), []byte("le\nla\net\nsur\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "queries.txt"), []byte("chat\nvoiture\n"), 0o644))

	qrels := filepath.Join(dir, "qrels")
	require.NoError(t, os.MkdirAll(qrels, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(qrels, "qrelQ1.txt"), []byte("D1.html 1\nD2.html 1\nD3.html 0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(qrels, "qrelQ2.txt"), []byte("D3.html 0,5\n"), 0o644))

	cfg := fmt.Sprintf(`
store:
  driver: sqlite
  sqlitePath: %[1]s/data/index.db
indexer:
  corpusDir: %[1]s/corpus
  stopWordsFile: %[1]s/stopwords.txt
  lockDir: %[1]s/data
  workers: 3
search:
  queryFile: %[1]s/queries.txt
  resultsDir: %[1]s/results
evaluation:
  qrelsDir: %[1]s/qrels
  resultsDir: %[1]s/results
logging:
  level: error
`, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return workspace{dir: dir, config: path}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestIndexQuerySearchEvaluate(t *testing.T) {
	ws := newWorkspace(t)

	out, err := run(t, "index", "--config", ws.config)
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 5/5 documents")

	out, err = run(t, "query", "--config", ws.config, "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "2 documents match")
	assert.Regexp(t, `1\. D2\.html`, out)

	out, err = run(t, "search", "--config", ws.config)
	require.NoError(t, err)
	assert.Contains(t, out, "ran 2 queries (0 failed)")

	ranked, err := os.ReadFile(filepath.Join(ws.dir, "results", "qrelQ1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "D2.html\nD1.html\n", string(ranked))

	out, err = run(t, "evaluate", "--config", ws.config)
	require.NoError(t, err)
	assert.Contains(t, out, "Query: 1")
	assert.Contains(t, out, "Query: 2")
	assert.Contains(t, out, "Final:")
}

func TestEraseEmptiesIndex(t *testing.T) {
	ws := newWorkspace(t)

	_, err := run(t, "index", "--config", ws.config)
	require.NoError(t, err)
	_, err = run(t, "erase", "--config", ws.config)
	require.NoError(t, err)

	out, err := run(t, "query", "--config", ws.config, "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "0 documents match")
}

func TestIndexMissingCorpus(t *testing.T) {
	ws := newWorkspace(t)
	_, err := run(t, "index", "--config", ws.config, "--corpus", filepath.Join(ws.dir, "nope"))
	assert.ErrorIs(t, err, apperrors.ErrSourceNotFound)
}

func TestQueryRequiresText(t *testing.T) {
	ws := newWorkspace(t)
	_, err := run(t, "query", "--config", ws.config)
	assert.Error(t, err)
}

func TestBadConfig(t *testing.T) {
	_, err := run(t, "index", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
